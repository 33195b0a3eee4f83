package service

import (
	"context"
	"fmt"
	"time"

	"firmeza/internal/dto"
	"firmeza/internal/infra"
	"firmeza/internal/repository"
)

// ReporteService renders sales listings as PDF documents.
type ReporteService interface {
	// PDFTodas returns every sale, newest first, and the download file name.
	PDFTodas(ctx context.Context) ([]byte, string, error)
	// PDFDia covers one UTC calendar day given as yyyy-MM-dd.
	PDFDia(ctx context.Context, fecha string) ([]byte, string, error)
}

type reporteService struct {
	ventaRepo repository.VentaRepository
	now       func() time.Time
}

func NewReporteService(ventaRepo repository.VentaRepository) ReporteService {
	return &reporteService{ventaRepo: ventaRepo, now: time.Now}
}

func (s *reporteService) PDFTodas(ctx context.Context) ([]byte, string, error) {
	ventas, err := s.ventaRepo.List(ctx, dto.VentaFilter{})
	if err != nil {
		return nil, "", err
	}
	ahora := s.now().UTC()
	pdf, err := infra.VentasReportPDF("Reporte de todas las ventas", ventas, ahora)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("ventas_todas_%s.pdf", ahora.Format("20060102150405")), nil
}

func (s *reporteService) PDFDia(ctx context.Context, fecha string) ([]byte, string, error) {
	dia, err := time.Parse(fechaLayout, fecha)
	if err != nil {
		return nil, "", regla("Fecha inválida. Use el formato yyyy-MM-dd.")
	}
	hasta := dia.AddDate(0, 0, 1)
	ventas, err := s.ventaRepo.List(ctx, dto.VentaFilter{Desde: &dia, Hasta: &hasta})
	if err != nil {
		return nil, "", err
	}
	titulo := "Reporte de ventas del " + dia.Format("02/01/2006")
	pdf, err := infra.VentasReportPDF(titulo, ventas, s.now().UTC())
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("ventas_%s.pdf", dia.Format("20060102")), nil
}

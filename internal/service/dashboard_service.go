package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"firmeza/internal/dto"
	"firmeza/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	diasHistorial   = 7
	timeoutInsight  = 10 * time.Second
	respuestaChatKO = "No pude procesar tu pregunta en este momento."
)

// TextGenerator is satisfied by *infra.GeminiClient.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DashboardService backs the admin landing page and the chat box.
type DashboardService interface {
	Resumen(ctx context.Context) (*dto.DashboardResponse, error)
	// Chat never fails: when the generator is unavailable a fixed answer is returned.
	Chat(ctx context.Context, pregunta string) string
}

type dashboardService struct {
	ventaRepo    repository.VentaRepository
	clienteRepo  repository.ClienteRepository
	productoRepo repository.ProductoRepository
	ai           TextGenerator // nil: fallback texts only
	now          func() time.Time
}

func NewDashboardService(
	ventaRepo repository.VentaRepository,
	clienteRepo repository.ClienteRepository,
	productoRepo repository.ProductoRepository,
	ai TextGenerator,
) DashboardService {
	return &dashboardService{
		ventaRepo:    ventaRepo,
		clienteRepo:  clienteRepo,
		productoRepo: productoRepo,
		ai:           ai,
		now:          time.Now,
	}
}

func (s *dashboardService) Resumen(ctx context.Context) (*dto.DashboardResponse, error) {
	hoy := inicioDelDia(s.now())
	manana := hoy.AddDate(0, 0, 1)

	ventasHoy, totalHoy, err := s.ventaRepo.Resumen(ctx, hoy, manana)
	if err != nil {
		return nil, err
	}
	clientes, err := s.clienteRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	productos, err := s.productoRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	desde := hoy.AddDate(0, 0, -(diasHistorial - 1))
	porDia, err := s.ventaRepo.TotalesPorDia(ctx, desde)
	if err != nil {
		return nil, err
	}
	historial := make([]dto.PuntoHistorial, 0, diasHistorial)
	for d := desde; d.Before(manana); d = d.AddDate(0, 0, 1) {
		fecha := d.Format(fechaLayout)
		historial = append(historial, dto.PuntoHistorial{Fecha: fecha, Total: porDia[fecha]})
	}

	return &dto.DashboardResponse{
		VentasHoy: ventasHoy,
		TotalHoy:  totalHoy,
		Insight:   s.insightDelDia(ctx, ventasHoy, totalHoy),
		Clientes:  clientes,
		Productos: productos,
		Historial: historial,
	}, nil
}

func (s *dashboardService) insightDelDia(ctx context.Context, ventas int64, total decimal.Decimal) string {
	fallback := insightFallback(ventas, total)
	if s.ai == nil {
		return fallback
	}
	prompt := "Actúa como un asistente de negocios entusiasta y profesional para el administrador de la tienda 'Firmeza'. " +
		fmt.Sprintf("Hoy se han realizado %d ventas con un total de %s. ", ventas, moneda(total)) +
		"Genera un resumen corto (máximo 2 frases) que sea motivador o informativo sobre el rendimiento de hoy."

	text, err := s.generar(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("insight: using fallback text")
		return fallback
	}
	return text
}

func (s *dashboardService) Chat(ctx context.Context, pregunta string) string {
	pregunta = strings.TrimSpace(pregunta)
	if s.ai == nil || pregunta == "" {
		return respuestaChatKO
	}
	prompt := "Eres el asistente del administrador de la tienda 'Firmeza'. " +
		"Responde en español, de forma breve y profesional, a la siguiente pregunta: " + pregunta

	text, err := s.generar(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("chat: generator unavailable")
		return respuestaChatKO
	}
	return text
}

func (s *dashboardService) generar(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutInsight)
	defer cancel()
	return s.ai.Generate(ctx, prompt)
}

func insightFallback(ventas int64, total decimal.Decimal) string {
	if ventas == 0 {
		return "Hoy no se han registrado ventas todavía."
	}
	return fmt.Sprintf("Hoy se han registrado %d ventas, generando un total de %s.", ventas, moneda(total))
}

func moneda(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func inicioDelDia(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"firmeza/internal/dto"
	"firmeza/internal/infra"
	"firmeza/internal/model"
	"firmeza/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Column layout of import files: nombre, categoria, precio, stock.
const (
	colNombre = iota
	colCategoria
	colPrecio
	colStock
)

// ImportService loads products in bulk from a spreadsheet upload.
type ImportService interface {
	// Importar never fails on bad file content: parse problems are reported
	// through the response message with Cantidad 0.
	Importar(ctx context.Context, fileName string, r io.Reader) (*dto.ImportResponse, error)
}

type importService struct {
	productoRepo repository.ProductoRepository
}

func NewImportService(productoRepo repository.ProductoRepository) ImportService {
	return &importService{productoRepo: productoRepo}
}

func (s *importService) Importar(ctx context.Context, fileName string, r io.Reader) (*dto.ImportResponse, error) {
	formato := infra.DetectFormat(fileName)
	rows, err := infra.ReadSheetRows(formato, r)
	if err != nil {
		if errors.Is(err, infra.ErrSinHojas) {
			return &dto.ImportResponse{Mensaje: "No se encontró ninguna hoja en el archivo Excel."}, nil
		}
		log.Warn().Err(err).Str("archivo", fileName).Msg("import: archivo ilegible")
		return &dto.ImportResponse{Mensaje: "Error al procesar el archivo: " + err.Error()}, nil
	}

	existentes, err := s.productoRepo.Nombres(ctx)
	if err != nil {
		return nil, err
	}
	nuevos := filasAProductos(formato, rows, existentes)

	if len(nuevos) > 0 {
		err := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
			return s.productoRepo.CreateBatchTx(tx, nuevos)
		})
		if err != nil {
			if infra.IsUniqueViolation(err) {
				return &dto.ImportResponse{Mensaje: "Error al procesar el archivo: " + msgProductoDuplicado}, nil
			}
			return nil, err
		}
	}

	log.Info().Str("archivo", fileName).Int("cantidad", len(nuevos)).Msg("import: productos cargados")
	msg := fmt.Sprintf("Se cargaron %d productos correctamente.", len(nuevos))
	if formato == infra.FormatoCSV {
		msg = fmt.Sprintf("Se cargaron %d productos desde CSV correctamente.", len(nuevos))
	}
	return &dto.ImportResponse{Cantidad: len(nuevos), Mensaje: msg}, nil
}

// filasAProductos skips the header row. CSV files skip rows with a blank
// name; workbooks stop at the first one. Names already in existentes, or
// repeated inside the file, keep their first occurrence only.
func filasAProductos(formato string, rows [][]string, existentes map[string]bool) []model.Producto {
	var out []model.Producto
	for i, row := range rows {
		if i == 0 {
			continue
		}
		nombre := strings.TrimSpace(celda(row, colNombre))
		if nombre == "" {
			if formato == infra.FormatoExcel {
				break
			}
			continue
		}
		if existentes[nombre] || len([]rune(nombre)) > 150 {
			continue
		}
		existentes[nombre] = true

		out = append(out, model.Producto{
			Nombre:    nombre,
			Categoria: truncar(strings.TrimSpace(celda(row, colCategoria)), 100),
			Precio:    parsePrecio(celda(row, colPrecio)),
			Stock:     parseStock(celda(row, colStock)),
		})
	}
	return out
}

func celda(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// parsePrecio reads a '.'-separated decimal; anything unparseable or
// negative is 0.
func parsePrecio(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}

func parseStock(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func truncar(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

package infra

// Sales report generation using go-pdf/fpdf.
// A4 portrait, one block per sale:
//   - header line: id, date, client, total
//   - one "- {producto} x{cantidad} = {subtotal}" line per detalle
// followed by a grand total and "Página N de M" footers.

import (
	"bytes"
	"fmt"
	"time"

	"firmeza/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// VentasReportPDF renders ventas into an in-memory PDF. Detalles and Cliente
// must be preloaded; missing associations print as "-".
func VentasReportPDF(titulo string, ventas []model.Venta, generado time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // UTF-8 → cp1252 for core fonts
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Página %d de {nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, "Firmeza", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, tr(titulo), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Generado: "+generado.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Table header ─────────────────────────────────────────────────────────
	colID := contentW * 0.12
	colFecha := contentW * 0.26
	colCliente := contentW * 0.40
	colTotal := contentW * 0.22

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(colID, 7, "Id", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colFecha, 7, "Fecha", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colCliente, 7, "Cliente", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colTotal, 7, "Total", "1", 1, "C", true, 0, "")

	totalGeneral := decimal.Zero
	for _, v := range ventas {
		cliente := "-"
		if v.Cliente != nil {
			cliente = v.Cliente.Nombre
		}
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(colID, 6, fmt.Sprintf("%d", v.ID), "LTB", 0, "C", false, 0, "")
		pdf.CellFormat(colFecha, 6, v.Fecha.Format("2006-01-02 15:04"), "TB", 0, "C", false, 0, "")
		pdf.CellFormat(colCliente, 6, tr(cliente), "TB", 0, "L", false, 0, "")
		pdf.CellFormat(colTotal, 6, "$"+v.Total.StringFixed(2), "RTB", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, d := range v.Detalles {
			nombre := "-"
			if d.Producto != nil {
				nombre = d.Producto.Nombre
			}
			line := fmt.Sprintf("- %s x%d = $%s", nombre, d.Cantidad, d.Subtotal().StringFixed(2))
			pdf.CellFormat(colID, 5, "", "", 0, "", false, 0, "")
			pdf.CellFormat(contentW-colID, 5, tr(line), "", 1, "L", false, 0, "")
		}
		totalGeneral = totalGeneral.Add(v.Total)
	}

	if len(ventas) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 8, "No hay ventas registradas.", "", 1, "C", false, 0, "")
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW-colTotal, 7, "Total general:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 7, "$"+totalGeneral.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

package infra

// pdf.go renders the binding offer of a CERRADA catalogo as an A4 proforma
// using go-pdf/fpdf:
//   - header with cliente, producto and version number
//   - snapshot table (packaging, price, discount, bundles, dimensions)
//   - derived figures (price per dozen, unit price, totals, volume, weights)

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// RenderOfertaPDF builds the offer PDF in memory.
func RenderOfertaPDF(o *dto.OfertaFinalResponse) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30
	v := o.Version

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "ENVAPERU", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Oferta comercial final (EXW)"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 9)
	info := [][2]string{
		{"Cliente", o.Catalogo.ClienteNombre},
		{"Producto", o.Catalogo.ProductoNombre},
		{"Catalogo", o.Catalogo.ID},
		{"Version", fmt.Sprintf("#%d (%s)", v.VersionNum, v.Estado)},
		{"Fecha", v.UpdatedAt.Format("02/01/2006 15:04")},
	}
	for _, row := range info {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(35, 6, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-35, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Snapshot ─────────────────────────────────────────────────────────────
	tabla(pdf, tr, contentW, "Condiciones", [][2]string{
		{"Unidad de medida", v.UM},
		{"Doc x bulto/caja", fmtDec(v.DocXBultoCaja, 2)},
		{"Doc x paquete", v.DocXPaq.StringFixed(2)},
		{"Precio EXW", v.PrecioEXW.StringFixed(4)},
		{"Descuento", fmtPorc(v.PorcDesc)},
		{"Cantidad de bultos", v.CantBultos.StringFixed(2)},
		{"Peso unitario (g)", fmtDec(v.PesoGr, 2)},
		{"Medidas (cm)", fmt.Sprintf("%s x %s x %s", fmtDec(v.LargoCm, 2), fmtDec(v.AnchoCm, 2), fmtDec(v.AltoCm, 2))},
	})
	pdf.Ln(4)

	// ── Derived figures ──────────────────────────────────────────────────────
	d := v.Derivados
	tabla(pdf, tr, contentW, "Totales", [][2]string{
		{"Precio x docena", fmtDec(d.PrecioXDocena, 2)},
		{"Precio unidad EXW", fmtDec(d.PrecioUnidadEXW, 4)},
		{"Cantidad por paquete", fmtDec(d.CantidadPorPaquete, 2)},
		{"Cantidad de unidades", fmtDec(d.CantidadUnidades, 2)},
		{"Subtotal EXW", fmtDec(d.SubtotalEXW, 2)},
		{"Volumen paquete (m3)", fmtDec(d.VolumenPaqueteCBM, 4)},
		{"CBM total", fmtDec(d.CBMTotal, 4)},
		{"Peso neto (kg)", fmtDec(d.PesoNetoKg, 2)},
		{"Peso bruto (kg)", fmtDec(d.PesoBrutoKg, 2)},
	})

	if v.Observaciones != nil && *v.Observaciones != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Observaciones", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, tr(*v.Observaciones), "", "L", false)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, tr("Peso bruto estimado con 1.5 kg de tara por bulto."), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateOfertaPDF writes the offer PDF to storagePath/oferta_{catalogo}_v{n}.pdf
// and returns the file path.
func GenerateOfertaPDF(o *dto.OfertaFinalResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	data, err := RenderOfertaPDF(o)
	if err != nil {
		return "", err
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("oferta_%s_v%d.pdf", o.Catalogo.ID, o.Version.VersionNum))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func tabla(pdf *fpdf.Fpdf, tr func(string) string, w float64, titulo string, filas [][2]string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(w, 7, tr(titulo), "1", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, f := range filas {
		pdf.CellFormat(w*0.55, 6, tr(f[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(w*0.45, 6, f[1], "1", 1, "R", false, 0, "")
	}
}

func fmtDec(d *decimal.Decimal, places int32) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(places)
}

func fmtPorc(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.Mul(decimal.NewFromInt(100)).StringFixed(2) + " %"
}

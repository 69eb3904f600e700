package closures

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/financehub/financehub/internal/reconciliation"
)

// WritePDF renders a one page closure report.
func WritePDF(w io.Writer, c reconciliation.DailyClosure, opts reconciliation.MessageOptions) error {
	f := reconciliation.NewFormatter(opts)
	store := opts.StoreName
	if store == "" {
		store = c.StoreName
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle("Cierre "+c.Date, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20
	label := contentW * 0.6
	value := contentW - label

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Cierre Diario"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(store), "", 1, "C", false, 0, "")
	shift := c.Date
	if c.ShiftName != "" {
		shift += " - " + c.ShiftName
	}
	pdf.CellFormat(contentW, 5, tr(shift), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, "Tasa BCV: "+f.Number(c.BCVRate)+" Bs", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	row := func(name, calculated, declared string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(contentW*0.4, 6, tr(name), "B", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.3, 6, calculated, "B", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.3, 6, declared, "B", 1, "R", false, 0, "")
	}
	row("Método", "Calculado", "Declarado", true)
	for _, m := range reconciliation.PaymentMethods() {
		row(m.Label(), f.Money(c.Calculated.Get(m)), f.Money(c.Declared.Get(m)), false)
	}
	row("Total", f.Money(c.CalculatedTotalUSD), f.Money(c.DeclaredTotalUSD), true)
	pdf.Ln(3)

	line := func(name, v string) {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(label, 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(value, 5, tr(v), "", 1, "R", false, 0, "")
	}
	line("Gastos", f.Money(c.TotalExpensesUSD))
	line("Utilidad neta", f.Money(c.NetProfitUSD))
	line("Fondo de apertura", f.Money(c.Opening.Sum()))
	line("Efectivo caja chica", f.Money(c.PettyCashUSD))
	line("Efectivo guardado", f.Money(c.StoredCashUSD))
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	status := "Cuadrado"
	if !c.IsBalanced {
		status = fmt.Sprintf("Diferencia: %s", f.Money(c.DifferenceUSD))
		pdf.SetTextColor(180, 0, 0)
	}
	pdf.CellFormat(contentW, 6, tr(status), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if c.Observations != "" || c.SurplusNotes != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 8)
		if c.Observations != "" {
			pdf.MultiCell(contentW, 4, tr("Observaciones: "+c.Observations), "", "L", false)
		}
		if c.SurplusNotes != "" {
			pdf.MultiCell(contentW, 4, tr("Sobrantes: "+c.SurplusNotes), "", "L", false)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("closures: render pdf: %w", err)
	}
	return nil
}

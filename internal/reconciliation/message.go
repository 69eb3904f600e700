package reconciliation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MessageOptions controls how amounts are printed in a closure message.
type MessageOptions struct {
	StoreName      string
	CurrencySymbol string
	DecimalPlaces  int
	Language       language.Tag
}

func (o MessageOptions) normalized() MessageOptions {
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = "$"
	}
	if o.DecimalPlaces < 0 || o.DecimalPlaces > 4 {
		o.DecimalPlaces = 2
	}
	if o.Language == language.Und {
		o.Language = language.English
	}
	return o
}

// Formatter prints money amounts with a fixed number of decimals.
type Formatter struct {
	printer  *message.Printer
	format   string
	currency string
}

// NewFormatter builds a Formatter for the given options.
func NewFormatter(opts MessageOptions) Formatter {
	opts = opts.normalized()
	return Formatter{
		printer:  message.NewPrinter(opts.Language),
		format:   fmt.Sprintf("%%.%df", opts.DecimalPlaces),
		currency: opts.CurrencySymbol,
	}
}

// Number formats v without a currency symbol.
func (f Formatter) Number(v float64) string {
	return f.printer.Sprintf(f.format, amount(v))
}

// Money formats v followed by the currency symbol.
func (f Formatter) Money(v float64) string {
	return f.Number(v) + " " + f.currency
}

// RenderMessage builds the shareable closure text sent to store owners.
func RenderMessage(c DailyClosure, opts MessageOptions) string {
	opts = opts.normalized()
	f := NewFormatter(opts)

	store := opts.StoreName
	if store == "" {
		store = c.StoreName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📍 Cierre Diario – %s %s\n", store, displayDate(c.Date))
	fmt.Fprintf(&b, "Tasa BCV: %s Bs\n\n", f.Number(c.BCVRate))
	fmt.Fprintf(&b, "Ventas Totales: %s\n\n", f.Money(c.CalculatedTotalUSD))
	for _, m := range paymentMethods {
		fmt.Fprintf(&b, "▫ %s: %s\n", m.Label(), f.Money(c.Calculated.Get(m)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "✅ Total declarado: %s\n", f.Money(c.DeclaredTotalUSD))
	fmt.Fprintf(&b, "⭕ Observaciones: %s\n", orDefault(c.Observations, "Ninguna"))
	fmt.Fprintf(&b, "⭕ Sobrantes: %s\n", orDefault(c.SurplusNotes, "Ninguno"))
	fmt.Fprintf(&b, "✅ Efectivo caja chica: %s\n", f.Money(c.PettyCashUSD))
	fmt.Fprintf(&b, "✅ Efectivo guardado: %s\n", f.Money(c.StoredCashUSD))
	fmt.Fprintf(&b, "🧾 Gastos registrados hoy: %s", f.Money(c.TotalExpensesUSD))

	if diff := c.DifferenceUSD; !Balanced(diff) {
		sign := "+"
		if diff < 0 {
			sign = "-"
		}
		fmt.Fprintf(&b, "\n\n⚠️ DIFERENCIA DETECTADA: %s%s (declarado vs. calculado)", sign, f.Money(math.Abs(diff)))
	}
	return b.String()
}

func displayDate(day string) string {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return day
	}
	return t.Format("02/01/2006")
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

package closures

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/financehub/financehub/internal/reconciliation"
)

var csvHeader = []string{
	"id", "date", "store", "shift", "bcv_rate",
	"cash", "zelle", "mobile_payment", "pdv_banesco", "cashea",
	"calculated_total", "declared_total", "difference", "is_balanced",
	"expenses", "net_profit", "petty_cash", "stored_cash", "observations", "surplus_notes",
}

// WriteCSV exports closures one per row.
func WriteCSV(w io.Writer, items []reconciliation.DailyClosure) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	num := func(v float64) string { return strconv.FormatFloat(reconciliation.Round2(v), 'f', 2, 64) }
	for _, c := range items {
		record := []string{
			c.ID, c.Date, c.StoreName, c.ShiftName, strconv.FormatFloat(c.BCVRate, 'f', -1, 64),
			num(c.Calculated.Cash), num(c.Calculated.Zelle), num(c.Calculated.MobilePayment), num(c.Calculated.PDVBanesco), num(c.Calculated.Cashea),
			num(c.CalculatedTotalUSD), num(c.DeclaredTotalUSD), num(c.DifferenceUSD), strconv.FormatBool(c.IsBalanced),
			num(c.TotalExpensesUSD), num(c.NetProfitUSD), num(c.PettyCashUSD), num(c.StoredCashUSD), c.Observations, c.SurplusNotes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Package reconciliation computes daily totals per payment method and compares
// them with the amounts counted at shift close. Everything here is pure.
package reconciliation

import (
	"math"
	"slices"
)

// Epsilon is the tolerance under which declared and calculated totals match.
const Epsilon = 0.01

// epsilonSlack absorbs the float error of subtracting totals, so a difference of
// exactly one cent is balanced whatever the size of the totals.
const epsilonSlack = 1e-9

// ComputeTotals aggregates a day of records. Opening entries are reported as the
// opening float and never counted as income. Incomes with an unknown method count
// toward TotalIncome but toward no bucket. Amounts are added in ascending order, so
// the result does not depend on the order of the records.
func ComputeTotals(incomes []IncomeRecord, expenses []ExpenseRecord) ClosureSummary {
	var s ClosureSummary
	opening, calculated, bySource := methodAmounts{}, methodAmounts{}, methodAmounts{}
	var openingAll, incomeAll, expAll []float64
	for _, in := range incomes {
		v := amount(in.AmountUSD)
		if in.IsOpening {
			opening.add(in.PaymentMethod, v)
			openingAll = append(openingAll, v)
			continue
		}
		calculated.add(in.PaymentMethod, v)
		incomeAll = append(incomeAll, v)
		s.IncomeCount++
	}
	for _, ex := range expenses {
		v := amount(ex.AmountUSD)
		bySource.add(ex.PaymentSource, v)
		expAll = append(expAll, v)
		s.ExpenseCount++
	}
	s.Opening = opening.totals()
	s.Calculated = calculated.totals()
	s.ExpensesBySource = bySource.totals()
	s.OpeningTotal = sortedSum(openingAll)
	s.TotalIncome = sortedSum(incomeAll)
	s.TotalExpenses = sortedSum(expAll)
	s.NetProfit = s.TotalIncome - s.TotalExpenses
	return s
}

// methodAmounts collects the amounts of each known method until they are summed.
type methodAmounts map[PaymentMethod][]float64

func (m methodAmounts) add(method PaymentMethod, v float64) {
	if method.Valid() {
		m[method] = append(m[method], v)
	}
}

func (m methodAmounts) totals() MethodTotals {
	var t MethodTotals
	for method, values := range m {
		t.Set(method, sortedSum(values))
	}
	return t
}

func sortedSum(values []float64) float64 {
	slices.Sort(values)
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// DeclaredTotal sums the five declared amounts.
func DeclaredTotal(declared DeclaredAmounts) float64 {
	return declared.Declared.Sum()
}

// Reconcile compares what was declared with what was recorded. An imbalance is
// reported, not rejected.
func Reconcile(summary ClosureSummary, declared DeclaredAmounts) Reconciliation {
	total := DeclaredTotal(declared)
	diff := total - amount(summary.TotalIncome)
	var perMethod MethodTotals
	for _, m := range paymentMethods {
		perMethod.Set(m, amount(declared.Declared.Get(m))-amount(summary.Calculated.Get(m)))
	}
	return Reconciliation{
		DeclaredTotal:     total,
		Difference:        diff,
		IsBalanced:        Balanced(diff),
		MethodDifferences: perMethod,
	}
}

// Balanced reports whether a difference is within Epsilon, inclusive.
func Balanced(diff float64) bool {
	return math.Abs(diff) <= Epsilon+epsilonSlack
}

// BuildClosure assembles the closure record from an already computed summary.
// The summary is used as given so the stored totals match what was shown.
func BuildClosure(header ClosureHeader, summary ClosureSummary, declared DeclaredAmounts) DailyClosure {
	rec := Reconcile(summary, declared)
	return DailyClosure{
		StoreID:   header.StoreID,
		Date:      header.Date,
		ShiftName: header.ShiftName,
		BCVRate:   amount(header.BCVRate),

		Calculated:         summary.Calculated,
		Opening:            summary.Opening,
		CalculatedTotalUSD: summary.TotalIncome,
		TotalExpensesUSD:   summary.TotalExpenses,
		NetProfitUSD:       summary.TotalIncome - summary.TotalExpenses,

		Declared:         declared.Declared,
		DeclaredTotalUSD: rec.DeclaredTotal,
		DifferenceUSD:    rec.Difference,
		IsBalanced:       rec.IsBalanced,

		PettyCashUSD:  amount(declared.PettyCashUSD),
		StoredCashUSD: amount(declared.StoredCashUSD),
		Observations:  declared.Observations,
		SurplusNotes:  declared.SurplusNotes,

		CreatedBy: header.CreatedBy,
	}
}

// Summary rebuilds the summary view stored in a closure.
func (c DailyClosure) Summary() ClosureSummary {
	return ClosureSummary{
		Calculated:    c.Calculated,
		Opening:       c.Opening,
		OpeningTotal:  c.Opening.Sum(),
		TotalIncome:   c.CalculatedTotalUSD,
		TotalExpenses: c.TotalExpensesUSD,
		NetProfit:     c.NetProfitUSD,
	}
}

// Round2 rounds for display. The engine never rounds internally.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// amount treats non-finite values as absent.
func amount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

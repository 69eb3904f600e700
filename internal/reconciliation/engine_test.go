package reconciliation

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func exampleDay() ([]IncomeRecord, []ExpenseRecord) {
	incomes := []IncomeRecord{
		{StoreID: "S1", Date: "2024-06-01", PaymentMethod: MethodCash, AmountUSD: 40},
		{StoreID: "S1", Date: "2024-06-01", PaymentMethod: MethodZelle, AmountUSD: 10},
		{StoreID: "S1", Date: "2024-06-01", PaymentMethod: MethodCash, AmountUSD: 100, IsOpening: true},
	}
	expenses := []ExpenseRecord{
		{StoreID: "S1", Date: "2024-06-01", PaymentSource: MethodCash, AmountUSD: 5},
	}
	return incomes, expenses
}

func TestComputeTotalsExampleDay(t *testing.T) {
	incomes, expenses := exampleDay()
	summary := ComputeTotals(incomes, expenses)

	require.Equal(t, 50.0, summary.TotalIncome)
	require.Equal(t, 40.0, summary.Calculated.Cash)
	require.Equal(t, 10.0, summary.Calculated.Zelle)
	require.Zero(t, summary.Calculated.MobilePayment)
	require.Zero(t, summary.Calculated.PDVBanesco)
	require.Zero(t, summary.Calculated.Cashea)
	require.Equal(t, 5.0, summary.TotalExpenses)
	require.Equal(t, 45.0, summary.NetProfit)
	require.Equal(t, 100.0, summary.Opening.Cash)
	require.Equal(t, 100.0, summary.OpeningTotal)
	require.Equal(t, 5.0, summary.ExpensesBySource.Cash)
	require.Equal(t, 2, summary.IncomeCount)
	require.Equal(t, 1, summary.ExpenseCount)

	declared := DeclaredAmounts{Declared: MethodTotals{Cash: 40, Zelle: 10}}
	require.Equal(t, 50.0, DeclaredTotal(declared))
	rec := Reconcile(summary, declared)
	require.Zero(t, rec.Difference)
	require.True(t, rec.IsBalanced)
}

func TestComputeTotalsEmpty(t *testing.T) {
	summary := ComputeTotals(nil, nil)
	require.Equal(t, ClosureSummary{}, summary)
	require.Zero(t, summary.NetProfit)
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	methods := PaymentMethods()
	rng := rand.New(rand.NewSource(7))
	incomes := []IncomeRecord{
		{PaymentMethod: MethodCash, AmountUSD: 0.1},
		{PaymentMethod: MethodCash, AmountUSD: 0.2},
		{PaymentMethod: MethodCash, AmountUSD: 0.3},
		{PaymentMethod: "paypal", AmountUSD: 0.7},
	}
	for i := 0; i < 60; i++ {
		incomes = append(incomes, IncomeRecord{
			PaymentMethod: methods[i%len(methods)],
			AmountUSD:     float64(rng.Intn(10000))/100 + 0.001*float64(i),
			IsOpening:     i%11 == 0,
		})
	}
	expenses := []ExpenseRecord{
		{PaymentSource: MethodCash, AmountUSD: 0.1},
		{PaymentSource: MethodCash, AmountUSD: 0.2},
		{PaymentSource: MethodCash, AmountUSD: 0.3},
		{PaymentSource: MethodZelle, AmountUSD: 3.25},
	}

	base := ComputeTotals(incomes, expenses)
	for round := 0; round < 20; round++ {
		in := slices.Clone(incomes)
		ex := slices.Clone(expenses)
		rng.Shuffle(len(in), func(i, j int) { in[i], in[j] = in[j], in[i] })
		rng.Shuffle(len(ex), func(i, j int) { ex[i], ex[j] = ex[j], ex[i] })
		require.Equal(t, base, ComputeTotals(in, ex))
	}

	slices.Reverse(incomes)
	slices.Reverse(expenses)
	require.Equal(t, base, ComputeTotals(incomes, expenses))
}

func TestComputeTotalsSmallAmountsReversed(t *testing.T) {
	forward := []IncomeRecord{
		{PaymentMethod: MethodCash, AmountUSD: 0.1},
		{PaymentMethod: MethodCash, AmountUSD: 0.2},
		{PaymentMethod: MethodCash, AmountUSD: 0.3},
	}
	backward := slices.Clone(forward)
	slices.Reverse(backward)

	a := ComputeTotals(forward, nil)
	b := ComputeTotals(backward, nil)
	require.Equal(t, a, b)
	require.Equal(t, a.TotalIncome, a.Calculated.Cash)
}

func TestComputeTotalsNeverCountsOpening(t *testing.T) {
	summary := ComputeTotals([]IncomeRecord{
		{PaymentMethod: MethodCash, AmountUSD: 80, IsOpening: true},
		{PaymentMethod: MethodZelle, AmountUSD: 20, IsOpening: true},
	}, nil)
	require.Zero(t, summary.TotalIncome)
	require.Zero(t, summary.Calculated.Sum())
	require.Equal(t, 100.0, summary.OpeningTotal)
}

func TestComputeTotalsUnknownMethod(t *testing.T) {
	summary := ComputeTotals([]IncomeRecord{
		{PaymentMethod: "paypal", AmountUSD: 15},
		{PaymentMethod: MethodCash, AmountUSD: 5},
	}, []ExpenseRecord{{PaymentSource: "transfer", AmountUSD: 2}})

	require.Equal(t, 20.0, summary.TotalIncome)
	require.Equal(t, 5.0, summary.Calculated.Sum())
	require.Equal(t, 2.0, summary.TotalExpenses)
	require.Zero(t, summary.ExpensesBySource.Sum())
	require.Equal(t, 18.0, summary.NetProfit)
}

func TestComputeTotalsCoalescesNonFinite(t *testing.T) {
	summary := ComputeTotals([]IncomeRecord{
		{PaymentMethod: MethodCash, AmountUSD: math.NaN()},
		{PaymentMethod: MethodCash, AmountUSD: math.Inf(1)},
		{PaymentMethod: MethodCash, AmountUSD: 3},
	}, nil)
	require.Equal(t, 3.0, summary.TotalIncome)
	require.Equal(t, 3.0, summary.Calculated.Cash)
}

func TestReconcileTolerance(t *testing.T) {
	summary := ClosureSummary{TotalIncome: 50, Calculated: MethodTotals{Cash: 50}}

	within := Reconcile(summary, DeclaredAmounts{Declared: MethodTotals{Cash: 50.009}})
	require.True(t, within.IsBalanced)
	require.InDelta(t, 0.009, within.Difference, 1e-9)

	outside := Reconcile(summary, DeclaredAmounts{Declared: MethodTotals{Cash: 50.02}})
	require.False(t, outside.IsBalanced)
	require.InDelta(t, 0.02, outside.Difference, 1e-9)

	short := Reconcile(summary, DeclaredAmounts{Declared: MethodTotals{Cash: 45, Zelle: 2}})
	require.False(t, short.IsBalanced)
	require.InDelta(t, -3, short.Difference, 1e-9)
	require.InDelta(t, -5, short.MethodDifferences.Cash, 1e-9)
	require.InDelta(t, 2, short.MethodDifferences.Zelle, 1e-9)
}

func TestBalancedAtOneCent(t *testing.T) {
	for _, total := range []float64{0, 0.3, 50, 100, 1234.56, 99999.99, 250000.17} {
		summary := ClosureSummary{TotalIncome: total, Calculated: MethodTotals{Cash: total}}

		over := Reconcile(summary, DeclaredAmounts{Declared: MethodTotals{Cash: total + 0.01}})
		require.True(t, over.IsBalanced, "total %v declared one cent over", total)
		if total >= 0.01 {
			under := Reconcile(summary, DeclaredAmounts{Declared: MethodTotals{Cash: total - 0.01}})
			require.True(t, under.IsBalanced, "total %v declared one cent under", total)
		}

		beyond := Reconcile(summary, DeclaredAmounts{Declared: MethodTotals{Cash: total + 0.011}})
		require.False(t, beyond.IsBalanced, "total %v declared 1.1 cents over", total)
	}
	require.True(t, Balanced(0.01))
	require.True(t, Balanced(-0.01))
	require.False(t, Balanced(0.0101))
}

func TestBuildClosureReusesSummary(t *testing.T) {
	incomes, expenses := exampleDay()
	summary := ComputeTotals(incomes, expenses)
	// A summary that no longer matches the records must still be used verbatim.
	summary.TotalIncome = 52.5
	summary.NetProfit = 47.5

	declared := DeclaredAmounts{
		Declared:      MethodTotals{Cash: 42.5, Zelle: 10},
		PettyCashUSD:  20,
		StoredCashUSD: 30,
		Observations:  "sin novedad",
	}
	closure := BuildClosure(ClosureHeader{StoreID: "S1", Date: "2024-06-01", ShiftName: "mañana", BCVRate: 36.5, CreatedBy: "u1"}, summary, declared)

	require.Equal(t, 52.5, closure.CalculatedTotalUSD)
	require.Equal(t, 5.0, closure.TotalExpensesUSD)
	require.Equal(t, closure.CalculatedTotalUSD-closure.TotalExpensesUSD, closure.NetProfitUSD)
	require.Equal(t, 52.5, closure.DeclaredTotalUSD)
	require.Zero(t, closure.DifferenceUSD)
	require.True(t, closure.IsBalanced)
	require.Equal(t, "S1", closure.StoreID)
	require.Equal(t, "mañana", closure.ShiftName)
	require.Equal(t, 36.5, closure.BCVRate)
	require.Equal(t, 20.0, closure.PettyCashUSD)
	require.Equal(t, 30.0, closure.StoredCashUSD)
	require.Equal(t, "sin novedad", closure.Observations)
	require.Equal(t, 100.0, closure.Opening.Cash)
}

func TestPaymentMethodHelpers(t *testing.T) {
	require.Len(t, PaymentMethods(), 5)
	require.True(t, MethodPDVBanesco.Valid())
	require.False(t, PaymentMethod("bitcoin").Valid())
	require.Equal(t, "PM", MethodMobilePayment.Label())

	var totals MethodTotals
	require.True(t, totals.Set(MethodCashea, 4))
	require.False(t, totals.Set("bitcoin", 4))
	require.Equal(t, 4.0, totals.Get(MethodCashea))
	require.Zero(t, totals.Get("bitcoin"))
	require.Equal(t, 1.24, Round2(1.235000001))
}

package closures

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/financehub/financehub/internal/reconciliation"
)

func sampleClosure() reconciliation.DailyClosure {
	return reconciliation.DailyClosure{
		ID: "c1", StoreName: "Tienda Centro", Date: "2024-05-10", ShiftName: "Noche", BCVRate: 36.5,
		Calculated:         reconciliation.MethodTotals{Cash: 120, Zelle: 80},
		Declared:           reconciliation.MethodTotals{Cash: 120, Zelle: 79.5},
		CalculatedTotalUSD: 200, DeclaredTotalUSD: 199.5, DifferenceUSD: -0.5,
		TotalExpensesUSD: 15, NetProfitUSD: 185,
		Observations: "Faltó cambio, \"billetes\" rotos",
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []reconciliation.DailyClosure{sampleClosure()}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, csvHeader, rows[0])
	require.Equal(t, "Tienda Centro", rows[1][2])
	require.Equal(t, "36.5", rows[1][4])
	require.Equal(t, "-0.50", rows[1][12])
	require.Equal(t, "false", rows[1][13])
	require.Equal(t, "Faltó cambio, \"billetes\" rotos", rows[1][18])
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleClosure(), reconciliation.MessageOptions{DecimalPlaces: 2}))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGroupByDateKeepsOrder(t *testing.T) {
	require.Empty(t, GroupByDate(nil))

	groups := GroupByDate([]reconciliation.DailyClosure{
		{ID: "a", Date: "2024-05-12"},
		{ID: "b", Date: "2024-05-11"},
		{ID: "c", Date: "2024-05-11"},
	})
	require.Len(t, groups, 2)
	require.Len(t, groups[1].Closures, 2)
	require.Equal(t, "c", groups[1].Closures[1].ID)
}

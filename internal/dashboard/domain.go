// Package dashboard aggregates closures into headline figures and a daily chart.
package dashboard

// Default and maximum window lengths in days.
const (
	DefaultDays = 30
	MaxDays     = 366
)

// Stats summarises a window of closures.
type Stats struct {
	From               string       `json:"from"`
	To                 string       `json:"to"`
	Days               int          `json:"days"`
	TotalSales         float64      `json:"total_sales"`
	TotalExpenses      float64      `json:"total_expenses"`
	NetProfit          float64      `json:"net_profit"`
	AverageDailySales  float64      `json:"average_daily_sales"`
	StoreCount         int          `json:"store_count"`
	MonthlyGrowth      float64      `json:"monthly_growth"`
	TopPerformingStore string       `json:"top_performing_store"`
	Chart              []ChartPoint `json:"chart"`
}

// ChartPoint is one day of the chart.
type ChartPoint struct {
	Date     string  `json:"date"`
	Sales    float64 `json:"sales"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

// Totals are summed closure amounts.
type Totals struct {
	Sales    float64
	Expenses float64
}

// Window selects closures by store and inclusive date range. Nil StoreIDs means
// every store.
type Window struct {
	StoreIDs []string
	From     string
	To       string
}

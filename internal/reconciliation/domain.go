package reconciliation

import "time"

// PaymentMethod identifies one of the fixed declared/calculated buckets.
type PaymentMethod string

const (
	MethodCash          PaymentMethod = "cash"
	MethodZelle         PaymentMethod = "zelle"
	MethodMobilePayment PaymentMethod = "mobile_payment"
	MethodPDVBanesco    PaymentMethod = "pdv_banesco"
	MethodCashea        PaymentMethod = "cashea"
)

var paymentMethods = []PaymentMethod{
	MethodCash,
	MethodZelle,
	MethodMobilePayment,
	MethodPDVBanesco,
	MethodCashea,
}

var methodLabels = map[PaymentMethod]string{
	MethodCash:          "Efectivo",
	MethodZelle:         "Zelle",
	MethodMobilePayment: "PM",
	MethodPDVBanesco:    "PDV Banesco",
	MethodCashea:        "Cashea",
}

// PaymentMethods returns the known methods in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// Valid reports whether m is one of the known methods.
func (m PaymentMethod) Valid() bool {
	_, ok := methodLabels[m]
	return ok
}

// Label returns the short label printed on closure messages.
func (m PaymentMethod) Label() string {
	if label, ok := methodLabels[m]; ok {
		return label
	}
	return string(m)
}

// MethodTotals holds one amount per known payment method.
type MethodTotals struct {
	Cash          float64 `json:"cash"`
	Zelle         float64 `json:"zelle"`
	MobilePayment float64 `json:"mobile_payment"`
	PDVBanesco    float64 `json:"pdv_banesco"`
	Cashea        float64 `json:"cashea"`
}

// Get returns the amount for a method; unknown methods read as zero.
func (t MethodTotals) Get(m PaymentMethod) float64 {
	switch m {
	case MethodCash:
		return t.Cash
	case MethodZelle:
		return t.Zelle
	case MethodMobilePayment:
		return t.MobilePayment
	case MethodPDVBanesco:
		return t.PDVBanesco
	case MethodCashea:
		return t.Cashea
	}
	return 0
}

// Set assigns the amount of a known method. It reports false for unknown methods.
func (t *MethodTotals) Set(m PaymentMethod, v float64) bool {
	switch m {
	case MethodCash:
		t.Cash = v
	case MethodZelle:
		t.Zelle = v
	case MethodMobilePayment:
		t.MobilePayment = v
	case MethodPDVBanesco:
		t.PDVBanesco = v
	case MethodCashea:
		t.Cashea = v
	default:
		return false
	}
	return true
}

// Sum adds the five buckets.
func (t MethodTotals) Sum() float64 {
	return amount(t.Cash) + amount(t.Zelle) + amount(t.MobilePayment) + amount(t.PDVBanesco) + amount(t.Cashea)
}

// Scope selects the records of one store day, optionally narrowed to a cash register.
type Scope struct {
	StoreID        string `json:"store_id" validate:"required"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	CashRegisterID string `json:"cash_register_id,omitempty"`
}

// IncomeRecord is a single sale or opening float entry.
type IncomeRecord struct {
	ID             string        `json:"id"`
	StoreID        string        `json:"store_id"`
	CashRegisterID string        `json:"cash_register_id,omitempty"`
	Date           string        `json:"date"`
	AmountUSD      float64       `json:"amount_usd"`
	AmountBS       float64       `json:"amount_bs"`
	BCVRate        float64       `json:"bcv_rate"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	IsOpening      bool          `json:"is_opening"`
	Description    string        `json:"description,omitempty"`
	PaymentDetails string        `json:"payment_details,omitempty"`
	CreatedBy      string        `json:"created_by,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ExpenseRecord is money paid out of a store during the day.
type ExpenseRecord struct {
	ID             string        `json:"id"`
	StoreID        string        `json:"store_id"`
	CashRegisterID string        `json:"cash_register_id,omitempty"`
	Date           string        `json:"date"`
	AmountUSD      float64       `json:"amount_usd"`
	AmountBS       float64       `json:"amount_bs"`
	BCVRate        float64       `json:"bcv_rate"`
	PaymentSource  PaymentMethod `json:"payment_source"`
	Description    string        `json:"description"`
	CreatedBy      string        `json:"created_by,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ClosureSummary is the computed view of a day. It is never stored as such.
type ClosureSummary struct {
	Calculated       MethodTotals `json:"calculated"`
	Opening          MethodTotals `json:"opening"`
	OpeningTotal     float64      `json:"opening_total"`
	ExpensesBySource MethodTotals `json:"expenses_by_source"`
	TotalIncome      float64      `json:"total_income"`
	TotalExpenses    float64      `json:"total_expenses"`
	NetProfit        float64      `json:"net_profit"`
	IncomeCount      int          `json:"income_count"`
	ExpenseCount     int          `json:"expense_count"`
}

// DeclaredAmounts is what a person counted at close.
type DeclaredAmounts struct {
	Declared      MethodTotals `json:"declared"`
	PettyCashUSD  float64      `json:"petty_cash_usd"`
	StoredCashUSD float64      `json:"stored_cash_usd"`
	Observations  string       `json:"observations,omitempty"`
	SurplusNotes  string       `json:"surplus_notes,omitempty"`
}

// Reconciliation compares declared amounts against a summary.
type Reconciliation struct {
	DeclaredTotal     float64      `json:"declared_total"`
	Difference        float64      `json:"difference"`
	IsBalanced        bool         `json:"is_balanced"`
	MethodDifferences MethodTotals `json:"method_differences"`
}

// ClosureHeader identifies the shift being closed.
type ClosureHeader struct {
	StoreID   string
	Date      string
	ShiftName string
	BCVRate   float64
	CreatedBy string
}

// DailyClosure is the persisted result of closing a shift.
type DailyClosure struct {
	ID        string  `json:"id"`
	StoreID   string  `json:"store_id"`
	StoreName string  `json:"store_name,omitempty"`
	Date      string  `json:"date"`
	ShiftName string  `json:"shift_name"`
	BCVRate   float64 `json:"bcv_rate"`

	Calculated         MethodTotals `json:"calculated"`
	Opening            MethodTotals `json:"opening"`
	CalculatedTotalUSD float64      `json:"calculated_total_usd"`
	TotalExpensesUSD   float64      `json:"total_expenses_usd"`
	NetProfitUSD       float64      `json:"net_profit_usd"`

	Declared         MethodTotals `json:"declared"`
	DeclaredTotalUSD float64      `json:"declared_total_usd"`
	DifferenceUSD    float64      `json:"difference_usd"`
	IsBalanced       bool         `json:"is_balanced"`

	PettyCashUSD  float64 `json:"petty_cash_usd"`
	StoredCashUSD float64 `json:"stored_cash_usd"`
	Observations  string  `json:"observations,omitempty"`
	SurplusNotes  string  `json:"surplus_notes,omitempty"`

	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

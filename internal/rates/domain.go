// Package rates resolves the official Bs per USD exchange rate of a day.
package rates

import (
	"fmt"
	"math"
	"time"

	"github.com/financehub/financehub/internal/platform/httpx"
)

var (
	ErrInvalidRate     = fmt.Errorf("rates: rate must be a positive number: %w", httpx.ErrValidation)
	ErrInvalidDate     = fmt.Errorf("rates: date must use YYYY-MM-DD: %w", httpx.ErrValidation)
	ErrRateNotFound    = fmt.Errorf("rates: no rate recorded for that date: %w", httpx.ErrNotFound)
	ErrRateUnavailable = fmt.Errorf("rates: rate source unavailable: %w", httpx.ErrUnavailable)
)

// Source values.
const (
	SourceManual = "manual"
	SourceRemote = "remote"
)

// Rate is the official rate of one day.
type Rate struct {
	Date      string    `json:"date"`
	Value     float64   `json:"rate"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

func validValue(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func validDate(date string) bool {
	_, err := time.Parse(time.DateOnly, date)
	return err == nil
}

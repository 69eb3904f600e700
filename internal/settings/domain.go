// Package settings holds the application preferences edited by administrators.
package settings

import (
	"fmt"
	_ "time/tzdata" // timezone validation without a system zoneinfo

	"github.com/financehub/financehub/internal/platform/httpx"
)

// Section names.
const (
	SectionGeneral   = "general"
	SectionFinancial = "financial"
	SectionReports   = "reports"
	SectionSystem    = "system"
	SectionSecurity  = "security"
)

var ErrUnknownSection = fmt.Errorf("settings: unknown section: %w", httpx.ErrValidation)

// General describes the company.
type General struct {
	CompanyName    string `json:"companyName" validate:"required,max=120"`
	CompanyEmail   string `json:"companyEmail" validate:"omitempty,email"`
	CompanyPhone   string `json:"companyPhone" validate:"max=40"`
	CompanyAddress string `json:"companyAddress" validate:"max=255"`
	TaxID          string `json:"taxId" validate:"max=40"`
	Logo           string `json:"logo" validate:"max=2048"`
}

// Financial controls money presentation.
type Financial struct {
	Currency       string  `json:"currency" validate:"len=3,alpha"`
	CurrencySymbol string  `json:"currencySymbol" validate:"required,max=4"`
	DecimalPlaces  int     `json:"decimalPlaces" validate:"min=0,max=4"`
	TaxRate        float64 `json:"taxRate" validate:"gte=0,lte=100"`
	TaxInclusive   bool    `json:"taxInclusive"`
}

// Reports controls report defaults.
type Reports struct {
	DateFormat       string `json:"dateFormat" validate:"oneof=MM/DD/YYYY DD/MM/YYYY YYYY-MM-DD DD-MM-YYYY"`
	TimeFormat       string `json:"timeFormat" validate:"oneof=12h 24h"`
	DefaultDateRange string `json:"defaultDateRange" validate:"oneof=7d 30d 90d 1y mtd ytd"`
	ShowTaxes        bool   `json:"showTaxes"`
	GroupByStore     bool   `json:"groupByStore"`
}

// System holds runtime preferences.
type System struct {
	Timezone       string `json:"timezone" validate:"required,timezone"`
	Language       string `json:"language" validate:"oneof=es en fr"`
	Notifications  bool   `json:"notifications"`
	AutoBackup     bool   `json:"autoBackup"`
	SessionTimeout int    `json:"sessionTimeout" validate:"gte=5"`
}

// Security holds the password and lockout policy.
type Security struct {
	MinPasswordLength   int  `json:"minPasswordLength" validate:"min=6,max=64"`
	RequireSpecialChars bool `json:"requireSpecialChars"`
	RequireNumbers      bool `json:"requireNumbers"`
	MaxLoginAttempts    int  `json:"maxLoginAttempts" validate:"gte=1"`
	LockoutDuration     int  `json:"lockoutDuration" validate:"gte=1"`
}

// Settings is the full preference set.
type Settings struct {
	General   General   `json:"general"`
	Financial Financial `json:"financial"`
	Reports   Reports   `json:"reports"`
	System    System    `json:"system"`
	Security  Security  `json:"security"`
}

// Defaults returns the preferences used until an administrator saves a section.
func Defaults() Settings {
	return Settings{
		General: General{
			CompanyName:    "Administración Dezuca",
			CompanyEmail:   "admin@dezuca.com",
			CompanyPhone:   "+1 234 567 8900",
			CompanyAddress: "123 Main Street, City, State 12345",
			TaxID:          "12-3456789",
		},
		Financial: Financial{
			Currency:       "USD",
			CurrencySymbol: "$",
			DecimalPlaces:  2,
			TaxRate:        8.5,
		},
		Reports: Reports{
			DateFormat:       "MM/DD/YYYY",
			TimeFormat:       "12h",
			DefaultDateRange: "30d",
			ShowTaxes:        true,
			GroupByStore:     true,
		},
		System: System{
			Timezone:       "America/New_York",
			Language:       "es",
			Notifications:  true,
			AutoBackup:     true,
			SessionTimeout: 30,
		},
		Security: Security{
			MinPasswordLength:   8,
			RequireSpecialChars: true,
			RequireNumbers:      true,
			MaxLoginAttempts:    5,
			LockoutDuration:     15,
		},
	}
}

// sectionPtr returns the address of a named section inside s.
func (s *Settings) sectionPtr(name string) (any, bool) {
	switch name {
	case SectionGeneral:
		return &s.General, true
	case SectionFinancial:
		return &s.Financial, true
	case SectionReports:
		return &s.Reports, true
	case SectionSystem:
		return &s.System, true
	case SectionSecurity:
		return &s.Security, true
	}
	return nil, false
}

// Sections lists the section names in display order.
func Sections() []string {
	return []string{SectionGeneral, SectionFinancial, SectionReports, SectionSystem, SectionSecurity}
}

package stores

import (
	"fmt"
	"strings"
	"time"

	"github.com/financehub/financehub/internal/platform/httpx"
)

var (
	ErrStoreNotFound    = fmt.Errorf("stores: store not found: %w", httpx.ErrNotFound)
	ErrStoreNameTaken   = fmt.Errorf("stores: a store with that name already exists: %w", httpx.ErrDuplicate)
	ErrStoreInUse       = fmt.Errorf("stores: store has recorded operations, deactivate it instead: %w", httpx.ErrConflict)
	ErrRegisterNotFound = fmt.Errorf("stores: cash register not found: %w", httpx.ErrNotFound)
	ErrRegisterTaken    = fmt.Errorf("stores: register name already used in this store: %w", httpx.ErrDuplicate)
	ErrUserNotFound     = fmt.Errorf("stores: user not found: %w", httpx.ErrNotFound)
)

// Store is a physical point of sale.
type Store struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	ManagerID    string    `json:"manager_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	Description  string    `json:"description"`
	OpeningHours string    `json:"opening_hours"`
	TaxID        string    `json:"tax_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StoreInput carries the editable store fields.
type StoreInput struct {
	Name         string `json:"name" validate:"required,max=120"`
	Location     string `json:"location" validate:"max=120"`
	Address      string `json:"address" validate:"max=255"`
	Phone        string `json:"phone" validate:"max=40"`
	Email        string `json:"email" validate:"omitempty,email"`
	ManagerID    string `json:"manager_id"`
	Description  string `json:"description" validate:"max=500"`
	OpeningHours string `json:"opening_hours" validate:"max=120"`
	TaxID        string `json:"tax_id" validate:"max=40"`
	IsActive     *bool  `json:"is_active"`
}

func (in StoreInput) apply(s *Store) {
	s.Name = strings.TrimSpace(in.Name)
	s.Location = strings.TrimSpace(in.Location)
	s.Address = strings.TrimSpace(in.Address)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Email = strings.ToLower(strings.TrimSpace(in.Email))
	s.ManagerID = strings.TrimSpace(in.ManagerID)
	s.Description = strings.TrimSpace(in.Description)
	s.OpeningHours = strings.TrimSpace(in.OpeningHours)
	s.TaxID = strings.TrimSpace(in.TaxID)
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
}

// ListFilter narrows store listings. A nil IDs slice means every store.
type ListFilter struct {
	IDs        []string
	ActiveOnly bool
}

// CashRegister is a till inside a store.
type CashRegister struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	Cashiers  []string  `json:"cashier_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterInput carries the fields of a new register.
type RegisterInput struct {
	Name string `json:"name" validate:"required,max=80"`
}

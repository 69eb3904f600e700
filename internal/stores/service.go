package stores

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	ListStores(ctx context.Context, filter ListFilter) ([]Store, error)
	GetStore(ctx context.Context, id string) (Store, error)
	InsertStore(ctx context.Context, s Store) (Store, error)
	UpdateStore(ctx context.Context, s Store) (Store, error)
	DeleteStore(ctx context.Context, id string) error
	ListRegisters(ctx context.Context, storeID string) ([]CashRegister, error)
	ListRegistersForUser(ctx context.Context, storeID, userID string) ([]CashRegister, error)
	GetRegister(ctx context.Context, id string) (CashRegister, error)
	InsertRegister(ctx context.Context, cr CashRegister) (CashRegister, error)
	SetRegisterActive(ctx context.Context, id string, active bool) error
	AssignCashier(ctx context.Context, registerID, userID string) error
	UnassignCashier(ctx context.Context, registerID, userID string) error
}

// Service coordinates store and register management.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns the stores visible to the principal.
func (s *Service) List(ctx context.Context, p *rbac.Principal, activeOnly bool) ([]Store, error) {
	if p == nil || !p.Role.Valid() {
		return []Store{}, nil
	}
	filter := ListFilter{ActiveOnly: activeOnly}
	if p.Role.StoreScoped() {
		if p.AssignedStoreID == "" {
			return []Store{}, nil
		}
		filter.IDs = []string{p.AssignedStoreID}
	}
	out, err := s.repo.ListStores(ctx, filter)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Store{}
	}
	return out, nil
}

// Get returns a store, reporting stores outside the principal's scope as missing.
func (s *Service) Get(ctx context.Context, p *rbac.Principal, id string) (Store, error) {
	if !rbac.CanAccessStore(p, id) {
		return Store{}, ErrStoreNotFound
	}
	return s.repo.GetStore(ctx, id)
}

// StoreName resolves the display name of a store, empty when it cannot be found.
func (s *Service) StoreName(ctx context.Context, id string) string {
	store, err := s.repo.GetStore(ctx, id)
	if err != nil {
		return ""
	}
	return store.Name
}

// Create registers a new store. New stores are active unless stated otherwise.
func (s *Service) Create(ctx context.Context, p *rbac.Principal, in StoreInput) (Store, error) {
	if err := httpx.Validate(in); err != nil {
		return Store{}, err
	}
	now := s.now()
	store := Store{ID: uuid.NewString(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	in.apply(&store)
	created, err := s.repo.InsertStore(ctx, store)
	if err != nil {
		return Store{}, err
	}
	s.record(ctx, p, "store.create", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

// Update replaces the editable fields of a store.
func (s *Service) Update(ctx context.Context, p *rbac.Principal, id string, in StoreInput) (Store, error) {
	if err := httpx.Validate(in); err != nil {
		return Store{}, err
	}
	current, err := s.Get(ctx, p, id)
	if err != nil {
		return Store{}, err
	}
	in.apply(&current)
	current.UpdatedAt = s.now()
	updated, err := s.repo.UpdateStore(ctx, current)
	if err != nil {
		return Store{}, err
	}
	s.record(ctx, p, "store.update", id, map[string]any{"name": updated.Name})
	return updated, nil
}

// Toggle flips the active flag of a store.
func (s *Service) Toggle(ctx context.Context, p *rbac.Principal, id string) (Store, error) {
	current, err := s.Get(ctx, p, id)
	if err != nil {
		return Store{}, err
	}
	current.IsActive = !current.IsActive
	current.UpdatedAt = s.now()
	updated, err := s.repo.UpdateStore(ctx, current)
	if err != nil {
		return Store{}, err
	}
	s.record(ctx, p, "store.toggle", id, map[string]any{"is_active": updated.IsActive})
	return updated, nil
}

// Delete removes a store that has no recorded operations.
func (s *Service) Delete(ctx context.Context, p *rbac.Principal, id string) error {
	if !rbac.CanAccessStore(p, id) {
		return ErrStoreNotFound
	}
	if err := s.repo.DeleteStore(ctx, id); err != nil {
		return err
	}
	s.record(ctx, p, "store.delete", id, nil)
	return nil
}

// Registers lists every register of a store.
func (s *Service) Registers(ctx context.Context, p *rbac.Principal, storeID string) ([]CashRegister, error) {
	if !rbac.CanAccessStore(p, storeID) {
		return nil, ErrStoreNotFound
	}
	return nonNil(s.repo.ListRegisters(ctx, storeID))
}

// VisibleRegisters lists the registers the principal may operate. Cashiers only
// see active registers they are assigned to.
func (s *Service) VisibleRegisters(ctx context.Context, p *rbac.Principal, storeID string) ([]CashRegister, error) {
	if !rbac.CanAccessStore(p, storeID) {
		return nil, ErrStoreNotFound
	}
	if p.Role == rbac.RoleCajero {
		return nonNil(s.repo.ListRegistersForUser(ctx, storeID, p.ID))
	}
	regs, err := s.repo.ListRegisters(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]CashRegister, 0, len(regs))
	for _, cr := range regs {
		if cr.IsActive {
			out = append(out, cr)
		}
	}
	return out, nil
}

// CreateRegister adds a register to a store.
func (s *Service) CreateRegister(ctx context.Context, p *rbac.Principal, storeID string, in RegisterInput) (CashRegister, error) {
	if err := httpx.Validate(in); err != nil {
		return CashRegister{}, err
	}
	if _, err := s.Get(ctx, p, storeID); err != nil {
		return CashRegister{}, err
	}
	cr, err := s.repo.InsertRegister(ctx, CashRegister{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		Name:      in.Name,
		IsActive:  true,
		CreatedAt: s.now(),
	})
	if err != nil {
		return CashRegister{}, err
	}
	s.record(ctx, p, "register.create", cr.ID, map[string]any{"store_id": storeID, "name": cr.Name})
	return cr, nil
}

// ToggleRegister flips the active flag of a register.
func (s *Service) ToggleRegister(ctx context.Context, p *rbac.Principal, registerID string) (CashRegister, error) {
	cr, err := s.register(ctx, p, registerID)
	if err != nil {
		return CashRegister{}, err
	}
	cr.IsActive = !cr.IsActive
	if err := s.repo.SetRegisterActive(ctx, cr.ID, cr.IsActive); err != nil {
		return CashRegister{}, err
	}
	s.record(ctx, p, "register.toggle", cr.ID, map[string]any{"is_active": cr.IsActive})
	return cr, nil
}

// AssignCashier allows a user to operate a register.
func (s *Service) AssignCashier(ctx context.Context, p *rbac.Principal, registerID, userID string) error {
	if _, err := s.register(ctx, p, registerID); err != nil {
		return err
	}
	if userID == "" {
		return ErrUserNotFound
	}
	if err := s.repo.AssignCashier(ctx, registerID, userID); err != nil {
		return err
	}
	s.record(ctx, p, "register.assign", registerID, map[string]any{"user_id": userID})
	return nil
}

// UnassignCashier revokes a user's access to a register.
func (s *Service) UnassignCashier(ctx context.Context, p *rbac.Principal, registerID, userID string) error {
	if _, err := s.register(ctx, p, registerID); err != nil {
		return err
	}
	if err := s.repo.UnassignCashier(ctx, registerID, userID); err != nil {
		return err
	}
	s.record(ctx, p, "register.unassign", registerID, map[string]any{"user_id": userID})
	return nil
}

func (s *Service) register(ctx context.Context, p *rbac.Principal, id string) (CashRegister, error) {
	cr, err := s.repo.GetRegister(ctx, id)
	if err != nil {
		return CashRegister{}, err
	}
	if !rbac.CanAccessStore(p, cr.StoreID) {
		return CashRegister{}, ErrRegisterNotFound
	}
	return cr, nil
}

func (s *Service) record(ctx context.Context, p *rbac.Principal, action, entityID string, meta map[string]any) {
	actor := ""
	if p != nil {
		actor = p.ID
	}
	entity := "store"
	if strings.HasPrefix(action, "register.") {
		entity = "cash_register"
	}
	err := s.audit.Record(ctx, shared.AuditLog{ActorID: actor, Action: action, Entity: entity, EntityID: entityID, Meta: meta, At: s.now()})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func nonNil(regs []CashRegister, err error) ([]CashRegister, error) {
	if err != nil {
		return nil, err
	}
	if regs == nil {
		return []CashRegister{}, nil
	}
	return regs, nil
}

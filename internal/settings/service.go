package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/reconciliation"
	"github.com/financehub/financehub/internal/shared"
)

// RepositoryPort abstracts section storage.
type RepositoryPort interface {
	LoadSections(ctx context.Context) (map[string]json.RawMessage, error)
	SaveSection(ctx context.Context, section string, payload json.RawMessage, actorID string) error
}

// Service keeps the current settings in memory and persists changes.
type Service struct {
	repo   RepositoryPort
	audit  shared.AuditRecorder
	logger *slog.Logger

	mu      sync.RWMutex
	current Settings
}

// NewService builds a Service holding the defaults until Load is called.
func NewService(repo RepositoryPort, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, current: Defaults()}
}

// Load reads stored sections over the defaults. Sections that are missing or no
// longer valid keep their default values.
func (s *Service) Load(ctx context.Context) error {
	stored, err := s.repo.LoadSections(ctx)
	if err != nil {
		return fmt.Errorf("settings: load: %w", err)
	}
	next := Defaults()
	for name, raw := range stored {
		if err := decodeSection(&next, name, raw); err != nil {
			s.logger.Warn("ignoring stored settings section", slog.String("section", name), slog.Any("error", err))
		}
	}
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the active settings.
func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates and stores one section, then makes it current.
func (s *Service) Save(ctx context.Context, actorID, section string, raw json.RawMessage) (Settings, error) {
	next := s.Current()
	if err := decodeSection(&next, section, raw); err != nil {
		return Settings{}, err
	}
	target, _ := next.sectionPtr(section)
	payload, err := json.Marshal(target)
	if err != nil {
		return Settings{}, err
	}
	if err := s.repo.SaveSection(ctx, section, payload, actorID); err != nil {
		return Settings{}, err
	}

	s.mu.Lock()
	switch section {
	case SectionGeneral:
		s.current.General = next.General
	case SectionFinancial:
		s.current.Financial = next.Financial
	case SectionReports:
		s.current.Reports = next.Reports
	case SectionSystem:
		s.current.System = next.System
	case SectionSecurity:
		s.current.Security = next.Security
	}
	out := s.current
	s.mu.Unlock()

	if err := s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: "settings.update", Entity: "settings", EntityID: section}); err != nil {
		s.logger.Warn("audit record failed", slog.String("section", section), slog.Any("error", err))
	}
	return out, nil
}

// Security returns the active password and lockout policy.
func (s *Service) Security() Security {
	return s.Current().Security
}

// MessageOptions returns the money formatting used for closure messages.
func (s *Service) MessageOptions() reconciliation.MessageOptions {
	cur := s.Current()
	tag, err := language.Parse(cur.System.Language)
	if err != nil {
		tag = language.Spanish
	}
	return reconciliation.MessageOptions{
		CurrencySymbol: cur.Financial.CurrencySymbol,
		DecimalPlaces:  cur.Financial.DecimalPlaces,
		Language:       tag,
	}
}

// decodeSection overlays raw on the named section of s. s is left untouched when
// the result does not validate.
func decodeSection(s *Settings, name string, raw json.RawMessage) error {
	target, ok := s.sectionPtr(name)
	if !ok {
		return ErrUnknownSection
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	candidate := Defaults()
	ptr, _ := candidate.sectionPtr(name)
	restore(ptr, target)
	if err := dec.Decode(ptr); err != nil {
		return fmt.Errorf("%w: malformed %s section: %v", httpx.ErrValidation, name, err)
	}
	if err := httpx.Validate(ptr); err != nil {
		return err
	}
	restore(target, ptr)
	return nil
}

// restore copies the section value behind src into dst. Both point to the same type.
func restore(dst, src any) {
	switch d := dst.(type) {
	case *General:
		*d = *src.(*General)
	case *Financial:
		*d = *src.(*Financial)
	case *Reports:
		*d = *src.(*Reports)
	case *System:
		*d = *src.(*System)
	case *Security:
		*d = *src.(*Security)
	}
}

package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/settings"
	"github.com/financehub/financehub/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, f ListFilter) ([]User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	InsertUser(ctx context.Context, u User) (User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	DeleteUser(ctx context.Context, id string) error
}

// SecurityPolicy supplies the active password rules.
type SecurityPolicy interface {
	Security() settings.Security
}

// Service handles user business logic.
type Service struct {
	repo          RepositoryPort
	policy        SecurityPolicy
	audit         shared.AuditRecorder
	logger        *slog.Logger
	autoProvision bool
	hashCost      int
	now           func() time.Time
}

// Option customises the service.
type Option func(*Service)

// WithSecurityPolicy enforces password rules from the given source.
func WithSecurityPolicy(p SecurityPolicy) Option { return func(s *Service) { s.policy = p } }

// WithAudit records account changes.
func WithAudit(a shared.AuditRecorder) Option { return func(s *Service) { s.audit = a } }

// WithAutoProvision lets EnsureProfile create missing accounts.
func WithAutoProvision(on bool) Option { return func(s *Service) { s.autoProvision = on } }

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option { return func(s *Service) { s.hashCost = cost } }

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     repo,
		audit:    shared.NopAudit{},
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns accounts matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]User, error) {
	f.Search = strings.TrimSpace(f.Search)
	out, err := s.repo.ListUsers(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []User{}
	}
	return out, nil
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// GetByEmail returns the account registered under email, hash included.
func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetUserByEmail(ctx, normalizeEmail(email))
}

// Create registers a new account.
func (s *Service) Create(ctx context.Context, actor *rbac.Principal, in CreateInput) (User, error) {
	in.Email = normalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := httpx.Validate(in); err != nil {
		return User{}, err
	}
	u := User{
		ID:              uuid.NewString(),
		Email:           in.Email,
		FullName:        in.FullName,
		Role:            in.Role,
		AssignedStoreID: strings.TrimSpace(in.AssignedStoreID),
		Permissions:     in.Permissions,
		IsActive:        true,
		CreatedAt:       s.now(),
	}
	if err := normalizeAccess(&u); err != nil {
		return User{}, err
	}
	if err := authorizeAccess(actor, User{}, u); err != nil {
		return User{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}
	u.PasswordHash = hash
	created, err := s.repo.InsertUser(ctx, u)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actor, "user.create", created.ID, map[string]any{"email": created.Email, "role": created.Role})
	return created, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, actor *rbac.Principal, id string, in UpdateInput) (User, error) {
	if err := httpx.Validate(in); err != nil {
		return User{}, err
	}
	current, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := authorizeTarget(actor, current); err != nil {
		return User{}, err
	}
	u := current
	u.Permissions = slices.Clone(current.Permissions)
	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.AssignedStoreID != nil {
		u.AssignedStoreID = strings.TrimSpace(*in.AssignedStoreID)
	}
	if in.Permissions != nil {
		u.Permissions = *in.Permissions
	}
	if in.IsActive != nil {
		if !*in.IsActive && isSelf(actor, id) {
			return User{}, ErrSelfChange
		}
		u.IsActive = *in.IsActive
	}
	if err := normalizeAccess(&u); err != nil {
		return User{}, err
	}
	if isSelf(actor, id) && accessChanged(current, u) {
		return User{}, ErrSelfAccessChange
	}
	if err := authorizeAccess(actor, current, u); err != nil {
		return User{}, err
	}
	u.UpdatedAt = s.now()
	updated, err := s.repo.UpdateUser(ctx, u)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actor, "user.update", id, map[string]any{"role": updated.Role, "is_active": updated.IsActive})
	return updated, nil
}

// SetActive enables or disables an account.
func (s *Service) SetActive(ctx context.Context, actor *rbac.Principal, id string, active bool) (User, error) {
	return s.Update(ctx, actor, id, UpdateInput{IsActive: &active})
}

// Delete removes an account other than the actor's own.
func (s *Service) Delete(ctx context.Context, actor *rbac.Principal, id string) error {
	if isSelf(actor, id) {
		return ErrSelfChange
	}
	target, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeTarget(actor, target); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "user.delete", id, nil)
	return nil
}

// SetPassword replaces a password after checking it against the policy.
func (s *Service) SetPassword(ctx context.Context, actor *rbac.Principal, id, password string) error {
	if !isSelf(actor, id) {
		target, err := s.repo.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeTarget(actor, target); err != nil {
			return err
		}
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.repo.SetPasswordHash(ctx, id, hash); err != nil {
		return err
	}
	s.record(ctx, actor, "user.password", id, nil)
	return nil
}

// ChangePassword lets a user replace their own password.
func (s *Service) ChangePassword(ctx context.Context, actor *rbac.Principal, current, next string) error {
	if actor == nil {
		return httpx.ErrUnauthorized
	}
	u, err := s.repo.GetUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !CheckPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	return s.SetPassword(ctx, actor, actor.ID, next)
}

// LoadPrincipal resolves the authorization view of an account.
func (s *Service) LoadPrincipal(ctx context.Context, id string) (*rbac.Principal, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Principal(), nil
}

// EnsureProfile returns the account for email, creating a cashier profile when
// auto provisioning is enabled. Provisioned accounts have no password and no
// store until an administrator assigns one.
func (s *Service) EnsureProfile(ctx context.Context, email, fullName string) (User, error) {
	email = normalizeEmail(email)
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil || !errors.Is(err, ErrUserNotFound) || !s.autoProvision {
		return u, err
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName, _, _ = strings.Cut(email, "@")
	}
	created, err := s.repo.InsertUser(ctx, User{
		ID:          uuid.NewString(),
		Email:       email,
		FullName:    fullName,
		Role:        rbac.RoleCajero,
		Permissions: []rbac.Permission{},
		IsActive:    true,
		CreatedAt:   s.now(),
	})
	if errors.Is(err, ErrEmailTaken) {
		return s.repo.GetUserByEmail(ctx, email)
	}
	if err != nil {
		return User{}, err
	}
	s.logger.Info("user profile provisioned", slog.String("user_id", created.ID), slog.String("email", email))
	s.record(ctx, nil, "user.provision", created.ID, map[string]any{"email": email})
	return created, nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *Service) hash(password string) (string, error) {
	if err := s.checkPolicy(password); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(b), nil
}

func (s *Service) checkPolicy(password string) error {
	policy := settings.Defaults().Security
	if s.policy != nil {
		policy = s.policy.Security()
	}
	if len([]rune(password)) < policy.MinPasswordLength {
		return fmt.Errorf("%w: at least %d characters", ErrWeakPassword, policy.MinPasswordLength)
	}
	if len(password) > 72 {
		return fmt.Errorf("%w: at most 72 bytes", ErrWeakPassword)
	}
	if policy.RequireNumbers && !strings.ContainsFunc(password, unicode.IsDigit) {
		return fmt.Errorf("%w: a number is required", ErrWeakPassword)
	}
	special := func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }
	if policy.RequireSpecialChars && !strings.ContainsFunc(password, special) {
		return fmt.Errorf("%w: a special character is required", ErrWeakPassword)
	}
	return nil
}

// normalizeAccess enforces the role and store invariants on u.
func normalizeAccess(u *User) error {
	if !u.Role.Valid() {
		return ErrUnknownRole
	}
	if u.Role.StoreScoped() {
		if u.AssignedStoreID == "" {
			return ErrStoreRequired
		}
	} else {
		u.AssignedStoreID = ""
	}
	perms := make([]rbac.Permission, 0, len(u.Permissions))
	for _, p := range u.Permissions {
		if !rbac.KnownPermission(p) {
			return fmt.Errorf("%w: %s", ErrUnknownPermission, p)
		}
		if !slices.Contains(perms, p) {
			perms = append(perms, p)
		}
	}
	u.Permissions = perms
	return nil
}

// authorizeTarget rejects changes to accounts holding system management unless
// the actor holds it too.
func authorizeTarget(actor *rbac.Principal, target User) error {
	if managesSystem(target.Role) && !rbac.CanManageSystem(actor) {
		return ErrPrivilegedTarget
	}
	return nil
}

// authorizeAccess checks that next grants nothing beyond what the actor holds.
// Permissions already present in prev are not re-checked.
func authorizeAccess(actor *rbac.Principal, prev, next User) error {
	if next.Role != prev.Role && managesSystem(next.Role) && !rbac.CanManageSystem(actor) {
		return ErrPrivilegedTarget
	}
	for _, p := range next.Permissions {
		if slices.Contains(prev.Permissions, p) {
			continue
		}
		if !rbac.HasPermission(actor, p) {
			return fmt.Errorf("%w: %s", ErrPermissionGrant, p)
		}
	}
	return nil
}

func managesSystem(role rbac.Role) bool {
	def, ok := rbac.Lookup(role)
	return ok && def.CanManageSystem
}

func accessChanged(prev, next User) bool {
	if prev.Role != next.Role || len(prev.Permissions) != len(next.Permissions) {
		return true
	}
	for _, p := range next.Permissions {
		if !slices.Contains(prev.Permissions, p) {
			return true
		}
	}
	return false
}

func isSelf(actor *rbac.Principal, id string) bool {
	return actor != nil && actor.ID == id
}

func (s *Service) record(ctx context.Context, actor *rbac.Principal, action, entityID string, meta map[string]any) {
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	err := s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "user", EntityID: entityID, Meta: meta, At: s.now()})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

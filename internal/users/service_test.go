package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/settings"
)

type memoryRepo struct {
	users map[string]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[string]User{}}
}

func (m *memoryRepo) ListUsers(_ context.Context, f ListFilter) ([]User, error) {
	var out []User
	for _, u := range m.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.ActiveOnly && !u.IsActive {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryRepo) GetUser(_ context.Context, id string) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memoryRepo) GetUserByEmail(_ context.Context, email string) (User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *memoryRepo) InsertUser(ctx context.Context, u User) (User, error) {
	if _, err := m.GetUserByEmail(ctx, u.Email); err == nil {
		return User{}, ErrEmailTaken
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryRepo) UpdateUser(_ context.Context, u User) (User, error) {
	if _, ok := m.users[u.ID]; !ok {
		return User{}, ErrUserNotFound
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *memoryRepo) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type staticPolicy settings.Security

func (p staticPolicy) Security() settings.Security { return settings.Security(p) }

var director = &rbac.Principal{ID: "admin", Role: rbac.RoleDirector, Active: true}

func newService(repo *memoryRepo, opts ...Option) *Service {
	return NewService(repo, nil, append([]Option{WithHashCost(bcrypt.MinCost)}, opts...)...)
}

func TestCreateHashesAndNormalizes(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	u, err := svc.Create(context.Background(), director, CreateInput{
		Email:           "  Contable@FinanceHub.com ",
		FullName:        " Ana Pérez ",
		Role:            rbac.RoleAdminContable,
		AssignedStoreID: "store-1",
		Permissions:     []rbac.Permission{rbac.PermReportsExport, rbac.PermReportsExport},
		Password:        "s3cret!pass",
	})
	require.NoError(t, err)
	require.Equal(t, "contable@financehub.com", u.Email)
	require.Equal(t, "Ana Pérez", u.FullName)
	require.Empty(t, u.AssignedStoreID)
	require.Equal(t, []rbac.Permission{rbac.PermReportsExport}, u.Permissions)
	require.True(t, u.IsActive)
	require.True(t, CheckPassword(repo.users[u.ID].PasswordHash, "s3cret!pass"))

	_, err = svc.Create(context.Background(), director, CreateInput{
		Email: "contable@financehub.com", FullName: "Dup", Role: rbac.RoleDirector, Password: "s3cret!pass",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateEnforcesAccessRules(t *testing.T) {
	svc := newService(newMemoryRepo())
	base := CreateInput{Email: "x@financehub.com", FullName: "X", Password: "s3cret!pass"}

	in := base
	in.Role = "auditor"
	_, err := svc.Create(context.Background(), director, in)
	require.ErrorIs(t, err, ErrUnknownRole)

	in = base
	in.Role = rbac.RoleCajero
	_, err = svc.Create(context.Background(), director, in)
	require.ErrorIs(t, err, ErrStoreRequired)

	in = base
	in.Role = rbac.RoleDirector
	in.Permissions = []rbac.Permission{"closures:approve"}
	_, err = svc.Create(context.Background(), director, in)
	require.ErrorIs(t, err, ErrUnknownPermission)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPasswordPolicy(t *testing.T) {
	policy := staticPolicy{MinPasswordLength: 10, RequireNumbers: true, RequireSpecialChars: true, MaxLoginAttempts: 5, LockoutDuration: 15}
	svc := newService(newMemoryRepo(), WithSecurityPolicy(policy))
	create := func(pw string) error {
		_, err := svc.Create(context.Background(), director, CreateInput{
			Email: "p@financehub.com", FullName: "P", Role: rbac.RoleDirector, Password: pw,
		})
		return err
	}
	require.ErrorIs(t, create("short1!"), ErrWeakPassword)
	require.ErrorIs(t, create("longenough!!"), ErrWeakPassword)
	require.ErrorIs(t, create("longenough12"), ErrWeakPassword)
	require.NoError(t, create("longenough1!"))
}

func TestUpdateAndSelfProtection(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	u, err := svc.Create(context.Background(), director, CreateInput{
		Email: "g@financehub.com", FullName: "G", Role: rbac.RoleGerenteTienda, AssignedStoreID: "s1", Password: "s3cret!pass",
	})
	require.NoError(t, err)

	role := rbac.RoleDirector
	updated, err := svc.Update(context.Background(), director, u.ID, UpdateInput{Role: &role})
	require.NoError(t, err)
	require.Empty(t, updated.AssignedStoreID)

	role = rbac.RoleCajero
	_, err = svc.Update(context.Background(), director, u.ID, UpdateInput{Role: &role})
	require.ErrorIs(t, err, ErrStoreRequired)

	self := &rbac.Principal{ID: u.ID, Role: rbac.RoleDirector, Active: true}
	_, err = svc.SetActive(context.Background(), self, u.ID, false)
	require.ErrorIs(t, err, ErrSelfChange)
	require.ErrorIs(t, svc.Delete(context.Background(), self, u.ID), ErrSelfChange)

	off, err := svc.SetActive(context.Background(), director, u.ID, false)
	require.NoError(t, err)
	require.False(t, off.IsActive)

	p, err := svc.LoadPrincipal(context.Background(), u.ID)
	require.NoError(t, err)
	require.False(t, p.Active)

	require.NoError(t, svc.Delete(context.Background(), director, u.ID))
	_, err = svc.LoadPrincipal(context.Background(), u.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	u, err := svc.Create(context.Background(), director, CreateInput{
		Email: "c@financehub.com", FullName: "C", Role: rbac.RoleDirector, Password: "s3cret!pass",
	})
	require.NoError(t, err)
	self := u.Principal()

	require.ErrorIs(t, svc.ChangePassword(context.Background(), self, "wrong", "n3w!password"), ErrWrongPassword)
	require.NoError(t, svc.ChangePassword(context.Background(), self, "s3cret!pass", "n3w!password"))
	require.True(t, CheckPassword(repo.users[u.ID].PasswordHash, "n3w!password"))
}

func TestEnsureProfile(t *testing.T) {
	repo := newMemoryRepo()
	_, err := newService(repo).EnsureProfile(context.Background(), "new@financehub.com", "")
	require.ErrorIs(t, err, ErrUserNotFound)

	svc := newService(repo, WithAutoProvision(true))
	u, err := svc.EnsureProfile(context.Background(), "New@FinanceHub.com", "")
	require.NoError(t, err)
	require.Equal(t, rbac.RoleCajero, u.Role)
	require.Equal(t, "new", u.FullName)
	require.Empty(t, u.PasswordHash)
	require.False(t, rbac.CanAccessStore(u.Principal(), "s1"))

	again, err := svc.EnsureProfile(context.Background(), "new@financehub.com", "Other")
	require.NoError(t, err)
	require.Equal(t, u.ID, again.ID)
	require.Len(t, repo.users, 1)
}

func TestHandlerRequiresUserManagement(t *testing.T) {
	svc := newService(newMemoryRepo())
	h := NewHandler(nil, svc, rbac.Middleware{})
	serve := func(p *rbac.Principal, method, path, body string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), p)))
			})
		})
		r.Route("/users", h.MountRoutes)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	manager := &rbac.Principal{ID: "m1", Role: rbac.RoleGerenteTienda, AssignedStoreID: "s1", Active: true}
	require.Equal(t, http.StatusForbidden, serve(manager, http.MethodGet, "/users/", "").Code)

	rec := serve(director, http.MethodPost, "/users/", `{"email":"n@financehub.com","full_name":"N","role":"director","password":"s3cret!pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotContains(t, rec.Body.String(), "password")

	rec = serve(director, http.MethodPost, "/users/", `{"email":"bad","full_name":"N","role":"director","password":"s3cret!pass"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(director, http.MethodGet, "/users/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "n@financehub.com")
}

func TestAccountManagersCannotEscalate(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newService(repo)

	boss, err := svc.Create(ctx, director, CreateInput{
		Email: "boss@financehub.com", FullName: "Boss", Role: rbac.RoleDirector, Password: "s3cret!pass",
	})
	require.NoError(t, err)
	acct, err := svc.Create(ctx, director, CreateInput{
		Email: "acct@financehub.com", FullName: "Acct", Role: rbac.RoleAdminContable, Password: "s3cret!pass",
	})
	require.NoError(t, err)
	clerk, err := svc.Create(ctx, director, CreateInput{
		Email: "clerk@financehub.com", FullName: "Clerk", Role: rbac.RoleCajero, AssignedStoreID: "s1", Password: "s3cret!pass",
	})
	require.NoError(t, err)
	actor := acct.Principal()

	toDirector := rbac.RoleDirector
	_, err = svc.Update(ctx, actor, acct.ID, UpdateInput{Role: &toDirector})
	require.ErrorIs(t, err, ErrSelfAccessChange)
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Equal(t, rbac.RoleAdminContable, repo.users[acct.ID].Role)

	extra := []rbac.Permission{rbac.PermSettingsEdit}
	_, err = svc.Update(ctx, actor, acct.ID, UpdateInput{Permissions: &extra})
	require.ErrorIs(t, err, ErrSelfAccessChange)

	name := "Acct Renamed"
	same := rbac.RoleAdminContable
	renamed, err := svc.Update(ctx, actor, acct.ID, UpdateInput{FullName: &name, Role: &same})
	require.NoError(t, err)
	require.Equal(t, "Acct Renamed", renamed.FullName)

	_, err = svc.Update(ctx, actor, clerk.ID, UpdateInput{Role: &toDirector})
	require.ErrorIs(t, err, ErrPrivilegedTarget)

	_, err = svc.Create(ctx, actor, CreateInput{
		Email: "d2@financehub.com", FullName: "D2", Role: rbac.RoleDirector, Password: "s3cret!pass",
	})
	require.ErrorIs(t, err, ErrPrivilegedTarget)

	_, err = svc.Update(ctx, actor, clerk.ID, UpdateInput{Permissions: &extra})
	require.ErrorIs(t, err, ErrPermissionGrant)
	_, err = svc.Create(ctx, actor, CreateInput{
		Email: "c2@financehub.com", FullName: "C2", Role: rbac.RoleCajero, AssignedStoreID: "s1",
		Permissions: extra, Password: "s3cret!pass",
	})
	require.ErrorIs(t, err, ErrPermissionGrant)

	held := []rbac.Permission{rbac.PermReportsView}
	granted, err := svc.Update(ctx, actor, clerk.ID, UpdateInput{Permissions: &held})
	require.NoError(t, err)
	require.Equal(t, held, granted.Permissions)

	oldHash := repo.users[boss.ID].PasswordHash
	require.ErrorIs(t, svc.SetPassword(ctx, actor, boss.ID, "0wned!password"), ErrPrivilegedTarget)
	require.Equal(t, oldHash, repo.users[boss.ID].PasswordHash)
	off := false
	_, err = svc.Update(ctx, actor, boss.ID, UpdateInput{IsActive: &off})
	require.ErrorIs(t, err, ErrPrivilegedTarget)
	require.ErrorIs(t, svc.Delete(ctx, actor, boss.ID), ErrPrivilegedTarget)

	require.NoError(t, svc.SetPassword(ctx, actor, clerk.ID, "n3w!password"))
	require.NoError(t, svc.SetPassword(ctx, director, boss.ID, "n3w!password"))
}

func TestUpdateKeepsGrantsHeldBeforehand(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newService(repo)
	clerk, err := svc.Create(ctx, director, CreateInput{
		Email: "k@financehub.com", FullName: "K", Role: rbac.RoleCajero, AssignedStoreID: "s1",
		Permissions: []rbac.Permission{rbac.PermSettingsEdit}, Password: "s3cret!pass",
	})
	require.NoError(t, err)

	acct := &rbac.Principal{ID: "acct", Role: rbac.RoleAdminContable, Active: true}
	name := "K2"
	updated, err := svc.Update(ctx, acct, clerk.ID, UpdateInput{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, []rbac.Permission{rbac.PermSettingsEdit}, updated.Permissions)
}

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/financehub/financehub/internal/auth"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/settings"
	"github.com/financehub/financehub/internal/shared"
	"github.com/financehub/financehub/internal/users"
	_ "github.com/financehub/financehub/testing"
)

type userStore struct {
	byID    map[string]users.User
	changed []string
}

func (s *userStore) GetByEmail(_ context.Context, email string) (users.User, error) {
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return users.User{}, users.ErrUserNotFound
}

func (s *userStore) LoadPrincipal(_ context.Context, id string) (*rbac.Principal, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return u.Principal(), nil
}

func (s *userStore) ChangePassword(_ context.Context, actor *rbac.Principal, _, _ string) error {
	s.changed = append(s.changed, actor.ID)
	return nil
}

type policy settings.Security

func (p policy) Security() settings.Security { return settings.Security(p) }

type fixture struct {
	router http.Handler
	store  *userStore
	tokens *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-pass1!"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &userStore{byID: map[string]users.User{
		"u1": {ID: "u1", Email: "admin@financehub.com", FullName: "Admin", Role: rbac.RoleDirector, IsActive: true, PasswordHash: string(hash)},
		"u2": {ID: "u2", Email: "off@financehub.com", FullName: "Off", Role: rbac.RoleDirector, IsActive: false, PasswordHash: string(hash)},
	}}

	sessions := shared.NewSessionManager(client, "fh_session", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	tokens := auth.NewTokenManager("0123456789abcdef-secret", "financehub", time.Hour)
	lockout := auth.NewLockout(client, policy{MinPasswordLength: 8, MaxLoginAttempts: 2, LockoutDuration: 1})
	svc := auth.NewService(store, lockout, nil)
	authn := auth.NewAuthenticator(tokens, sessions, store, nil, nil)
	h := auth.NewHandler(nil, svc, tokens, sessions, csrf, store, rbac.Middleware{})

	r := chi.NewRouter()
	r.Use(sessions.Middleware(nil))
	r.Use(csrf.Middleware(nil))
	r.Use(authn.Middleware)
	r.Route("/auth", h.MountRoutes)
	return &fixture{router: r, store: store, tokens: tokens}
}

func (f *fixture) do(method, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type loginBody struct {
	Token     string `json:"token"`
	CSRFToken string `json:"csrf_token"`
}

func TestLoginSessionAndBearer(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/auth/login", `{"email":"Admin@FinanceHub.com","password":"correct-pass1!"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "password_hash")
	var body loginBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	require.NotEmpty(t, body.CSRFToken)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	withCookie := func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}

	rec = f.do(http.MethodGet, "/auth/me", "", withCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"role_name":"Director"`)
	require.Contains(t, rec.Body.String(), `"can_manage_system":true`)

	rec = f.do(http.MethodGet, "/auth/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+body.Token)
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/auth/roles", "", withCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"asistente_admin"`)

	changeBody := `{"current_password":"correct-pass1!","new_password":"another-pass2!"}`
	rec = f.do(http.MethodPost, "/auth/password", changeBody, withCookie)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPost, "/auth/password", changeBody, func(r *http.Request) {
		withCookie(r)
		r.Header.Set(shared.CSRFHeader, body.CSRFToken)
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"u1"}, f.store.changed)

	rec = f.do(http.MethodPost, "/auth/password", changeBody, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+body.Token)
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodPost, "/auth/logout", "", func(r *http.Request) {
		withCookie(r)
		r.Header.Set(shared.CSRFHeader, body.CSRFToken)
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/auth/me", "", withCookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginFailuresLockOut(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		rec := f.do(http.MethodPost, "/auth/login", `{"email":"admin@financehub.com","password":"wrong"}`, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := f.do(http.MethodPost, "/auth/login", `{"email":"admin@financehub.com","password":"correct-pass1!"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestInactiveAndInvalidCredentials(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/auth/login", `{"email":"off@financehub.com","password":"correct-pass1!"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/auth/login", `{"email":"nobody@financehub.com","password":"correct-pass1!"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/auth/login", `{"email":"not-an-email","password":"x"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	token, _, err := f.tokens.Generate(&rbac.Principal{ID: "u2", Email: "off@financehub.com", Role: rbac.RoleDirector})
	require.NoError(t, err)
	rec = f.do(http.MethodGet, "/auth/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "account disabled")

	rec = f.do(http.MethodGet, "/auth/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-token")
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("0123456789abcdef-secret", "financehub", time.Minute)
	token, exp, err := tm.Generate(&rbac.Principal{ID: "u1", Email: "a@b.c", Role: rbac.RoleCajero})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "cajero", claims.Role)

	other := auth.NewTokenManager("another-secret-0123456789", "financehub", time.Minute)
	_, err = other.Parse(token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	expired := auth.NewTokenManager("0123456789abcdef-secret", "financehub", -time.Minute)
	stale, _, err := expired.Generate(&rbac.Principal{ID: "u1"})
	require.NoError(t, err)
	_, err = tm.Parse(stale)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

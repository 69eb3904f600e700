package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
)

type memoryRepo struct {
	sections map[string]json.RawMessage
	failSave error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sections: map[string]json.RawMessage{}}
}

func (m *memoryRepo) LoadSections(context.Context) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(m.sections))
	for k, v := range m.sections {
		out[k] = v
	}
	return out, nil
}

func (m *memoryRepo) SaveSection(_ context.Context, section string, payload json.RawMessage, _ string) error {
	if m.failSave != nil {
		return m.failSave
	}
	m.sections[section] = payload
	return nil
}

func TestDefaultsValidate(t *testing.T) {
	d := Defaults()
	for _, name := range Sections() {
		ptr, ok := d.sectionPtr(name)
		require.True(t, ok, name)
		require.NoError(t, httpx.Validate(ptr), name)
	}
}

func TestSaveMergesAndSwaps(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	out, err := svc.Save(context.Background(), "u1", SectionFinancial, json.RawMessage(`{"currencySymbol":"Bs","decimalPlaces":3}`))
	require.NoError(t, err)
	require.Equal(t, "Bs", out.Financial.CurrencySymbol)
	require.Equal(t, 3, out.Financial.DecimalPlaces)
	require.Equal(t, "USD", out.Financial.Currency)
	require.Equal(t, out, svc.Current())
	require.Contains(t, string(repo.sections[SectionFinancial]), `"currencySymbol":"Bs"`)

	opts := svc.MessageOptions()
	require.Equal(t, "Bs", opts.CurrencySymbol)
	require.Equal(t, 3, opts.DecimalPlaces)
	require.Equal(t, "es", opts.Language.String())
}

func TestSaveRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		section string
		body    string
	}{
		{SectionFinancial, `{"currency":"US"}`},
		{SectionFinancial, `{"decimalPlaces":5}`},
		{SectionFinancial, `{"taxRate":101}`},
		{SectionFinancial, `{"taxRate":-1}`},
		{SectionSystem, `{"sessionTimeout":4}`},
		{SectionSystem, `{"timezone":"Mars/Olympus"}`},
		{SectionSystem, `{"language":"de"}`},
		{SectionReports, `{"dateFormat":"YYYY/MM/DD"}`},
		{SectionSecurity, `{"minPasswordLength":5}`},
		{SectionSecurity, `{"minPasswordLength":65}`},
		{SectionSecurity, `{"maxLoginAttempts":0}`},
		{SectionSecurity, `{"lockoutDuration":0}`},
		{SectionGeneral, `{"companyName":""}`},
		{SectionGeneral, `{"unknown":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.section+tc.body, func(t *testing.T) {
			repo := newMemoryRepo()
			svc := NewService(repo, nil, nil)
			_, err := svc.Save(context.Background(), "u1", tc.section, json.RawMessage(tc.body))
			require.ErrorIs(t, err, httpx.ErrValidation)
			require.Empty(t, repo.sections)
			require.Equal(t, Defaults(), svc.Current())
		})
	}
}

func TestSaveUnknownSection(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.Save(context.Background(), "u1", "billing", json.RawMessage(`{}`))
	require.ErrorIs(t, err, ErrUnknownSection)
}

func TestSaveKeepsCurrentWhenStoreFails(t *testing.T) {
	repo := newMemoryRepo()
	repo.failSave = errors.New("down")
	svc := NewService(repo, nil, nil)
	_, err := svc.Save(context.Background(), "u1", SectionSecurity, json.RawMessage(`{"maxLoginAttempts":3}`))
	require.Error(t, err)
	require.Equal(t, 5, svc.Security().MaxLoginAttempts)
}

func TestLoadIgnoresInvalidSections(t *testing.T) {
	repo := newMemoryRepo()
	repo.sections[SectionSecurity] = json.RawMessage(`{"maxLoginAttempts":3}`)
	repo.sections[SectionFinancial] = json.RawMessage(`{"decimalPlaces":9}`)
	repo.sections["legacy"] = json.RawMessage(`{}`)

	svc := NewService(repo, nil, nil)
	require.NoError(t, svc.Load(context.Background()))

	cur := svc.Current()
	require.Equal(t, 3, cur.Security.MaxLoginAttempts)
	require.Equal(t, 8, cur.Security.MinPasswordLength)
	require.Equal(t, Defaults().Financial, cur.Financial)
}

func TestHandlerRequiresSystemManagement(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	h := NewHandler(nil, svc, rbac.Middleware{})

	serve := func(p *rbac.Principal, method, path, body string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), p)))
			})
		})
		r.Route("/settings", h.MountRoutes)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	director := &rbac.Principal{ID: "d1", Role: rbac.RoleDirector, Active: true}
	rec := serve(director, http.MethodPut, "/settings/reports", `{"timeFormat":"24h"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "24h", svc.Current().Reports.TimeFormat)

	rec = serve(director, http.MethodPut, "/settings/reports", `{"timeFormat":"25h"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	cashier := &rbac.Principal{ID: "c1", Role: rbac.RoleCajero, AssignedStoreID: "s1", Active: true}
	rec = serve(cashier, http.MethodPut, "/settings/reports", `{"timeFormat":"12h"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(director, http.MethodGet, "/settings/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"timeFormat":"24h"`)
}

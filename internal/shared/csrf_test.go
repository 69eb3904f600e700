package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureTokenIsStable(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := newSession()
	first, err := m.EnsureToken(sess)
	require.NoError(t, err)
	second, err := m.EnsureToken(sess)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.NoError(t, m.VerifyToken(sess, first))
	require.ErrorIs(t, m.VerifyToken(sess, first+"x"), ErrCSRFTokenMismatch)
	require.ErrorIs(t, m.VerifyToken(sess, ""), ErrCSRFTokenMissing)
	require.ErrorIs(t, m.VerifyToken(newSession(), first), ErrCSRFTokenMissing)

	_, err = m.EnsureToken(nil)
	require.ErrorIs(t, err, ErrCSRFTokenMissing)
}

func TestCSRFMiddleware(t *testing.T) {
	m := NewCSRFManager("secret")
	authed := newSession()
	authed.SetUser("u1")
	token, err := m.EnsureToken(authed)
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := m.Middleware(nil)(ok)

	serve := func(method string, sess *Session, header map[string]string) int {
		req := httptest.NewRequest(method, "/stores", nil)
		for k, v := range header {
			req.Header.Set(k, v)
		}
		if sess != nil {
			req = req.WithContext(ContextWithSession(req.Context(), sess))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, serve(http.MethodGet, authed, nil))
	require.Equal(t, http.StatusForbidden, serve(http.MethodPost, authed, nil))
	require.Equal(t, http.StatusNoContent, serve(http.MethodPost, authed, map[string]string{CSRFHeader: token}))
	require.Equal(t, http.StatusNoContent, serve(http.MethodPost, authed, map[string]string{"Authorization": "Bearer abc"}))
	require.Equal(t, http.StatusNoContent, serve(http.MethodPost, newSession(), nil))
	require.Equal(t, http.StatusNoContent, serve(http.MethodPost, nil, nil))
}

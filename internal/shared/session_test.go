package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "fh_session", time.Hour, false), mr
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "fh_session" {
			return c
		}
	}
	return nil
}

func TestSessionMiddlewarePersistsWrites(t *testing.T) {
	sm, mr := newManager(t)
	login := sm.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		sess.Rotate()
		sess.SetUser("u1")
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.True(t, mr.Exists("session:"+cookie.Value))
	require.InDelta(t, time.Hour.Seconds(), mr.TTL("session:"+cookie.Value).Seconds(), 1)

	var seen string
	me := sm.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context()).User()
	}))
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	me.ServeHTTP(rec, req)
	require.Equal(t, "u1", seen)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUntouchedSessionsAreNotStored(t *testing.T) {
	sm, mr := newManager(t)
	h := sm.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Nil(t, sessionCookie(rec))
	require.Empty(t, mr.Keys())
}

func TestUnknownSessionIDIsNotAdopted(t *testing.T) {
	sm, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "fh_session", Value: "attacker-chosen"})
	sess, err := sm.Load(req.Context(), req)
	require.NoError(t, err)
	require.NotEqual(t, "attacker-chosen", sess.ID)
	require.True(t, sess.IsNew())
}

func TestRotateAndDestroyDropStoredKeys(t *testing.T) {
	sm, mr := newManager(t)
	sess := newSession()
	sess.SetUser("u1")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(t.Context(), rec, sess))
	oldID := sess.ID
	require.True(t, mr.Exists("session:"+oldID))

	sess.Rotate()
	require.NoError(t, sm.Commit(t.Context(), httptest.NewRecorder(), sess))
	require.False(t, mr.Exists("session:"+oldID))
	require.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	rec = httptest.NewRecorder()
	require.NoError(t, sm.Commit(t.Context(), rec, sess))
	require.False(t, mr.Exists("session:"+sess.ID))
	require.Equal(t, -1, sessionCookie(rec).MaxAge)
}

func TestSignedInSession(t *testing.T) {
	_, _, ok := SignedInSession(context.Background())
	require.False(t, ok)

	anon := &Session{}
	sess, _, ok := SignedInSession(ContextWithSession(context.Background(), anon))
	require.False(t, ok)
	require.Same(t, anon, sess)

	anon.SetUser("u-1")
	sess, userID, ok := SignedInSession(ContextWithSession(context.Background(), anon))
	require.True(t, ok)
	require.Equal(t, "u-1", userID)
	require.Same(t, anon, sess)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/shared"
	"github.com/financehub/financehub/internal/users"
)

// PrincipalLoader resolves the authorization view of an account.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, id string) (*rbac.Principal, error)
}

// Provisioner creates a profile for a verified identity without an account.
type Provisioner interface {
	EnsureProfile(ctx context.Context, email, fullName string) (users.User, error)
}

// Authenticator resolves the caller from a bearer token or the session cookie.
type Authenticator struct {
	tokens      *TokenManager
	sessions    *shared.SessionManager
	loader      PrincipalLoader
	provisioner Provisioner
	logger      *slog.Logger
}

// NewAuthenticator builds an Authenticator. provisioner may be nil.
func NewAuthenticator(tokens *TokenManager, sessions *shared.SessionManager, loader PrincipalLoader, provisioner Provisioner, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{tokens: tokens, sessions: sessions, loader: loader, provisioner: provisioner, logger: logger}
}

// Middleware stores the caller's principal in the request context. Requests
// without credentials pass through unauthenticated; route guards reject them.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := bearerToken(r); ok {
			p, err := a.fromToken(r.Context(), raw)
			if err != nil {
				a.reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), p)))
			return
		}

		sess, userID, ok := shared.SignedInSession(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		p, err := a.loader.LoadPrincipal(r.Context(), userID)
		if err == nil && !p.Active {
			err = errInactive
		}
		if err != nil {
			if a.sessions != nil && !httpx.Internal(err) {
				a.sessions.Destroy(sess)
			}
			a.reject(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), p)))
	})
}

var errInactive = fmt.Errorf("auth: account disabled: %w", httpx.ErrUnauthorized)

func (a *Authenticator) fromToken(ctx context.Context, raw string) (*rbac.Principal, error) {
	claims, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	p, err := a.loader.LoadPrincipal(ctx, claims.Subject)
	if errors.Is(err, users.ErrUserNotFound) && a.provisioner != nil && claims.Email != "" {
		var u users.User
		u, err = a.provisioner.EnsureProfile(ctx, claims.Email, "")
		if err == nil {
			p = u.Principal()
		}
	}
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, errInactive
	}
	return p, nil
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.Internal(err) {
		a.logger.Error("resolve principal failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	detail := "authentication required"
	if errors.Is(err, httpx.ErrUnauthorized) {
		detail = err.Error()
	}
	httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", detail)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
}

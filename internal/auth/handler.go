package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/shared"
	"github.com/financehub/financehub/internal/users"
)

// PasswordChanger replaces the caller's own password.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, actor *rbac.Principal, current, next string) error
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tokens    *TokenManager
	sessions  *shared.SessionManager
	csrf      *shared.CSRFManager
	passwords PasswordChanger
	rbac      rbac.Middleware
	loginMW   []func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. loginMW wraps the login route only.
func NewHandler(logger *slog.Logger, service *Service, tokens *TokenManager, sessions *shared.SessionManager, csrf *shared.CSRFManager, passwords PasswordChanger, rbac rbac.Middleware, loginMW ...func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		tokens:    tokens,
		sessions:  sessions,
		csrf:      csrf,
		passwords: passwords,
		rbac:      rbac,
		loginMW:   loginMW,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.loginMW...).Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny())
		r.Get("/me", h.me)
		r.Get("/roles", h.roles)
		r.Post("/password", h.changePassword)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	CSRFToken string      `json:"csrf_token,omitempty"`
	User      users.User  `json:"user"`
	Profile   profileView `json:"profile"`
}

type profileView struct {
	User               *rbac.Principal   `json:"user"`
	RoleName           string            `json:"role_name"`
	Permissions        []rbac.Permission `json:"permissions"`
	CanAccessAllStores bool              `json:"can_access_all_stores"`
	CanManageUsers     bool              `json:"can_manage_users"`
	CanManageSystem    bool              `json:"can_manage_system"`
}

func newProfile(p *rbac.Principal) profileView {
	def, _ := rbac.Lookup(p.Role)
	return profileView{
		User:               p,
		RoleName:           rbac.RoleName(p.Role),
		Permissions:        rbac.EffectivePermissions(p),
		CanAccessAllStores: def.CanAccessAllStores,
		CanManageUsers:     rbac.CanManageUsers(p),
		CanManageSystem:    rbac.CanManageSystem(p),
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrLockedOut) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", err.Error())
			return
		}
		if httpx.Internal(err) {
			h.logger.Error("login failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	p := user.Principal()
	token, exp, err := h.tokens.Generate(p)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resp := loginResponse{Token: token, ExpiresAt: exp, User: user, Profile: newProfile(p)}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Rotate()
		sess.SetUser(user.ID)
		sess.Delete(shared.CSRFSessionKey)
		if csrfToken, err := h.csrf.EnsureToken(sess); err == nil {
			resp.CSRFToken = csrfToken
		}
	}
	h.logger.Info("user logged in", slog.String("user_id", user.ID))
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && h.sessions != nil {
		h.sessions.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, newProfile(rbac.PrincipalFromContext(r.Context())))
}

func (h *Handler) roles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": rbac.Roles()})
}

type changePasswordRequest struct {
	Current string `json:"current_password" validate:"required"`
	Next    string `json:"new_password" validate:"required"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordRequest
	if err := httpx.Bind(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.passwords.ChangePassword(r.Context(), rbac.PrincipalFromContext(r.Context()), in.Current, in.Next); err != nil {
		if httpx.Internal(err) {
			h.logger.Error("change password failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

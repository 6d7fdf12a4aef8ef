package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/auth"
	"github.com/kiwari-pos/cafeteria/internal/middleware"
	"github.com/kiwari-pos/cafeteria/internal/view"
	"github.com/rs/zerolog"
)

// SessionStore defines the sign-in methods needed by auth handlers.
// Satisfied by *auth.Bridge.
type SessionStore interface {
	Enabled() bool
	Consume(ctx context.Context, profileID uuid.UUID, fragment string) (auth.Session, error)
	SignOut(ctx context.Context, profileID uuid.UUID) error
	LoginURL() string
	LogoutURL() string
}

// AuthHandler handles the identity provider redirects.
type AuthHandler struct {
	sessions SessionStore
	views    *view.Renderer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions SessionStore, views *view.Renderer) *AuthHandler {
	return &AuthHandler{sessions: sessions, views: views}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
// Expected to be mounted at /auth.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireEnabled)
		r.Get("/login", h.Login)
		r.Get("/callback", h.CallbackPage)
		r.Post("/callback", h.Callback)
		r.Post("/logout", h.Logout)
	})
}

func (h *AuthHandler) requireEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.sessions.Enabled() {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Login handles GET /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.sessions.LoginURL(), http.StatusFound)
}

// CallbackPage handles GET /auth/callback. The provider puts the tokens in
// the URL fragment, which browsers never send, so the page posts it back.
func (h *AuthHandler) CallbackPage(w http.ResponseWriter, r *http.Request) {
	if err := h.views.Render(w, http.StatusOK, view.PageCallback, view.CallbackPage{}); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render callback page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Callback handles POST /auth/callback with the relayed fragment.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := zerolog.Ctx(ctx)

	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/?error="+view.ErrCodeSignIn)
		return
	}

	_, err := h.sessions.Consume(ctx, middleware.ProfileFromContext(ctx), r.PostForm.Get("fragment"))
	if err != nil {
		if errors.Is(err, auth.ErrNoTokens) {
			log.Warn().Msg("sign-in callback without tokens")
		} else {
			log.Error().Err(err).Msg("store sign-in session")
		}
		redirect(w, r, "/?error="+view.ErrCodeSignIn)
		return
	}

	log.Info().Msg("signed in")
	redirect(w, r, "/")
}

// Logout handles POST /auth/logout. Local tokens are cleared before leaving
// for the provider's sign-out page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.sessions.SignOut(ctx, middleware.ProfileFromContext(ctx)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("sign out")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	redirect(w, r, h.sessions.LogoutURL())
}

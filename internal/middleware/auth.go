package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/auth"
	"github.com/rs/zerolog"
)

// ProfileCookie holds the signed browser profile token.
const ProfileCookie = "cafeteria_profile"

type contextKey string

const profileKey contextKey = "profile"

// Profile resolves the browser profile from the signed cookie. A missing or
// invalid cookie starts a new profile and sets a fresh cookie, so every
// request downstream has a profile.
func Profile(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID, ok := profileFromCookie(secret, r)
			if !ok {
				profileID = uuid.New()
				token, err := auth.GenerateProfileToken(secret, profileID)
				if err != nil {
					zerolog.Ctx(r.Context()).Error().Err(err).Msg("sign profile cookie")
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     ProfileCookie,
					Value:    token,
					Path:     "/",
					Expires:  time.Now().Add(auth.ProfileTokenTTL),
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), profileKey, profileID)
			logger := zerolog.Ctx(ctx).With().Str("profile_id", profileID.String()).Logger()
			ctx = logger.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func profileFromCookie(secret string, r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(ProfileCookie)
	if err != nil {
		return uuid.Nil, false
	}
	claims, err := auth.ValidateProfileToken(secret, c.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return claims.ProfileID, true
}

// ProfileFromContext returns the profile set by Profile, or uuid.Nil.
func ProfileFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(profileKey).(uuid.UUID)
	return id
}

// WithProfile stores a profile id in ctx. Used by tests and tools that
// bypass the cookie.
func WithProfile(ctx context.Context, profileID uuid.UUID) context.Context {
	return context.WithValue(ctx, profileKey, profileID)
}

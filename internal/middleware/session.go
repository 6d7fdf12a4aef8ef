package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/auth"
	"github.com/kiwari-pos/cafeteria/internal/cafeapi"
	"github.com/rs/zerolog"
)

const sessionKey contextKey = "session"

// SessionReader loads the sign-in state of a profile. Satisfied by *auth.Bridge.
type SessionReader interface {
	Enabled() bool
	Current(ctx context.Context, profileID uuid.UUID) (auth.Session, bool, error)
}

// Session loads the profile's sign-in state. While signed in, calls to the
// ordering API made with the request context carry the ID token. Mount after
// Profile.
func Session(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			sess, ok, err := sessions.Current(ctx, ProfileFromContext(ctx))
			if err != nil {
				// Treat as anonymous; the API rejects calls that need a token.
				zerolog.Ctx(ctx).Warn().Err(err).Msg("load session")
			}
			if ok {
				ctx = context.WithValue(ctx, sessionKey, sess)
				ctx = cafeapi.WithBearer(ctx, sess.IDToken)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session set by Session, if signed in.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(auth.Session)
	return sess, ok
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"adhok_platform/internal/lib/auth"
	"adhok_platform/internal/lib/errors"
	"adhok_platform/internal/models/user"
)

type contextKey string

const sessionKey contextKey = "session"

// Authenticator validates the bearer token and stores the session in
// request context. Handlers downstream receive identity explicitly from
// the context, never from ambient storage.
func Authenticator(log *slog.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractToken(r)
			if token == "" {
				render.Status(r, 401)
				render.JSON(w, r, errors.NewHttpError("Missing bearer token"))
				return
			}

			sess, err := auth.ParseToken(token, secret)
			if err != nil {
				log.Debug("rejected token", slog.String("error", err.Error()))
				render.Status(r, 401)
				render.JSON(w, r, errors.NewHttpError("Invalid session token"))
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route subtree to the given roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				render.Status(r, 401)
				render.JSON(w, r, errors.NewHttpError("Not authenticated"))
				return
			}
			for _, role := range roles {
				if sess.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			render.Status(r, 403)
			render.JSON(w, r, errors.NewHttpError("Insufficient role"))
		})
	}
}

func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(auth.Session)
	return sess, ok
}

// WithSession is a test hook for handler tests that bypass the
// authenticator.
func WithSession(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

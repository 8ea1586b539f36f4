package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"cutroom/internal/auth"
	"cutroom/internal/httputil"
)

// DevUserHeader carries the actor ID in dev when no bearer token is sent
const DevUserHeader = "X-User-ID"

// AuthOptions configures how the actor is resolved
type AuthOptions struct {
	// Verifier validates bearer tokens; nil disables token auth
	Verifier auth.JWTVerifier
	// AllowDevHeader accepts DevUserHeader when no Authorization header is present
	AllowDevHeader bool
	// PublicPaths skip authentication entirely
	PublicPaths []string
	Logger      *slog.Logger
}

// AuthMiddleware resolves the acting user and stores it in the request context.
// Requests without a valid identity get 401.
func AuthMiddleware(opts AuthOptions) func(http.Handler) http.Handler {
	public := make(map[string]bool, len(opts.PublicPaths))
	for _, p := range opts.PublicPaths {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header != "" {
				tokenString, ok := strings.CutPrefix(header, "Bearer ")
				if !ok || opts.Verifier == nil {
					httputil.RespondError(w, http.StatusUnauthorized, "invalid authorization header")
					return
				}

				claims, err := opts.Verifier.VerifyToken(tokenString)
				if err != nil {
					httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}

				next.ServeHTTP(w, httputil.WithActorID(r, claims.GetUserID()))
				return
			}

			if opts.AllowDevHeader {
				if userID := strings.TrimSpace(r.Header.Get(DevUserHeader)); userID != "" {
					opts.Logger.Debug("dev header auth", "user_id", userID, "path", r.URL.Path)
					next.ServeHTTP(w, httputil.WithActorID(r, userID))
					return
				}
			}

			httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		})
	}
}

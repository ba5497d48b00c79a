package middleware

import (
	"net/http"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/transport"
	"github.com/Siddharth-Keer/Koe-Dashboard/pkg/logger"
)

// RequireRole lets the request through only when the session carries one of roles.
// It must run after the auth middleware has stored the session.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := transport.NewBaseHandler(logger.From(r.Context()))

			sess, ok := internal.SessionFromContext(r.Context())
			if !ok {
				h.WriteAppError(w, internal.ErrInvalidToken)
				return
			}

			if _, ok := allowed[sess.Role]; !ok {
				h.Logger.Warn("access denied: role not allowed",
					"email", sess.Email,
					"role", sess.Role,
					"required_roles", roles)
				h.WriteAppError(w, internal.ErrInsufficientRole)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/byggassist/backend/store"
	"github.com/byggassist/backend/tool"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom returns the caller identity resolved by the auth
// middleware, or the zero identity for unauthenticated requests.
func IdentityFrom(ctx context.Context) tool.Identity {
	identity, _ := ctx.Value(identityKey).(tool.Identity)
	return identity
}

// withIdentity resolves a bearer token to the acting user and stores the
// identity on the request context. Requests without a valid token pass
// through anonymously; route handlers that need a caller use requireAuth.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			user, err := s.store.Users.GetByToken(r.Context(), token)
			if err == nil {
				ctx := context.WithValue(r.Context(), identityKey, tool.Identity{
					UserID:    user.ID,
					CompanyID: user.CompanyID,
					Name:      user.Name,
				})
				r = r.WithContext(ctx)
			} else if !store.IsNotFound(err) {
				writeError(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()).UserID == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

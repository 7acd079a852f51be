package api

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const rolesKey ctxKey = iota

// auth validates the bearer token and stashes its roles in the request
// context. A missing header is forbidden; a malformed or unrecognized token
// is a bad request, matching the long-standing client contract.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeStatus(w, http.StatusForbidden, "Missing token")
			return
		}
		if !strings.HasPrefix(header, "Bearer") {
			writeStatus(w, http.StatusBadRequest, "Invalid token format")
			return
		}
		parts := strings.Split(header, " ")
		if len(parts) != 2 {
			writeStatus(w, http.StatusBadRequest, "Invalid token format")
			return
		}

		roles, ok := s.cfg.RolesFor(parts[1])
		if !ok {
			writeStatus(w, http.StatusBadRequest, "Bad token")
			return
		}

		ctx := context.WithValue(r.Context(), rolesKey, roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, _ := r.Context().Value(rolesKey).([]string)
			for _, have := range roles {
				if have == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeStatus(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

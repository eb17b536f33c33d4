package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// SessionCookie é o cookie gravado no login.
const SessionCookie = "token"

type TokenParser interface {
	Parse(token string) (*usecase.Actor, error)
}

// RequireAuth aceita o token no header Authorization (Bearer) ou no cookie de sessão
// e coloca o Actor no contexto.
func RequireAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeAuthError(w, http.StatusUnauthorized, usecase.CodeUnauthorized, "authentication required")
				return
			}

			actor, err := tokens.Parse(raw)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, usecase.CodeUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(usecase.WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin deve rodar depois do RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := usecase.ActorFromContext(r.Context())
		if actor == nil {
			writeAuthError(w, http.StatusUnauthorized, usecase.CodeUnauthorized, "authentication required")
			return
		}
		if actor.Role != entity.RoleAdmin {
			writeAuthError(w, http.StatusForbidden, usecase.CodeForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}

package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// isPublic reports whether the request needs no token. GET /api/employers is
// open so the registration form can list employers before login; creating or
// authorizing employers is not.
func isPublic(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics", "/api/info",
		"/api/auth/employee/register", "/api/auth/employee/login", "/api/auth/admin/login",
		"/":
		return true
	case "/api/employers":
		return r.Method == http.MethodGet
	}
	return false
}

func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}

		raw := r.Header.Get(authHeader)
		// EventSource cannot set headers, so the stream accepts the token
		// as a query parameter.
		if raw == "" && r.URL.Path == "/api/dashboard/stream" {
			if t := r.URL.Query().Get("token"); t != "" {
				raw = bearer + t
			}
		}
		token, err := extractBearerToken(raw)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := auth.ParseAndValidate(token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				writeError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		principal := auth.Principal{
			SubjectID: claims.Subject,
			Code:      claims.Code,
			Role:      claims.Role,
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
	})
}

// requirePrincipal returns the caller, writing 401 when absent.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return auth.Principal{}, false
	}
	return principal, true
}

// requireRole returns the caller if it holds the role, writing 401/403
// otherwise.
func requireRole(w http.ResponseWriter, r *http.Request, role auth.Role) (auth.Principal, bool) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return auth.Principal{}, false
	}
	if principal.Role != role {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return auth.Principal{}, false
	}
	return principal, true
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hasan-mia/manufacturer-server/internal/apperror"
	"github.com/hasan-mia/manufacturer-server/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
// Using a package-private type (instead of a plain string) means only this
// package can read or write the email value in a request context — no other
// package can collide with or shadow it.
type contextKey string

const emailKey contextKey = "email"

// RequireAuth is the authentication gate run before every protected route.
//
// It reads the Authorization header, takes the second whitespace-delimited
// field as the bearer credential, and validates it:
//
//	header absent          → 401 Unauthorized
//	credential unverifiable → 403 Forbidden
//	valid                  → email claim stored in the request context
//
// The 401/403 split is deliberate and contractual: a request with no
// credential at all is "unauthorized", while a request that presented a
// credential we cannot trust is "forbidden".
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "UnAuthorized access")
				return
			}

			parts := strings.Fields(header)
			if len(parts) < 2 {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Forbidden access")
				return
			}

			email, err := tokens.Validate(parts[1])
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Forbidden access")
				return
			}

			ctx := context.WithValue(r.Context(), emailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin is the role authorizer. It must be mounted after RequireAuth:
// it takes the already-authenticated email from the context, looks the
// identity up, and only lets the request through when the record exists and
// carries the admin role.
//
// A missing identity record is an ordinary rejection, not a fault — the
// lookup's NotFound is folded into the same 403 as a non-admin role.
func RequireAdmin(users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := EmailFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "UnAuthorized access")
				return
			}

			user, err := users.GetByEmail(r.Context(), email)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					writeAuthError(w, http.StatusForbidden, "forbidden", "Forbidden access")
					return
				}
				writeAuthError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
				return
			}

			if !user.IsAdmin() {
				writeAuthError(w, http.StatusForbidden, "forbidden", "Forbidden access")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// EmailFromContext retrieves the authenticated email from the request
// context. Returns ("", false) when the request never passed RequireAuth.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

// HeaderSubject returns the first whitespace-delimited field of the
// Authorization header.
//
// The "/myprofile" and "/myorders" routes receive the owner's email in that
// position and compare it against the token's email claim, rejecting on
// mismatch. The gate itself never trusts this field — only the signed claim
// establishes identity. The comparison is kept because clients depend on
// the 403 it produces when the two disagree.
func HeaderSubject(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// writeAuthError emits the small {error, message} JSON body the protected
// routes answer rejections with. The middleware writes it directly rather
// than going through the handler package to keep the dependency direction
// one-way (handlers import auth, never the reverse).
func writeAuthError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + kind + `","message":"` + message + `"}`))
}

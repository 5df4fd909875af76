package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "chyrp/internal/delivery/http/helpers"
	"chyrp/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

// UserLoader resolves the account behind a verified token.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// SetUser returns a context carrying the authenticated user. Used by auth middleware.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}

var (
	errNoToken      = errors.New("missing authorization header")
	errBadScheme    = errors.New("invalid authorization format")
	errEmptyToken   = errors.New("missing token")
	errBadToken     = errors.New("invalid or expired token")
	errInactiveUser = errors.New("account is disabled")
)

// authenticate resolves the bearer token of r to an active user.
func authenticate(r *http.Request, verifier domain.TokenVerifier, users UserLoader) (*domain.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errNoToken
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, errBadScheme
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return nil, errEmptyToken
	}
	id, err := verifier.Verify(token)
	if err != nil {
		return nil, errBadToken
	}
	user, err := users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errBadToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errInactiveUser
	}
	return user, nil
}

func writeAuthError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, errInactiveUser):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, err.Error())
	case errors.Is(err, errNoToken), errors.Is(err, errBadScheme), errors.Is(err, errEmptyToken), errors.Is(err, errBadToken):
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, err.Error())
	default:
		h.WriteServiceError(w, r, logger, err)
	}
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the user in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, users UserLoader, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(r, verifier, users)
			if err != nil {
				writeAuthError(w, r, logger, err)
				return
			}
			next(w, r.WithContext(SetUser(r.Context(), user)))
		}
	}
}

// OptionalAuth sets the user when a valid Bearer token is present and otherwise lets the
// request through anonymously.
func OptionalAuth(verifier domain.TokenVerifier, users UserLoader, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next(w, r)
				return
			}
			user, err := authenticate(r, verifier, users)
			if err != nil {
				logger.DebugContext(r.Context(), "ignoring credentials on optional auth route", "err", err)
				next(w, r)
				return
			}
			next(w, r.WithContext(SetUser(r.Context(), user)))
		}
	}
}

// RequirePermission responds 403 unless the user set by RequireAuth holds perm.
func RequirePermission(perm domain.Permission) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "authentication required")
				return
			}
			if !user.Can(perm) {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "missing permission "+string(perm))
				return
			}
			next(w, r)
		}
	}
}

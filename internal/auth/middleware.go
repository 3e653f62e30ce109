package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	models "github.com/chrisdamba/boatride/internal"
	"github.com/chrisdamba/boatride/internal/utils"
	"github.com/google/uuid"
)

// Principal is the authenticated caller.
type Principal struct {
	ID   uuid.UUID
	Role string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

type TokenValidator interface {
	ValidateToken(tokenString string) (*Principal, error)
}

// RequireRole only lets requests through that carry a valid bearer token
// with one of the given roles.
func RequireRole(tokens TokenValidator, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				ae := utils.NewUnauthorized(err.Error())
				utils.RenderResponse(r, w, ae.StatusCode, ae)
				return
			}

			principal, err := tokens.ValidateToken(raw)
			if err != nil {
				ae := utils.NewUnauthorized(models.ErrUnauthorized.Error())
				utils.RenderResponse(r, w, ae.StatusCode, ae)
				return
			}

			if !hasRole(principal.Role, roles) {
				ae := utils.NewForbidden(models.ErrForbidden.Error())
				utils.RenderResponse(r, w, ae.StatusCode, ae)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", models.ErrUnauthorized
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("authorization header must be a bearer token")
	}
	return strings.TrimSpace(token), nil
}

func hasRole(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

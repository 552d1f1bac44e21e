package middleware

import (
	"context"
	"net/http"

	"freelancehub/models"
	"freelancehub/tokens"
	"freelancehub/utils"

	"github.com/julienschmidt/httprouter"
)

type ctxKey int

const claimsKey ctxKey = iota

// Auth guards handlers with bearer tokens.
type Auth struct {
	tokens *tokens.Manager
}

func NewAuth(m *tokens.Manager) *Auth { return &Auth{tokens: m} }

func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw, ok := utils.BearerToken(r)
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}
		claims, err := a.tokens.Parse(r.Context(), raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, r.WithContext(WithClaims(r.Context(), claims)), ps)
	}
}

// SelfOrAdmin must run inside Authenticate. It lets the request through when
// the caller owns the account named by the route parameter, or is an admin.
func (a *Auth) SelfOrAdmin(param string, next httprouter.Handle) httprouter.Handle {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims := ClaimsFrom(r.Context())
		if claims == nil || (claims.UserID() != ps.ByName(param) && claims.Role != models.RoleAdmin) {
			utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r, ps)
	})
}

func WithClaims(ctx context.Context, c *tokens.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFrom(ctx context.Context) *tokens.Claims {
	c, _ := ctx.Value(claimsKey).(*tokens.Claims)
	return c
}

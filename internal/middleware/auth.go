package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/freightboard/dashboard-api/internal/models"
)

type Middleware struct {
	AuthClient *auth.Client
}

func NewMiddleware(client *auth.Client) *Middleware {
	return &Middleware{AuthClient: client}
}

// context keys
type contextKey string

const (
	UIDKey   contextKey = "uid"
	OwnerKey contextKey = "owner"
)

// FirebaseAuth verifies the bearer token and derives the caller's owner
// context from custom claims. A token carrying the admin claim acts in the
// admin scope under its uid; a token carrying customer_id acts in the
// customer scope for that tenant. Anything else is rejected.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "invalid Authorization header", http.StatusUnauthorized)
			return
		}

		token, err := m.AuthClient.VerifyIDToken(r.Context(), parts[1])
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		owner, ok := ownerFromClaims(token)
		if !ok {
			http.Error(w, "token carries no dashboard role", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), UIDKey, token.UID)
		ctx = context.WithValue(ctx, OwnerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFromClaims(token *auth.Token) (models.OwnerContext, bool) {
	if admin, _ := token.Claims["admin"].(bool); admin {
		return models.OwnerContext{Scope: models.ScopeAdmin, OwnerID: token.UID}, true
	}
	if customerID, _ := token.Claims["customer_id"].(string); customerID != "" {
		return models.OwnerContext{Scope: models.ScopeCustomer, OwnerID: customerID}, true
	}
	return models.OwnerContext{}, false
}

// RequireAdmin gates a subtree to admin-scope callers. It assumes
// FirebaseAuth already ran.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Owner(r.Context()).Scope != models.ScopeAdmin {
			http.Error(w, "admin scope required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helper to extract UID
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

// Owner extracts the caller's scope and owner id.
func Owner(ctx context.Context) models.OwnerContext {
	owner, _ := ctx.Value(OwnerKey).(models.OwnerContext)
	return owner
}

// WithOwner injects an owner context directly. Test seam.
func WithOwner(ctx context.Context, owner models.OwnerContext) context.Context {
	return context.WithValue(ctx, OwnerKey, owner)
}

package http

import (
	"context"
	"net/http"
	"strconv"
)

// IdentityMiddleware reads the customer identity the out-of-scope auth layer
// forwards in trusted headers. X-Customer-ID carries the customer record ID;
// X-Role carries "admin" for back-office users.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if raw := r.Header.Get("X-Customer-ID"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				ctx = context.WithValue(ctx, "customer_id", id)
			}
		}
		if role := r.Header.Get("X-Role"); role != "" {
			ctx = context.WithValue(ctx, "role", role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards the back-office routes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getRole(r.Context()) != "admin" {
			respondError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getCustomerIDFromContext(ctx context.Context) int64 {
	if customerID, ok := ctx.Value("customer_id").(int64); ok {
		return customerID
	}
	return 0
}

func getRole(ctx context.Context) string {
	if role, ok := ctx.Value("role").(string); ok {
		return role
	}
	return ""
}

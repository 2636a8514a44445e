package httpx

import (
	"context"
	"net/http"
)

// EntitlementChecker reports whether an owner may use the paid features.
// Small interface to avoid coupling the middleware to the billing package.
type EntitlementChecker interface {
	IsEntitled(ctx context.Context, ownerID string) (bool, error)
}

// EntitlementMiddleware rejects requests from owners without an active
// subscription. It assumes AuthMiddleware already ran.
func EntitlementMiddleware(checker EntitlementChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := OwnerFrom(r)
			if owner == "" {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
				return
			}

			entitled, err := checker.IsEntitled(r.Context(), owner)
			if err != nil {
				JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Error checking subscription status", nil)
				return
			}
			if !entitled {
				JSONError(w, r, http.StatusForbidden, "SUBSCRIPTION_REQUIRED", "Active subscription required", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package httpx

import (
	"errors"
	"net/http"

	"littlelibrary/internal/platform/identity"

	"go.uber.org/zap"
)

// AuthMiddleware rejects requests without a verifiable bearer token and stores
// the caller's identity in the request context.
func AuthMiddleware(verifier identity.Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := identity.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
				return
			}

			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if !errors.Is(err, identity.ErrInvalidToken) {
					logger.Warn("token verification failed", zap.Error(err), zap.String("request_id", RequestIDFrom(r)))
				}
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
		})
	}
}

package auth

import (
	"errors"
	"net/http"

	"littlelibrary/internal/httpx"
	"littlelibrary/internal/platform/identity"

	"go.uber.org/zap"
)

const (
	bearerHint   = "Include 'Authorization: Bearer {your-token}' header"
	notAvailable = "N/A"
)

type HTTPHandler struct {
	verifier identity.Verifier
	logger   *zap.Logger
}

func NewHTTPHandler(verifier identity.Verifier, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{verifier: verifier, logger: logger}
}

// Verify handles GET /api/auth/verify
// @Summary Verify an ID token
// @Description Checks the bearer token and echoes the identity it carries
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/verify [get]
func (h *HTTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token, err := identity.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		h.unauthorized(w, r, "Missing or invalid Authorization header", "")
		return
	}

	id, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidToken) {
			h.logger.Warn("token verification failed", zap.Error(err), zap.String("request_id", httpx.RequestIDFrom(r)))
		}
		h.unauthorized(w, r, "Token verification failed", err.Error())
		return
	}

	httpx.JSONSuccess(w, http.StatusOK, map[string]any{
		"message": "Token verified successfully",
		"user": map[string]any{
			"uid":           id.UID,
			"email":         orNotAvailable(id.Email),
			"name":          orNotAvailable(id.Name),
			"emailVerified": id.EmailVerified,
		},
	})
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} httpx.ErrorResponse
// @Router /api/auth/me [get]
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFrom(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	httpx.JSONSuccess(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"uid":           id.UID,
			"email":         orNotAvailable(id.Email),
			"displayName":   orNotAvailable(id.Name),
			"emailVerified": id.EmailVerified,
		},
	})
}

func (h *HTTPHandler) unauthorized(w http.ResponseWriter, r *http.Request, message, detail string) {
	body := map[string]any{
		"success": false,
		"code":    "UNAUTHORIZED",
		"message": message,
		"hint":    bearerHint,
	}
	if detail != "" {
		body["error"] = detail
	}
	if reqID := httpx.RequestIDFrom(r); reqID != "" {
		body["requestId"] = reqID
	}
	httpx.JSON(w, http.StatusUnauthorized, body)
}

func orNotAvailable(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

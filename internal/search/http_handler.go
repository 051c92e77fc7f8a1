package search

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"littlelibrary/internal/httpx"
)

const defaultLimit = 10

type HTTPHandler struct {
	service  *Service
	maxLimit int
}

func NewHTTPHandler(service *Service, maxLimit int) *HTTPHandler {
	return &HTTPHandler{service: service, maxLimit: maxLimit}
}

// Search handles GET /search/books
// @Summary Search the public catalog
// @Tags search
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Maximum results" default(10)
// @Success 200 {array} Result
// @Failure 400 {object} httpx.ErrorResponse
// @Router /search/books [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter q is required", []httpx.ErrorDetail{
			{Field: "q", Message: "q is required"},
		})
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter limit must be a positive integer", []httpx.ErrorDetail{
				{Field: "limit", Message: "limit must be a positive integer"},
			})
			return
		}
		limit = n
	}
	if h.maxLimit > 0 && limit > h.maxLimit {
		limit = h.maxLimit
	}

	httpx.JSON(w, http.StatusOK, h.service.Search(r.Context(), query, limit))
}

// GetByISBN handles GET /search/books/isbn/{isbn}
// @Summary Look up a catalog entry by ISBN
// @Tags search
// @Produce json
// @Param isbn path string true "ISBN"
// @Success 200 {object} Result
// @Failure 404 {object} httpx.ErrorResponse
// @Router /search/books/isbn/{isbn} [get]
func (h *HTTPHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := strings.TrimSpace(r.PathValue("isbn"))
	if isbn == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "ISBN is required", nil)
		return
	}

	result, err := h.service.FindByISBN(r.Context(), isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No book found for ISBN "+isbn, nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// Health handles GET /search/health
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"service":   "OpenLibrary API",
		"timestamp": time.Now().UnixMilli(),
	}
	if err := h.service.Health(r.Context()); err != nil {
		body["status"] = "DOWN"
		body["message"] = "Service unavailable: " + err.Error()
		httpx.JSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "UP"
	body["message"] = "Service is operational"
	httpx.JSON(w, http.StatusOK, body)
}

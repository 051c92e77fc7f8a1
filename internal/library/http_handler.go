package library

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"littlelibrary/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /api/books
// @Summary List the caller's books
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param search query string false "Free-text search over title, author, ISBN and publisher"
// @Param status query string false "Reading status"
// @Param author query string false "Author substring"
// @Param location query string false "Location substring"
// @Param sortBy query string false "title, author or dateAdded"
// @Param order query string false "asc or desc"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} httpx.ErrorResponse
// @Router /api/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	q := Query{
		Search:   query.Get("search"),
		Status:   query.Get("status"),
		Author:   query.Get("author"),
		Location: query.Get("location"),
		SortBy:   query.Get("sortBy"),
		Order:    query.Get("order"),
	}

	books, err := h.service.List(r.Context(), userID, q)
	if err != nil {
		writeError(w, r, "retrieve", err)
		return
	}

	body := map[string]any{
		"count": len(books),
		"books": books,
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		body["searchQuery"] = s
	}
	httpx.JSONSuccess(w, http.StatusOK, body)
}

// Create handles POST /api/books
// @Summary Add a book to the caller's library
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param book body NewBook true "Book"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /api/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var nb NewBook
	if err := json.NewDecoder(r.Body).Decode(&nb); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(nb); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		return
	}

	b, err := h.service.Add(r.Context(), userID, nb)
	if err != nil {
		writeError(w, r, "add", err)
		return
	}
	httpx.JSONSuccess(w, http.StatusCreated, map[string]any{
		"message": "Book added successfully",
		"book":    b,
	})
}

// Get handles GET /api/books/{id}
// @Summary Get one of the caller's books
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param id path string true "Book id"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	b, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, "retrieve", err)
		return
	}
	httpx.JSONSuccess(w, http.StatusOK, map[string]any{"book": b})
}

// Update handles PUT /api/books/{id}
// @Summary Partially update one of the caller's books
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Book id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	patch, err := ParsePatch(raw)
	if err != nil {
		writeError(w, r, "update", err)
		return
	}

	b, err := h.service.Update(r.Context(), userID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, "update", err)
		return
	}
	httpx.JSONSuccess(w, http.StatusOK, map[string]any{
		"message": "Book updated successfully",
		"book":    b,
	})
}

// Delete handles DELETE /api/books/{id}
// @Summary Delete one of the caller's books
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param id path string true "Book id"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /api/books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, "delete", err)
		return
	}
	httpx.JSONSuccess(w, http.StatusOK, map[string]any{"message": "Book deleted successfully"})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid Authorization header", nil)
		return "", false
	}
	return userID, true
}

// writeError maps service errors to responses. op names the failed operation
// in internal error messages.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]httpx.ErrorDetail, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, httpx.ErrorDetail{Field: f.Field, Message: f.Message})
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Unauthorized access to book", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+op+" book: "+err.Error(), nil)
	}
}

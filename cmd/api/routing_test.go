package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"littlelibrary/internal/auth"
	"littlelibrary/internal/library"
	"littlelibrary/internal/platform/openlibrary"
	"littlelibrary/internal/search"
	"littlelibrary/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) Ping(context.Context) error { return errors.New("down") }

func newTestServer(t *testing.T) (http.Handler, *library.MemDBRepo) {
	t.Helper()

	ol := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{"title":"The Hobbit","author_name":["J.R.R. Tolkien"],"isbn":["9780547928227"],"first_publish_year":1937}]}`))
	}))
	t.Cleanup(ol.Close)

	repo, err := library.NewMemDBRepo()
	require.NoError(t, err)

	verifier := testutil.NewVerifier()
	searchService := search.NewService(openlibrary.NewClient(openlibrary.Config{BaseURL: ol.URL}), "https://covers.test", zap.NewNop())

	return newRouter(routes{
		library:  library.NewHTTPHandler(library.NewService(repo)),
		search:   search.NewHTTPHandler(searchService, 20),
		auth:     auth.NewHTTPHandler(verifier, zap.NewNop()),
		verifier: verifier,
		store:    repo,
		logger:   zap.NewNop(),
	}), repo
}

func serve(h http.Handler, r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func TestRouting_BookLifecycle(t *testing.T) {
	h, _ := newTestServer(t)
	alice := testutil.GenerateTestToken(testutil.TestUser)
	mallory := testutil.GenerateTestToken(testutil.OtherUser)

	created := serve(h, testutil.NewRequestWithAuth(http.MethodPost, "/api/books", map[string]any{
		"title":  "The Hobbit",
		"author": "J.R.R. Tolkien",
		"userId": testutil.OtherUser.UID,
	}, alice))
	require.Equal(t, http.StatusCreated, created.Code)
	book := created.Body["book"].(map[string]any)
	id := book["id"].(string)
	assert.Equal(t, testutil.TestUser.UID, book["userId"])
	assert.NotNil(t, book["dateAdded"])

	list := serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/api/books?search=tolkien", nil, alice))
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, float64(1), list.Body["count"])
	assert.Equal(t, "tolkien", list.Body["searchQuery"])

	empty := serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/api/books?search=mordor", nil, alice))
	assert.Equal(t, float64(0), empty.Body["count"])

	theirs := serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/api/books", nil, mallory))
	assert.Equal(t, float64(0), theirs.Body["count"])

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body any
		if method == http.MethodPut {
			body = map[string]any{"title": "stolen"}
		}
		resp := serve(h, testutil.NewRequestWithAuth(method, "/api/books/"+id, body, mallory))
		assert.Equal(t, http.StatusForbidden, resp.Code, method)
	}

	missing := serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/api/books/no-such-id", nil, mallory))
	assert.Equal(t, http.StatusNotFound, missing.Code)

	updated := serve(h, testutil.NewRequestWithAuth(http.MethodPut, "/api/books/"+id, map[string]any{
		"owner":         testutil.OtherUser.UID,
		"userId":        testutil.OtherUser.UID,
		"readingStatus": "read",
	}, alice))
	require.Equal(t, http.StatusOK, updated.Code)
	ub := updated.Body["book"].(map[string]any)
	assert.Equal(t, testutil.TestUser.UID, ub["userId"])
	assert.Equal(t, "read", ub["readingStatus"])

	deleted := serve(h, testutil.NewRequestWithAuth(http.MethodDelete, "/api/books/"+id, nil, alice))
	assert.Equal(t, http.StatusOK, deleted.Code)
	assert.Equal(t, "Book deleted successfully", deleted.Body["message"])

	gone := serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/api/books/"+id, nil, alice))
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestRouting_BooksRequireAuth(t *testing.T) {
	h, _ := newTestServer(t)

	resp := serve(h, testutil.NewRequest(http.MethodGet, "/api/books", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	expired := testutil.GenerateExpiredToken(testutil.TestUser)
	resp = serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/api/books", nil, expired))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRouting_Search(t *testing.T) {
	h, _ := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search/books?q=the+hobbit", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var results []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, "https://covers.test/b/isbn/9780547928227-M.jpg", results[0]["coverUrl"])
	assert.Equal(t, float64(1937), results[0]["publicationYear"])

	bad := serve(h, httptest.NewRequest(http.MethodGet, "/search/books?q=", nil))
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	isbn := serve(h, httptest.NewRequest(http.MethodGet, "/search/books/isbn/9780547928227", nil))
	assert.Equal(t, http.StatusOK, isbn.Code)
	assert.Equal(t, "The Hobbit", isbn.Body["title"])

	health := serve(h, httptest.NewRequest(http.MethodGet, "/search/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "UP", health.Body["status"])
}

func TestRouting_Auth(t *testing.T) {
	h, _ := newTestServer(t)
	token := testutil.GenerateTestToken(testutil.TestUser)

	verify := serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/api/auth/verify", nil, token))
	assert.Equal(t, http.StatusOK, verify.Code)

	noHeader := serve(h, testutil.NewRequest(http.MethodGet, "/api/auth/verify", nil))
	assert.Equal(t, http.StatusUnauthorized, noHeader.Code)
	assert.NotEmpty(t, noHeader.Body["hint"])

	me := serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/api/auth/me", nil, token))
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "Test User", me.Body["user"].(map[string]any)["displayName"])
}

func TestRouting_Probes(t *testing.T) {
	h, _ := newTestServer(t)

	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)

	notReady := newRouter(routes{
		library: library.NewHTTPHandler(nil), search: search.NewHTTPHandler(nil, 1),
		auth: auth.NewHTTPHandler(testutil.NewVerifier(), zap.NewNop()), verifier: testutil.NewVerifier(),
		store: failingStore{}, logger: zap.NewNop(),
	})
	assert.Equal(t, http.StatusServiceUnavailable, serve(notReady, httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)
}

func TestRouting_MethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/books", strings.NewReader("{}")))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

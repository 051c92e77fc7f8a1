package main

import (
	"context"
	"net/http"
	"time"

	"littlelibrary/internal/auth"
	"littlelibrary/internal/httpx"
	"littlelibrary/internal/library"
	"littlelibrary/internal/platform/identity"
	"littlelibrary/internal/search"

	"go.uber.org/zap"
)

// pinger reports store readiness.
type pinger interface {
	Ping(ctx context.Context) error
}

type routes struct {
	library  *library.HTTPHandler
	search   *search.HTTPHandler
	auth     *auth.HTTPHandler
	verifier identity.Verifier
	store    pinger
	logger   *zap.Logger
}

func newRouter(rt routes) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := rt.store.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	protected := httpx.AuthMiddleware(rt.verifier, rt.logger)

	router.Handle("GET /api/books", protected(http.HandlerFunc(rt.library.List)))
	router.Handle("POST /api/books", protected(http.HandlerFunc(rt.library.Create)))
	router.Handle("GET /api/books/{id}", protected(http.HandlerFunc(rt.library.Get)))
	router.Handle("PUT /api/books/{id}", protected(http.HandlerFunc(rt.library.Update)))
	router.Handle("DELETE /api/books/{id}", protected(http.HandlerFunc(rt.library.Delete)))

	router.HandleFunc("GET /search/books", rt.search.Search)
	router.HandleFunc("GET /search/books/isbn/{isbn}", rt.search.GetByISBN)
	router.HandleFunc("GET /search/health", rt.search.Health)

	router.HandleFunc("GET /api/auth/verify", rt.auth.Verify)
	router.Handle("GET /api/auth/me", protected(http.HandlerFunc(rt.auth.Me)))

	return router
}

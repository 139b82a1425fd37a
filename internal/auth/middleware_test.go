package auth_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/steffise60/Suivi-de-chantier/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newGatedRouter(key string) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireKey(auth.NewStaticKeyPolicy(key), logger))
		r.Get("/projects", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return router
}

func TestRequireKey(t *testing.T) {
	t.Run("MissingKey", func(t *testing.T) {
		router := newGatedRouter("secret")

		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WrongKey", func(t *testing.T) {
		router := newGatedRouter("secret")

		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.Header.Set(auth.HeaderName, "not-the-secret")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ValidKey", func(t *testing.T) {
		router := newGatedRouter("secret")

		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.Header.Set(auth.HeaderName, "secret")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestStaticKeyPolicy(t *testing.T) {
	t.Run("EmptyConfiguredKeyRejectsEverything", func(t *testing.T) {
		policy := auth.NewStaticKeyPolicy("")

		assert.False(t, policy.Authorize(""))
		assert.False(t, policy.Authorize("anything"))
	})

	t.Run("ExactMatchOnly", func(t *testing.T) {
		policy := auth.NewStaticKeyPolicy("secret")

		assert.True(t, policy.Authorize("secret"))
		assert.False(t, policy.Authorize("Secret"))
		assert.False(t, policy.Authorize("secret "))
	})
}

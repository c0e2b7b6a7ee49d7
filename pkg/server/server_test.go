package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookshelf-api/bookshelf/pkg/config"
	"github.com/bookshelf-api/bookshelf/pkg/database"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE books (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			Name TEXT NOT NULL,
			Author TEXT NOT NULL,
			Publisher TEXT NOT NULL
		)
	`)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestNew(t *testing.T) {
	cfg := config.NewForTest()
	cfg.ServerPort = 4321

	srv, err := New(cfg, newTestDB(t))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4321", srv.Addr)
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	srv, err := New(config.NewForTest(), newTestDB(t))
	require.NoError(t, err)

	t.Run("serves books", func(tt *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"Name":"Dune","Author":"Herbert","Publisher":"Ace"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		assert.Equal(tt, http.StatusCreated, rr.Code)
		assert.NotEmpty(tt, rr.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("unknown paths are a JSON 404", func(tt *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/authors", nil)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		assert.Equal(tt, http.StatusNotFound, rr.Code)
		assert.Contains(tt, rr.Body.String(), `"Page not found."`)
	})

	t.Run("health check", func(tt *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		assert.Equal(tt, http.StatusOK, rr.Code)
	})
}

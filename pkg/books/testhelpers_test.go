package books

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookshelf-api/bookshelf/pkg/binder"
	"github.com/bookshelf-api/bookshelf/pkg/config"
	"github.com/bookshelf-api/bookshelf/pkg/database"
	"github.com/bookshelf-api/bookshelf/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestDB(t *testing.T) *bun.DB {
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

func newTestEcho(t *testing.T, db *bun.DB) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	RegisterRoutesWithGroup(e.Group("/books"), db)

	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, path, payload string) *httptest.ResponseRecorder {
	t.Helper()
	return doRequestWithContentType(t, e, method, path, payload, echo.MIMEApplicationJSON)
}

func doRequestWithContentType(t *testing.T, e *echo.Echo, method, path, payload, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

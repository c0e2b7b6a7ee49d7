package books

import (
	"github.com/bookshelf-api/bookshelf/pkg/binder"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
	}

	g.Use(lenientBodies)

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/name/:name", h.searchByName)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.deleteBook)
}

// lenientBodies lets clients send extra keys in book payloads, since only the
// three book fields are read. A body that isn't JSON carries none of them, so
// it fails validation with a 400 instead of being rejected as a 415.
func lenientBodies(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(binder.DisallowUnknownFieldsKey, false)
		c.Set(binder.DisallowNonJSONBodyKey, false)
		return next(c)
	}
}

package books

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/bookshelf-api/bookshelf/pkg/errcodes"
	"github.com/bookshelf-api/bookshelf/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	bookService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := bookID(c)
	if !ok {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) searchByName(c echo.Context) error {
	ctx := c.Request().Context()
	name := pathParam(c, "name")

	books, err := h.bookService.SearchBooksByName(ctx, name)
	if err != nil {
		return errors.WithStack(err)
	}

	// An empty search result is a 404, unlike the list endpoint.
	if len(books) == 0 {
		return errcodes.NotFound("Book")
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book := &models.Book{
		Name:      params.Name,
		Author:    params.Author,
		Publisher: params.Publisher,
	}
	err := h.bookService.CreateBook(ctx, book)
	if err != nil {
		return errors.WithStack(err)
	}

	echologger.FromEchoContext(c).Info("book created", logger.Data{"book_id": book.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	// The body is validated before the id so that a bad payload is a 400
	// even for an id that doesn't exist.
	params := BookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	id, ok := bookID(c)
	if !ok {
		return errcodes.NotFound("Book")
	}

	book := &models.Book{
		ID:        id,
		Name:      params.Name,
		Author:    params.Author,
		Publisher: params.Publisher,
	}
	err := h.bookService.UpdateBook(ctx, book)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()

	// An id that isn't a number can't match a row, which is the same as
	// deleting a book that doesn't exist: still a success.
	if id, ok := bookID(c); ok {
		err := h.bookService.DeleteBook(ctx, id)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{
		"message": "Book deleted.",
	}))
}

// bookID parses the :id path param. ok is false when it isn't an integer, in
// which case no book can match it.
func bookID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// pathParam returns the decoded value of a path param. Echo routes on the raw
// path when the request has one, which leaves params percent-encoded.
func pathParam(c echo.Context, name string) string {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

package books

import (
	"context"
	"database/sql"

	"github.com/bookshelf-api/bookshelf/pkg/errcodes"
	"github.com/bookshelf-api/bookshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID int
}

type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

// ListBooks returns every book ordered by id. The result is never nil.
func (svc *Service) ListBooks(ctx context.Context) ([]*models.Book, error) {
	books := make([]*models.Book, 0)

	err := svc.db.
		NewSelect().
		Model(&books).
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Where("b.id = ?", opts.ID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// SearchBooksByName returns the books whose name contains name, ignoring case.
// LIKE wildcards inside name are not escaped.
func (svc *Service) SearchBooksByName(ctx context.Context, name string) ([]*models.Book, error) {
	books := make([]*models.Book, 0)

	err := svc.db.
		NewSelect().
		Model(&books).
		Where("LOWER(?) LIKE LOWER(?)", bun.Ident("b.Name"), "%"+name+"%").
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// CreateBook inserts the book. bun sets book.ID to the id the store
// generated, through RETURNING or the driver's last insert id.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	_, err := svc.db.
		NewInsert().
		Model(book).
		Exec(ctx)
	return errors.WithStack(err)
}

// UpdateBook overwrites the name, author and publisher of the book with the
// given ID. It returns a not found error when no row matched.
func (svc *Service) UpdateBook(ctx context.Context, book *models.Book) error {
	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column("Name", "Author", "Publisher").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return errcodes.NotFound("Book")
	}

	return nil
}

// DeleteBook removes the book with the given ID. Deleting an ID that doesn't
// exist is not an error.
func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

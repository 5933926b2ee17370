package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/storage"
)

// BookService manages book listings.
type BookService struct {
	books     storage.BookStore
	customers storage.CustomerStore
}

// NewBookService creates a BookService.
func NewBookService(books storage.BookStore, customers storage.CustomerStore) *BookService {
	return &BookService{books: books, customers: customers}
}

// Create lists a book for sale. The owning customer must exist.
func (s *BookService) Create(ctx context.Context, req api.CreateBookRequest) (*api.Book, error) {
	if _, err := s.customers.GetCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundCustomer(req.CustomerID)
		}
		return nil, fmt.Errorf("getting owner: %w", err)
	}

	b := &api.Book{
		Name:       req.Name,
		Price:      req.Price,
		Status:     api.BookActive,
		CustomerID: req.CustomerID,
	}
	if err := s.books.CreateBook(ctx, b); err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}
	return b, nil
}

// Get returns a book by id.
func (s *BookService) Get(ctx context.Context, id int64) (*api.Book, error) {
	b, err := s.books.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundBook(id)
		}
		return nil, fmt.Errorf("getting book: %w", err)
	}
	return b, nil
}

// List returns a page of all books.
func (s *BookService) List(ctx context.Context, page, size int) ([]*api.Book, int64, error) {
	books, total, err := s.books.ListBooks(ctx, storage.BookFilter{Page: page, Size: size})
	if err != nil {
		return nil, 0, fmt.Errorf("listing books: %w", err)
	}
	return books, total, nil
}

// ListActive returns a page of books still for sale.
func (s *BookService) ListActive(ctx context.Context, page, size int) ([]*api.Book, int64, error) {
	books, total, err := s.books.ListBooks(ctx, storage.BookFilter{
		Status: api.BookActive,
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing active books: %w", err)
	}
	return books, total, nil
}

// Update rewrites a book's name and price. A deleted book cannot be
// updated.
func (s *BookService) Update(ctx context.Context, id int64, req api.UpdateBookRequest) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if b.Status == api.BookDeleted {
		return api.NewBadRequestError(api.CodeBookNotUpdatable,
			fmt.Sprintf("Cannot update book with status [%s]", b.Status))
	}

	if req.Name != "" {
		b.Name = req.Name
	}
	if req.Price != 0 {
		b.Price = req.Price
	}

	if err := s.books.UpdateBook(ctx, b); err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	return nil
}

// Delete takes a book off the market. The record is kept for purchase
// history.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	b.Status = api.BookDeleted
	if err := s.books.UpdateBook(ctx, b); err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return nil
}

// SoldBy returns the customer's books that have been sold.
func (s *BookService) SoldBy(ctx context.Context, customerID int64) ([]*api.Book, error) {
	books, err := s.books.ListBooksByOwner(ctx, customerID, api.BookSold)
	if err != nil {
		return nil, fmt.Errorf("listing sold books: %w", err)
	}
	return books, nil
}

func notFoundBook(id int64) *api.APIError {
	return api.NewNotFoundError(api.CodeBookNotFound, fmt.Sprintf("Book [%d] not exists", id))
}

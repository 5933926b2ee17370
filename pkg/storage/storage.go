package storage

import (
	"context"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/auth"
)

// CustomerFilter narrows and pages customer listings.
type CustomerFilter struct {
	// Name filters by substring match when non-empty.
	Name string
	// Page is zero-based.
	Page int
	// Size is the page size; implementations apply a default when <= 0.
	Size int
}

// BookFilter narrows and pages book listings.
type BookFilter struct {
	// Status filters by book status when non-empty.
	Status api.BookStatus
	// Page is zero-based.
	Page int
	// Size is the page size; implementations apply a default when <= 0.
	Size int
}

// CustomerStore persists customer accounts.
type CustomerStore interface {
	// CreateCustomer inserts a customer and assigns its ID.
	// Returns ErrConflict when the email is already registered.
	CreateCustomer(ctx context.Context, c *api.Customer) error

	// GetCustomer returns a customer by id, or ErrNotFound.
	GetCustomer(ctx context.Context, id int64) (*api.Customer, error)

	// ListCustomers returns a page of customers and the total match count.
	ListCustomers(ctx context.Context, f CustomerFilter) ([]*api.Customer, int64, error)

	// UpdateCustomer rewrites the customer's mutable fields.
	// Returns ErrNotFound when the customer does not exist.
	UpdateCustomer(ctx context.Context, c *api.Customer) error

	// EmailExists reports whether the email is already registered.
	EmailExists(ctx context.Context, email string) (bool, error)
}

// BookStore persists book listings.
type BookStore interface {
	// CreateBook inserts a book and assigns its ID.
	CreateBook(ctx context.Context, b *api.Book) error

	// GetBook returns a book by id, or ErrNotFound.
	GetBook(ctx context.Context, id int64) (*api.Book, error)

	// ListBooks returns a page of books and the total match count.
	ListBooks(ctx context.Context, f BookFilter) ([]*api.Book, int64, error)

	// GetBooksByIDs returns the books whose ids are in ids; missing ids
	// are simply absent from the result.
	GetBooksByIDs(ctx context.Context, ids []int64) ([]*api.Book, error)

	// UpdateBook rewrites the book's mutable fields and status.
	// Returns ErrNotFound when the book does not exist.
	UpdateBook(ctx context.Context, b *api.Book) error

	// ListBooksByOwner returns all books owned by the customer, optionally
	// filtered by status ("" means any).
	ListBooksByOwner(ctx context.Context, ownerID int64, status api.BookStatus) ([]*api.Book, error)

	// SetBooksStatusByOwner moves every book of the owner to the status.
	SetBooksStatusByOwner(ctx context.Context, ownerID int64, status api.BookStatus) error
}

// PurchaseStore persists purchases.
type PurchaseStore interface {
	// CreatePurchase inserts a purchase and assigns its ID.
	CreatePurchase(ctx context.Context, p *api.Purchase) error

	// SetPurchaseNFe records the fiscal-note identifier of a purchase.
	SetPurchaseNFe(ctx context.Context, id int64, nfe string) error

	// BooksPurchasedBy returns the books the customer has bought.
	BooksPurchasedBy(ctx context.Context, customerID int64) ([]*api.Book, error)
}

// Store is the full persistence surface consumed by the services and the
// auth layer. Active customers double as the auth layer's principals.
type Store interface {
	CustomerStore
	BookStore
	PurchaseStore
	auth.PrincipalStore

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}

package api

import "time"

// CustomerStatus tracks whether a customer account is active.
type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
)

// BookStatus tracks the lifecycle of a book listing.
type BookStatus string

const (
	BookActive   BookStatus = "active"
	BookSold     BookStatus = "sold"
	BookDeleted  BookStatus = "deleted"
	BookCanceled BookStatus = "canceled"
)

// Customer is a marketplace account. The password hash and role set are
// internal: they never appear in API responses.
type Customer struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Status       CustomerStatus `json:"status"`
	PasswordHash string         `json:"-"`
	Roles        []string       `json:"-"`
}

// Book is a listing owned by a customer.
type Book struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Price      float64    `json:"price"`
	Status     BookStatus `json:"status"`
	CustomerID int64      `json:"customer_id"`
}

// Purchase records a customer buying a set of books. The NFe (fiscal note)
// identifier is assigned after the purchase is accepted.
type Purchase struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	BookIDs    []int64   `json:"book_ids"`
	Price      float64   `json:"price"`
	NFe        string    `json:"nfe,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoginRequest is the credential payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and its absolute expiry.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateCustomerRequest is the payload for customer self-registration.
type CreateCustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateCustomerRequest is the payload for updating a customer profile.
type UpdateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateBookRequest is the payload for listing a book for sale.
type CreateBookRequest struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	CustomerID int64   `json:"customer_id"`
}

// UpdateBookRequest is the payload for updating a book listing.
// Zero-valued fields are left unchanged.
type UpdateBookRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CreatePurchaseRequest is the payload for buying books.
type CreatePurchaseRequest struct {
	CustomerID int64   `json:"customer_id"`
	BookIDs    []int64 `json:"book_ids"`
}

// Page is a paginated listing response.
type Page[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
}

// NewPage assembles a Page from a slice of items and the paging inputs.
func NewPage[T any](items []T, page, size int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Page[T]{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
	}
}

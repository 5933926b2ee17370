// Package memory provides an in-memory implementation of storage.Store for
// testing and lightweight deployments. Data is lost when the process
// restarts.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/auth"
	"github.com/bookmart-dev/bookmart/pkg/storage"
)

// defaultPageSize is applied when a filter does not set a page size.
const defaultPageSize = 10

// Store is an in-memory storage.Store.
type Store struct {
	mu sync.RWMutex

	customers map[int64]*api.Customer
	books     map[int64]*api.Book
	purchases map[int64]*api.Purchase

	nextCustomerID int64
	nextBookID     int64
	nextPurchaseID int64
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		customers: make(map[int64]*api.Customer),
		books:     make(map[int64]*api.Book),
		purchases: make(map[int64]*api.Purchase),
	}
}

// CreateCustomer inserts a customer, assigning its ID.
func (s *Store) CreateCustomer(_ context.Context, c *api.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.customers {
		if existing.Email == c.Email {
			return storage.ErrConflict
		}
	}

	s.nextCustomerID++
	c.ID = s.nextCustomerID
	cp := *c
	s.customers[c.ID] = &cp
	return nil
}

// GetCustomer returns a customer by id.
func (s *Store) GetCustomer(_ context.Context, id int64) (*api.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ListCustomers returns a page of customers matching the filter, sorted by id.
func (s *Store) ListCustomers(_ context.Context, f storage.CustomerFilter) ([]*api.Customer, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*api.Customer
	for _, c := range s.customers {
		if f.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Name)) {
			continue
		}
		cp := *c
		matches = append(matches, &cp)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	total := int64(len(matches))
	return paginate(matches, f.Page, f.Size), total, nil
}

// UpdateCustomer rewrites a customer record.
func (s *Store) UpdateCustomer(_ context.Context, c *api.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[c.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *c
	s.customers[c.ID] = &cp
	return nil
}

// EmailExists reports whether the email is registered.
func (s *Store) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.customers {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// CreateBook inserts a book, assigning its ID.
func (s *Store) CreateBook(_ context.Context, b *api.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextBookID++
	b.ID = s.nextBookID
	bp := *b
	s.books[b.ID] = &bp
	return nil
}

// GetBook returns a book by id.
func (s *Store) GetBook(_ context.Context, id int64) (*api.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	bp := *b
	return &bp, nil
}

// ListBooks returns a page of books matching the filter, sorted by id.
func (s *Store) ListBooks(_ context.Context, f storage.BookFilter) ([]*api.Book, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*api.Book
	for _, b := range s.books {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		bp := *b
		matches = append(matches, &bp)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	total := int64(len(matches))
	return paginate(matches, f.Page, f.Size), total, nil
}

// GetBooksByIDs returns the books whose ids are present.
func (s *Store) GetBooksByIDs(_ context.Context, ids []int64) ([]*api.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]*api.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.books[id]; ok {
			bp := *b
			books = append(books, &bp)
		}
	}
	return books, nil
}

// UpdateBook rewrites a book record.
func (s *Store) UpdateBook(_ context.Context, b *api.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[b.ID]; !ok {
		return storage.ErrNotFound
	}
	bp := *b
	s.books[b.ID] = &bp
	return nil
}

// ListBooksByOwner returns the owner's books, optionally filtered by status.
func (s *Store) ListBooksByOwner(_ context.Context, ownerID int64, status api.BookStatus) ([]*api.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var books []*api.Book
	for _, b := range s.books {
		if b.CustomerID != ownerID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		bp := *b
		books = append(books, &bp)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

// SetBooksStatusByOwner moves every book of the owner to the status.
func (s *Store) SetBooksStatusByOwner(_ context.Context, ownerID int64, status api.BookStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.books {
		if b.CustomerID == ownerID {
			b.Status = status
		}
	}
	return nil
}

// CreatePurchase inserts a purchase, assigning its ID.
func (s *Store) CreatePurchase(_ context.Context, p *api.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPurchaseID++
	p.ID = s.nextPurchaseID
	pp := *p
	pp.BookIDs = append([]int64(nil), p.BookIDs...)
	s.purchases[p.ID] = &pp
	return nil
}

// SetPurchaseNFe records the fiscal-note identifier.
func (s *Store) SetPurchaseNFe(_ context.Context, id int64, nfe string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.purchases[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.NFe = nfe
	return nil
}

// BooksPurchasedBy returns the books the customer has bought.
func (s *Store) BooksPurchasedBy(_ context.Context, customerID int64) ([]*api.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var books []*api.Book
	for _, p := range s.purchases {
		if p.CustomerID != customerID {
			continue
		}
		for _, id := range p.BookIDs {
			if b, ok := s.books[id]; ok {
				bp := *b
				books = append(books, &bp)
			}
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

// PrincipalByID exposes an active customer as an authenticatable principal.
// Inactive accounts are reported as missing, so a deactivated customer's
// still-unexpired tokens stop working immediately.
func (s *Store) PrincipalByID(_ context.Context, id int64) (*auth.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok || c.Status != api.CustomerActive {
		return nil, auth.ErrNoSuchPrincipal
	}
	return principalOf(c), nil
}

// PrincipalByEmail exposes an active customer as an authenticatable principal.
func (s *Store) PrincipalByEmail(_ context.Context, email string) (*auth.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.customers {
		if c.Email == email {
			if c.Status != api.CustomerActive {
				return nil, auth.ErrNoSuchPrincipal
			}
			return principalOf(c), nil
		}
	}
	return nil, auth.ErrNoSuchPrincipal
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func principalOf(c *api.Customer) *auth.Principal {
	roles := make([]auth.Role, 0, len(c.Roles))
	for _, r := range c.Roles {
		roles = append(roles, auth.Role(r))
	}
	return &auth.Principal{
		ID:           c.ID,
		Roles:        roles,
		PasswordHash: c.PasswordHash,
	}
}

// paginate slices a sorted result set by zero-based page and size.
func paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		size = defaultPageSize
	}
	if page < 0 {
		page = 0
	}
	start := page * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling and embedded SQL migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/auth"
	"github.com/bookmart-dev/bookmart/pkg/storage"
)

// defaultPageSize is applied when a filter does not set a page size.
const defaultPageSize = 10

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateCustomer inserts a customer and its roles in one transaction.
func (s *Store) CreateCustomer(ctx context.Context, c *api.Customer) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO customers (name, email, status, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.Name, c.Email, string(c.Status), c.PasswordHash).Scan(&c.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting customer: %w", err)
	}

	for _, role := range c.Roles {
		if _, err := tx.Exec(ctx, `
			INSERT INTO customer_roles (customer_id, role) VALUES ($1, $2)
		`, c.ID, role); err != nil {
			return fmt.Errorf("inserting customer role: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetCustomer retrieves a customer with its roles.
func (s *Store) GetCustomer(ctx context.Context, id int64) (*api.Customer, error) {
	var c api.Customer
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, status, password_hash
		FROM customers WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &status, &c.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer: %w", err)
	}
	c.Status = api.CustomerStatus(status)

	c.Roles, err = s.customerRoles(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomers returns a page of customers and the total match count.
func (s *Store) ListCustomers(ctx context.Context, f storage.CustomerFilter) ([]*api.Customer, int64, error) {
	size := f.Size
	if size <= 0 {
		size = defaultPageSize
	}
	page := f.Page
	if page < 0 {
		page = 0
	}

	where := ""
	args := []any{}
	if f.Name != "" {
		where = "WHERE name ILIKE '%' || $1 || '%'"
		args = append(args, f.Name)
	}

	var total int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM customers "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting customers: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, email, status, password_hash
		FROM customers %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, size, page*size)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var customers []*api.Customer
	for rows.Next() {
		var c api.Customer
		var status string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &status, &c.PasswordHash); err != nil {
			return nil, 0, fmt.Errorf("scanning customer: %w", err)
		}
		c.Status = api.CustomerStatus(status)
		customers = append(customers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating customers: %w", err)
	}

	return customers, total, nil
}

// UpdateCustomer rewrites the customer's mutable fields.
func (s *Store) UpdateCustomer(ctx context.Context, c *api.Customer) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE customers SET name = $1, email = $2, status = $3 WHERE id = $4
	`, c.Name, c.Email, string(c.Status), c.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// EmailExists reports whether the email is already registered.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)", email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return exists, nil
}

// CreateBook inserts a book.
func (s *Store) CreateBook(ctx context.Context, b *api.Book) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO books (name, price, status, customer_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, b.Name, b.Price, string(b.Status), b.CustomerID).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("inserting book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by id.
func (s *Store) GetBook(ctx context.Context, id int64) (*api.Book, error) {
	var b api.Book
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, price, status, customer_id FROM books WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Price, &status, &b.CustomerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying book: %w", err)
	}
	b.Status = api.BookStatus(status)
	return &b, nil
}

// ListBooks returns a page of books and the total match count.
func (s *Store) ListBooks(ctx context.Context, f storage.BookFilter) ([]*api.Book, int64, error) {
	size := f.Size
	if size <= 0 {
		size = defaultPageSize
	}
	page := f.Page
	if page < 0 {
		page = 0
	}

	where := ""
	args := []any{}
	if f.Status != "" {
		where = "WHERE status = $1"
		args = append(args, string(f.Status))
	}

	var total int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM books "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting books: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, price, status, customer_id
		FROM books %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, size, page*size)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// GetBooksByIDs returns the books whose ids are in ids.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []int64) ([]*api.Book, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, price, status, customer_id FROM books
		WHERE id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

// UpdateBook rewrites the book's mutable fields and status.
func (s *Store) UpdateBook(ctx context.Context, b *api.Book) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE books SET name = $1, price = $2, status = $3 WHERE id = $4
	`, b.Name, b.Price, string(b.Status), b.ID)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListBooksByOwner returns the owner's books, optionally filtered by status.
func (s *Store) ListBooksByOwner(ctx context.Context, ownerID int64, status api.BookStatus) ([]*api.Book, error) {
	query := "SELECT id, name, price, status, customer_id FROM books WHERE customer_id = $1"
	args := []any{ownerID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, string(status))
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying books by owner: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

// SetBooksStatusByOwner moves every book of the owner to the status.
func (s *Store) SetBooksStatusByOwner(ctx context.Context, ownerID int64, status api.BookStatus) error {
	_, err := s.pool.Exec(ctx,
		"UPDATE books SET status = $1 WHERE customer_id = $2",
		string(status), ownerID,
	)
	if err != nil {
		return fmt.Errorf("updating books by owner: %w", err)
	}
	return nil
}

// CreatePurchase inserts a purchase and its book references in one
// transaction.
func (s *Store) CreatePurchase(ctx context.Context, p *api.Purchase) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO purchases (customer_id, price, nfe, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.CustomerID, p.Price, nullString(p.NFe), p.CreatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting purchase: %w", err)
	}

	for _, bookID := range p.BookIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_books (purchase_id, book_id) VALUES ($1, $2)
		`, p.ID, bookID); err != nil {
			return fmt.Errorf("inserting purchase book: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// SetPurchaseNFe records the fiscal-note identifier of a purchase.
func (s *Store) SetPurchaseNFe(ctx context.Context, id int64, nfe string) error {
	result, err := s.pool.Exec(ctx,
		"UPDATE purchases SET nfe = $1 WHERE id = $2", nfe, id,
	)
	if err != nil {
		return fmt.Errorf("updating purchase: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// BooksPurchasedBy returns the books the customer has bought.
func (s *Store) BooksPurchasedBy(ctx context.Context, customerID int64) ([]*api.Book, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.name, b.price, b.status, b.customer_id
		FROM books b
		JOIN purchase_books pb ON pb.book_id = b.id
		JOIN purchases p ON p.id = pb.purchase_id
		WHERE p.customer_id = $1
		ORDER BY b.id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("querying purchased books: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

// PrincipalByID exposes an active customer as an authenticatable principal.
func (s *Store) PrincipalByID(ctx context.Context, id int64) (*auth.Principal, error) {
	return s.principal(ctx, "id = $1", id)
}

// PrincipalByEmail exposes an active customer as an authenticatable principal.
func (s *Store) PrincipalByEmail(ctx context.Context, email string) (*auth.Principal, error) {
	return s.principal(ctx, "email = $1", email)
}

func (s *Store) principal(ctx context.Context, cond string, arg any) (*auth.Principal, error) {
	var p auth.Principal
	var status string
	err := s.pool.QueryRow(ctx,
		"SELECT id, status, password_hash FROM customers WHERE "+cond, arg,
	).Scan(&p.ID, &status, &p.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrNoSuchPrincipal
	}
	if err != nil {
		return nil, fmt.Errorf("querying principal: %w", err)
	}
	if api.CustomerStatus(status) != api.CustomerActive {
		return nil, auth.ErrNoSuchPrincipal
	}

	roles, err := s.customerRoles(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		p.Roles = append(p.Roles, auth.Role(r))
	}
	return &p, nil
}

// customerRoles loads the role tags of a customer.
func (s *Store) customerRoles(ctx context.Context, customerID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT role FROM customer_roles WHERE customer_id = $1 ORDER BY role", customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roles: %w", err)
	}
	return roles, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// scanBooks collects book rows into a slice.
func scanBooks(rows pgx.Rows) ([]*api.Book, error) {
	var books []*api.Book
	for rows.Next() {
		var b api.Book
		var status string
		if err := rows.Scan(&b.ID, &b.Name, &b.Price, &status, &b.CustomerID); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		b.Status = api.BookStatus(status)
		books = append(books, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

// nullString converts an empty string to nil for nullable TEXT columns.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

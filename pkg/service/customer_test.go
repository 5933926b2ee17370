package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/auth"
	"github.com/bookmart-dev/bookmart/pkg/storage/memory"
)

// plainHasher is a trivial PasswordHasher for service tests; the real
// bcrypt hasher is covered in its own package.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (plainHasher) Verify(plaintext, hash string) bool    { return hash == "hashed:"+plaintext }

func newCustomerService() (*CustomerService, *memory.Store) {
	store := memory.New()
	return NewCustomerService(store, store, plainHasher{}), store
}

func createCustomer(t *testing.T, svc *CustomerService, name, email string) *api.Customer {
	t.Helper()
	c, err := svc.Create(context.Background(), api.CreateCustomerRequest{
		Name:     name,
		Email:    email,
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("creating customer: %v", err)
	}
	return c
}

func TestCustomerService_Create(t *testing.T) {
	svc, store := newCustomerService()
	ctx := context.Background()

	c := createCustomer(t, svc, "Ana", "ana@example.com")

	if c.ID == 0 {
		t.Error("customer has no id")
	}
	if c.Status != api.CustomerActive {
		t.Errorf("status = %q, want active", c.Status)
	}
	if c.PasswordHash == "s3cret" {
		t.Error("password stored in plaintext")
	}

	// A fresh registration is a principal with the customer role.
	p, err := store.PrincipalByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("looking up principal: %v", err)
	}
	if !p.HasRole(auth.RoleCustomer) {
		t.Error("new customer is missing the customer role")
	}
	if p.HasRole(auth.RoleAdmin) {
		t.Error("new customer was granted the admin role")
	}
}

func TestCustomerService_CreateDuplicateEmail(t *testing.T) {
	svc, _ := newCustomerService()
	createCustomer(t, svc, "Ana", "ana@example.com")

	_, err := svc.Create(context.Background(), api.CreateCustomerRequest{
		Name:     "Other",
		Email:    "ana@example.com",
		Password: "pw",
	})

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error type = %q, want invalid_request", apiErr.Type)
	}
}

func TestCustomerService_GetNotFound(t *testing.T) {
	svc, _ := newCustomerService()

	_, err := svc.Get(context.Background(), 999)

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Code != api.CodeCustomerNotFound {
		t.Errorf("error code = %q, want %q", apiErr.Code, api.CodeCustomerNotFound)
	}
}

func TestCustomerService_ListFiltersByName(t *testing.T) {
	svc, _ := newCustomerService()
	ctx := context.Background()

	createCustomer(t, svc, "Ana Silva", "ana@example.com")
	createCustomer(t, svc, "Bruno", "bruno@example.com")
	createCustomer(t, svc, "Mariana", "mariana@example.com")

	customers, total, err := svc.List(ctx, "ana", 0, 10)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(customers) != 2 {
		t.Errorf("page size = %d, want 2", len(customers))
	}
}

func TestCustomerService_Update(t *testing.T) {
	svc, _ := newCustomerService()
	ctx := context.Background()

	c := createCustomer(t, svc, "Ana", "ana@example.com")

	err := svc.Update(ctx, c.ID, api.UpdateCustomerRequest{
		Name:  "Ana Silva",
		Email: "ana.silva@example.com",
	})
	if err != nil {
		t.Fatalf("updating: %v", err)
	}

	got, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("getting: %v", err)
	}
	if got.Name != "Ana Silva" || got.Email != "ana.silva@example.com" {
		t.Errorf("customer = %+v, update not applied", got)
	}
}

// Delete deactivates the account instead of removing it, takes the
// customer's listings off the market, and ends the account's life as a
// principal.
func TestCustomerService_Delete(t *testing.T) {
	svc, store := newCustomerService()
	books := NewBookService(store, store)
	ctx := context.Background()

	c := createCustomer(t, svc, "Ana", "ana@example.com")
	b, err := books.Create(ctx, api.CreateBookRequest{Name: "Dune", Price: 30, CustomerID: c.ID})
	if err != nil {
		t.Fatalf("creating book: %v", err)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("deleting: %v", err)
	}

	got, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("getting: %v", err)
	}
	if got.Status != api.CustomerInactive {
		t.Errorf("status = %q, want inactive", got.Status)
	}

	gotBook, err := books.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("getting book: %v", err)
	}
	if gotBook.Status != api.BookDeleted {
		t.Errorf("book status = %q, want deleted", gotBook.Status)
	}

	if _, err := store.PrincipalByID(ctx, c.ID); !errors.Is(err, auth.ErrNoSuchPrincipal) {
		t.Errorf("principal lookup = %v, want ErrNoSuchPrincipal", err)
	}
}

func TestCustomerService_EmailAvailable(t *testing.T) {
	svc, _ := newCustomerService()
	ctx := context.Background()

	available, err := svc.EmailAvailable(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("checking: %v", err)
	}
	if !available {
		t.Error("unused email reported unavailable")
	}

	createCustomer(t, svc, "Ana", "ana@example.com")

	available, err = svc.EmailAvailable(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("checking: %v", err)
	}
	if available {
		t.Error("registered email reported available")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/auth"
	"github.com/bookmart-dev/bookmart/pkg/storage"
)

// CustomerService manages customer accounts.
type CustomerService struct {
	customers storage.CustomerStore
	books     storage.BookStore
	hasher    auth.PasswordHasher
}

// NewCustomerService creates a CustomerService.
func NewCustomerService(customers storage.CustomerStore, books storage.BookStore, hasher auth.PasswordHasher) *CustomerService {
	return &CustomerService{customers: customers, books: books, hasher: hasher}
}

// Create registers a new customer. The password is hashed before it ever
// reaches storage, the account starts active, and every new customer gets
// the customer role.
func (s *CustomerService) Create(ctx context.Context, req api.CreateCustomerRequest) (*api.Customer, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	c := &api.Customer{
		Name:         req.Name,
		Email:        req.Email,
		Status:       api.CustomerActive,
		PasswordHash: hash,
		Roles:        []string{string(auth.RoleCustomer)},
	}

	if err := s.customers.CreateCustomer(ctx, c); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewBadRequestError(api.CodeInvalidRequest, "email already in use")
		}
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	return c, nil
}

// Get returns a customer by id.
func (s *CustomerService) Get(ctx context.Context, id int64) (*api.Customer, error) {
	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundCustomer(id)
		}
		return nil, fmt.Errorf("getting customer: %w", err)
	}
	return c, nil
}

// List returns a page of customers, optionally filtered by name substring.
func (s *CustomerService) List(ctx context.Context, name string, page, size int) ([]*api.Customer, int64, error) {
	customers, total, err := s.customers.ListCustomers(ctx, storage.CustomerFilter{
		Name: name,
		Page: page,
		Size: size,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing customers: %w", err)
	}
	return customers, total, nil
}

// Update rewrites the customer's profile fields.
func (s *CustomerService) Update(ctx context.Context, id int64, req api.UpdateCustomerRequest) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	c.Name = req.Name
	c.Email = req.Email

	if err := s.customers.UpdateCustomer(ctx, c); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFoundCustomer(id)
		}
		if errors.Is(err, storage.ErrConflict) {
			return api.NewBadRequestError(api.CodeInvalidRequest, "email already in use")
		}
		return fmt.Errorf("updating customer: %w", err)
	}
	return nil
}

// Delete deactivates the account and takes all of the customer's book
// listings off the market. The record is kept: purchases reference it.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.books.SetBooksStatusByOwner(ctx, id, api.BookDeleted); err != nil {
		return fmt.Errorf("deactivating books: %w", err)
	}

	c.Status = api.CustomerInactive
	if err := s.customers.UpdateCustomer(ctx, c); err != nil {
		return fmt.Errorf("deactivating customer: %w", err)
	}
	return nil
}

// EmailAvailable reports whether the email can still be registered.
func (s *CustomerService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	exists, err := s.customers.EmailExists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return !exists, nil
}

func notFoundCustomer(id int64) *api.APIError {
	return api.NewNotFoundError(api.CodeCustomerNotFound, fmt.Sprintf("Customer [%d] not exists", id))
}

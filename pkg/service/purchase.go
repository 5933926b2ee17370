package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/observability"
	"github.com/bookmart-dev/bookmart/pkg/storage"
)

// NFeGenerator produces fiscal-note identifiers for accepted purchases.
type NFeGenerator func() string

// PurchaseService manages purchases.
type PurchaseService struct {
	purchases storage.PurchaseStore
	books     storage.BookStore
	customers storage.CustomerStore
	nfe       NFeGenerator
}

// NewPurchaseService creates a PurchaseService. A nil generator selects the
// default random identifier.
func NewPurchaseService(purchases storage.PurchaseStore, books storage.BookStore, customers storage.CustomerStore, nfe NFeGenerator) *PurchaseService {
	if nfe == nil {
		nfe = randomNFe
	}
	return &PurchaseService{purchases: purchases, books: books, customers: customers, nfe: nfe}
}

// Create records a purchase: every requested book must exist and be
// active, the total price is the sum of the book prices, and the books
// move to sold. The fiscal note is assigned once the purchase is accepted.
func (s *PurchaseService) Create(ctx context.Context, req api.CreatePurchaseRequest) (*api.Purchase, error) {
	if _, err := s.customers.GetCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundCustomer(req.CustomerID)
		}
		return nil, fmt.Errorf("getting buyer: %w", err)
	}

	books, err := s.books.GetBooksByIDs(ctx, req.BookIDs)
	if err != nil {
		return nil, fmt.Errorf("getting books: %w", err)
	}
	if len(req.BookIDs) == 0 || len(books) != len(req.BookIDs) {
		return nil, api.NewNotFoundError(api.CodeBooksNotFound, "One or more of the books not exists")
	}

	var price float64
	for _, b := range books {
		if b.Status != api.BookActive {
			return nil, api.NewBadRequestError(api.CodeBookNotForSale, "Cannot buy book with inactive status")
		}
		price += b.Price
	}

	p := &api.Purchase{
		CustomerID: req.CustomerID,
		BookIDs:    req.BookIDs,
		Price:      price,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.purchases.CreatePurchase(ctx, p); err != nil {
		return nil, fmt.Errorf("creating purchase: %w", err)
	}

	for _, b := range books {
		b.Status = api.BookSold
		if err := s.books.UpdateBook(ctx, b); err != nil {
			return nil, fmt.Errorf("marking book sold: %w", err)
		}
	}

	p.NFe = s.nfe()
	if err := s.purchases.SetPurchaseNFe(ctx, p.ID, p.NFe); err != nil {
		return nil, fmt.Errorf("assigning nfe: %w", err)
	}

	observability.PurchasesTotal.Inc()
	return p, nil
}

// PurchasedBy returns the books the customer has bought.
func (s *PurchaseService) PurchasedBy(ctx context.Context, customerID int64) ([]*api.Book, error) {
	books, err := s.purchases.BooksPurchasedBy(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing purchased books: %w", err)
	}
	return books, nil
}

// randomNFe generates a fiscal-note identifier as a hex string.
func randomNFe() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

package http

import (
	"net/http"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/transport"
)

func (a *API) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.CustomerID == 0 || len(req.BookIDs) == 0 {
		transport.WriteAPIError(w, api.NewInvalidRequestError("customer_id and book_ids are required"))
		return
	}

	p, err := a.purchases.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handlePurchasedBooks lists the books the customer has bought.
func (a *API) handlePurchasedBooks(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	books, err := a.purchases.PurchasedBy(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if books == nil {
		books = []*api.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

// handleSoldBooks lists the customer's books that have been sold.
func (a *API) handleSoldBooks(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	books, err := a.books.SoldBy(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if books == nil {
		books = []*api.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

package http

import (
	"net/http"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/transport"
)

func (a *API) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req api.CreateBookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" || req.Price <= 0 || req.CustomerID == 0 {
		transport.WriteAPIError(w, api.NewInvalidRequestError("name, price and customer_id are required"))
		return
	}

	b, err := a.books.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := a.books.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) handleListBooks(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	books, total, err := a.books.List(r.Context(), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewPage(books, page, size, total))
}

func (a *API) handleListActiveBooks(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	books, total, err := a.books.ListActive(r.Context(), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewPage(books, page, size, total))
}

func (a *API) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req api.UpdateBookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("invalid request body"))
		return
	}

	if err := a.books.Update(r.Context(), id, req); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.books.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

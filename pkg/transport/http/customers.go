package http

import (
	"net/http"

	"github.com/bookmart-dev/bookmart/pkg/api"
	"github.com/bookmart-dev/bookmart/pkg/transport"
)

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req api.CreateCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("name, email and password are required"))
		return
	}

	available, err := a.customers.EmailAvailable(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !available {
		transport.WriteAPIError(w, api.NewInvalidRequestError("email already in use"))
		return
	}

	c, err := a.customers.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := a.customers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	name := r.URL.Query().Get("name")

	customers, total, err := a.customers.List(r.Context(), name, page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewPage(customers, page, size, total))
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req api.UpdateCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" || req.Email == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("name and email are required"))
		return
	}

	if err := a.customers.Update(r.Context(), id, req); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.customers.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

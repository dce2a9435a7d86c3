package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/NordicManX/nordic-cred-sub000/internal/app"
	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string          `json:"name"`
		CPF         string          `json:"cpf"`
		Phone       string          `json:"phone"`
		Email       string          `json:"email"`
		Address     string          `json:"address"`
		CreditLimit decimal.Decimal `json:"credit_limit"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.svc.CreateCustomer(r.Context(), app.CreateCustomerRequest{
		Name:        req.Name,
		CPF:         req.CPF,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		CreditLimit: req.CreditLimit,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, customer)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid customer id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	customer, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid customer id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var req struct {
		Name          *string          `json:"name"`
		CPF           *string          `json:"cpf"`
		Phone         *string          `json:"phone"`
		Email         *string          `json:"email"`
		Address       *string          `json:"address"`
		CreditLimit   *decimal.Decimal `json:"credit_limit"`
		PointsBalance *int             `json:"points_balance"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.svc.UpdateCustomer(r.Context(), id, core.CustomerPatch{
		Name:          req.Name,
		CPF:           req.CPF,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		CreditLimit:   req.CreditLimit,
		PointsBalance: req.PointsBalance,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, customer)
}

func (h *Handler) setCustomerStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid customer id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.svc.SetCustomerStatus(r.Context(), id, req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, customer)
}

func (h *Handler) resetPoints(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ResetAllPoints(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]int{"customers_affected": result.CustomersAffected})
}

func (h *Handler) listCustomerInstallments(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid customer id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.ListCustomerInstallments(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Installments)
}

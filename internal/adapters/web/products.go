package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/NordicManX/nordic-cred-sub000/internal/app"
	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	result, err := h.svc.ListProducts(r.Context(), activeOnly)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code          string          `json:"code"`
		Name          string          `json:"name"`
		Description   string          `json:"description"`
		UnitPrice     decimal.Decimal `json:"unit_price"`
		StockQuantity int             `json:"stock_quantity"`
		NCM           string          `json:"ncm"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), app.CreateProductRequest{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		UnitPrice:     req.UnitPrice,
		StockQuantity: req.StockQuantity,
		NCM:           req.NCM,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, product)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var req struct {
		Name          *string          `json:"name"`
		Description   *string          `json:"description"`
		UnitPrice     *decimal.Decimal `json:"unit_price"`
		StockQuantity *int             `json:"stock_quantity"`
		NCM           *string          `json:"ncm"`
		IsActive      *bool            `json:"is_active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.svc.UpdateProduct(r.Context(), id, core.ProductPatch{
		Name:          req.Name,
		Description:   req.Description,
		UnitPrice:     req.UnitPrice,
		StockQuantity: req.StockQuantity,
		NCM:           req.NCM,
		IsActive:      req.IsActive,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, product)
}

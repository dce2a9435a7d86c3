package web

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NordicManX/nordic-cred-sub000/internal/app"
	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// planLine is the wire form of an installment draft.
type planLine struct {
	Seq     int             `json:"seq"`
	DueDate string          `json:"due_date"` // YYYY-MM-DD
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
}

type checkoutItem struct {
	ProductID *int            `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// checkout handles POST /api/checkout — the finalize-sale operation.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID       *int            `json:"customer_id"`
		PaymentMethod    string          `json:"payment_method"`
		Items            []checkoutItem  `json:"items"`
		PointsToRedeem   int             `json:"points_to_redeem"`
		DownPayment      decimal.Decimal `json:"down_payment"`
		Installments     int             `json:"installments"`
		FirstDueDate     string          `json:"first_due_date"`
		EditedPlan       []planLine      `json:"edited_plan"`
		OverridePassword string          `json:"override_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var firstDue time.Time
	if req.FirstDueDate != "" {
		var ok bool
		if firstDue, ok = parseDate(req.FirstDueDate); !ok {
			writeError(w, r, "invalid first_due_date", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	editedPlan := make([]core.InstallmentDraft, 0, len(req.EditedPlan))
	for _, line := range req.EditedPlan {
		due, ok := parseDate(line.DueDate)
		if !ok {
			writeError(w, r, "invalid due_date in edited plan", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		editedPlan = append(editedPlan, core.InstallmentDraft{
			Seq:     line.Seq,
			DueDate: due,
			Amount:  line.Amount,
			Paid:    line.Paid,
		})
	}

	items := make([]app.CartLineInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = app.CartLineInput{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		}
	}

	claims := authFromContext(r.Context())
	appReq := app.CheckoutRequest{
		CustomerID:       req.CustomerID,
		PaymentMethod:    req.PaymentMethod,
		Items:            items,
		PointsToRedeem:   req.PointsToRedeem,
		DownPayment:      req.DownPayment,
		Installments:     req.Installments,
		FirstDueDate:     firstDue,
		EditedPlan:       editedPlan,
		OverridePassword: req.OverridePassword,
	}
	if claims != nil {
		appReq.CreatedBy = &claims.UserID
		// Managers and admins authorize over-limit sales with their own
		// identity; no shared password needed.
		appReq.OverrideApproved = claims.Role == core.RoleAdmin || claims.Role == core.RoleManager
	}

	result, err := h.svc.Checkout(r.Context(), appReq)
	if err != nil {
		code, _ := domainErrorCode(err)
		checkoutRejections.WithLabelValues(code).Inc()
		writeDomainError(w, r, err)
		return
	}

	salesFinalized.WithLabelValues(result.Sale.PaymentMethod).Inc()
	writeJSONStatus(w, http.StatusCreated, result.Sale)
}

// previewPlan handles POST /api/checkout/preview — prices a cart and
// returns the installment drafts without persisting anything.
func (h *Handler) previewPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID     *int            `json:"customer_id"`
		Subtotal       decimal.Decimal `json:"subtotal"`
		PointsToRedeem int             `json:"points_to_redeem"`
		DownPayment    decimal.Decimal `json:"down_payment"`
		Installments   int             `json:"installments"`
		FirstDueDate   string          `json:"first_due_date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var firstDue time.Time
	if req.FirstDueDate != "" {
		var ok bool
		if firstDue, ok = parseDate(req.FirstDueDate); !ok {
			writeError(w, r, "invalid first_due_date", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.PreviewPlan(r.Context(), app.PreviewPlanRequest{
		CustomerID:     req.CustomerID,
		Subtotal:       req.Subtotal,
		PointsToRedeem: req.PointsToRedeem,
		DownPayment:    req.DownPayment,
		Installments:   req.Installments,
		FirstDueDate:   firstDue,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	// Default window: today.
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from

	if s := r.URL.Query().Get("from"); s != "" {
		var ok bool
		if from, ok = parseDate(s); !ok {
			writeError(w, r, "invalid from date", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		var ok bool
		if to, ok = parseDate(s); !ok {
			writeError(w, r, "invalid to date", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.ListSales(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Sales)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid sale id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetSale(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Sale)
}

func (h *Handler) receiveInstallment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid installment id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	inst, err := h.svc.ReceiveInstallment(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, inst)
}

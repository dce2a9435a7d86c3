package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NordicManX/nordic-cred-sub000/internal/app"
)

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, r, "invalid year", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		year = y
	}
	if s := r.URL.Query().Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			writeError(w, r, "invalid month", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		month = time.Month(m)
	}

	result, err := h.svc.ListExpenses(r.Context(), year, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Expenses)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		ExpenseDate string          `json:"expense_date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	date, ok := parseDate(req.ExpenseDate)
	if !ok {
		writeError(w, r, "invalid expense_date", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	expense, err := h.svc.CreateExpense(r.Context(), app.CreateExpenseRequest{
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		ExpenseDate: date,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, expense)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid expense id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteExpense(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

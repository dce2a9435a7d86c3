package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		var ok bool
		if date, ok = parseDate(s); !ok {
			writeError(w, r, "invalid date", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	summary, err := h.svc.GetDailySummary(r.Context(), date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.svc.GetMonthlySummary(r.Context(), year, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) overdueReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOverdueInstallments(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Installments)
}

func (h *Handler) receivablesReport(w http.ResponseWriter, r *http.Request) {
	receivables, err := h.svc.GetReceivables(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, receivables)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.GetSettings(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, settings)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DailyGoal         *decimal.Decimal `json:"daily_goal"`
		CommissionRate    *decimal.Decimal `json:"commission_rate"`
		PointsPerCurrency *decimal.Decimal `json:"points_per_currency"`
		PointValue        *decimal.Decimal `json:"point_value"`
		ManagerPassword   *string          `json:"manager_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.svc.UpdateSettings(r.Context(), core.SettingsPatch{
		DailyGoal:         req.DailyGoal,
		CommissionRate:    req.CommissionRate,
		PointsPerCurrency: req.PointsPerCurrency,
		PointValue:        req.PointValue,
		ManagerPassword:   req.ManagerPassword,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, settings)
}

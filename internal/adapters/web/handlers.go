package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/NordicManX/nordic-cred-sub000/internal/app"
	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

// maxBodyBytes caps JSON request bodies. The largest legitimate payload is
// a checkout with an edited 12-installment plan, well under this.
const maxBodyBytes = 1 << 20

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(maxBodyBytes))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Method(http.MethodGet, "/metrics", metricsHandler())
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Authenticated API ─────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/auth/me", h.me)

		r.Get("/api/customers", h.listCustomers)
		r.Post("/api/customers", h.createCustomer)
		r.Get("/api/customers/{id}", h.getCustomer)
		r.Put("/api/customers/{id}", h.updateCustomer)
		r.Put("/api/customers/{id}/status", h.setCustomerStatus)
		r.Get("/api/customers/{id}/installments", h.listCustomerInstallments)

		r.Get("/api/products", h.listProducts)
		r.Post("/api/products", h.createProduct)
		r.Get("/api/products/{id}", h.getProduct)
		r.Put("/api/products/{id}", h.updateProduct)

		r.Post("/api/checkout", h.checkout)
		r.Post("/api/checkout/preview", h.previewPlan)
		r.Get("/api/sales", h.listSales)
		r.Get("/api/sales/{id}", h.getSale)
		r.Post("/api/installments/{id}/receive", h.receiveInstallment)

		r.Get("/api/expenses", h.listExpenses)
		r.Post("/api/expenses", h.createExpense)
		r.Delete("/api/expenses/{id}", h.deleteExpense)

		r.Get("/api/settings", h.getSettings)

		r.Get("/api/reports/daily", h.dailyReport)
		r.Get("/api/reports/monthly", h.monthlyReport)
		r.Get("/api/reports/overdue", h.overdueReport)
		r.Get("/api/reports/receivables", h.receivablesReport)

		// Admin-only mutations.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole(core.RoleAdmin))
			r.Put("/api/settings", h.updateSettings)
			r.Post("/api/customers/points/reset", h.resetPoints)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// urlParamInt parses a chi URL parameter as a positive integer.
func urlParamInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

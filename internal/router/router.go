// Package router wires handlers and middleware into the HTTP surface.
package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/finaurial/finance-tracker/internal/handler"
	"github.com/finaurial/finance-tracker/internal/middleware"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const timeoutBody = `{"success":false,"error":"Request timed out"}`

// Options tune the outer layers of the router
type Options struct {
	CORSOrigin     string
	RequestTimeout time.Duration
}

// New builds the complete HTTP handler: routes behind timeout, CORS,
// panic recovery and request logging.
func New(h *handler.Handler, authn middleware.Authenticator, log *logrus.Logger, opts Options) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteFailure(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/contact", h.SubmitContact).Methods(http.MethodPost)

	// Protected routes
	private := api.NewRoute().Subrouter()
	private.Use(middleware.AuthMiddleware(authn, log))

	private.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	private.HandleFunc("/auth/savings", h.Savings).Methods(http.MethodGet)
	private.HandleFunc("/auth/update-savings", h.UpdateSavings).Methods(http.MethodPut)

	private.HandleFunc("/transactions/reports", h.Reports).Methods(http.MethodGet)
	private.HandleFunc("/transactions/summary", h.Summary).Methods(http.MethodGet)
	private.HandleFunc("/transactions/monthly-summary", h.MonthlySummary).Methods(http.MethodGet)
	private.HandleFunc("/transactions/spending-breakdown", h.SpendingBreakdown).Methods(http.MethodGet)
	private.HandleFunc("/transactions/category-spending", h.CategorySpending).Methods(http.MethodGet)
	private.HandleFunc("/transactions/export", h.ExportTransactions).Methods(http.MethodGet)
	private.HandleFunc("/transactions/seed-sample", h.SeedSample).Methods(http.MethodPost)
	private.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	private.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	private.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods(http.MethodPut)
	private.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods(http.MethodDelete)

	private.HandleFunc("/dashboard/summary", h.DashboardSummary).Methods(http.MethodGet)
	private.HandleFunc("/dashboard/cumulative-savings", h.CumulativeSavings).Methods(http.MethodGet)
	private.HandleFunc("/dashboard/monthly-category-expenses", h.MonthlyCategoryExpenses).Methods(http.MethodGet)

	private.HandleFunc("/budgets", h.ListBudgets).Methods(http.MethodGet)
	private.HandleFunc("/budgets", h.CreateBudget).Methods(http.MethodPost)
	private.HandleFunc("/budgets/{id}", h.UpdateBudget).Methods(http.MethodPut)
	private.HandleFunc("/budgets/{id}", h.DeleteBudget).Methods(http.MethodDelete)

	private.HandleFunc("/goals", h.ListGoals).Methods(http.MethodGet)
	private.HandleFunc("/goals", h.CreateGoal).Methods(http.MethodPost)
	private.HandleFunc("/goals/{id}", h.UpdateGoal).Methods(http.MethodPut)
	private.HandleFunc("/goals/{id}", h.DeleteGoal).Methods(http.MethodDelete)
	private.HandleFunc("/goals/{id}/contribute", h.Contribute).Methods(http.MethodPost, http.MethodPut)

	private.HandleFunc("/savings/summary", h.SavingsSummary).Methods(http.MethodGet)
	private.HandleFunc("/savings", h.ListSavings).Methods(http.MethodGet)
	private.HandleFunc("/savings", h.CreateSaving).Methods(http.MethodPost)
	private.HandleFunc("/savings/{id}", h.UpdateSaving).Methods(http.MethodPut)
	private.HandleFunc("/savings/{id}", h.DeleteSaving).Methods(http.MethodDelete)

	private.HandleFunc("/currency/rates", h.CurrencyRates).Methods(http.MethodGet)

	// Admin routes. Every signed-in user may read the feature flags.
	admin := middleware.RequireRole(models.RoleAdmin)
	private.HandleFunc("/admin/features", h.ListFeatures).Methods(http.MethodGet)
	private.Handle("/admin/features", admin(http.HandlerFunc(h.CreateFeature))).Methods(http.MethodPost)
	private.Handle("/admin/features/{id}", admin(http.HandlerFunc(h.UpdateFeature))).Methods(http.MethodPut)
	private.Handle("/admin/features/{id}", admin(http.HandlerFunc(h.DeleteFeature))).Methods(http.MethodDelete)
	private.Handle("/admin/users", admin(http.HandlerFunc(h.ListUsers))).Methods(http.MethodGet)
	private.Handle("/admin/users/{id}/suspend", admin(http.HandlerFunc(h.ToggleSuspension))).Methods(http.MethodPut)
	private.Handle("/admin/contacts", admin(http.HandlerFunc(h.ListContacts))).Methods(http.MethodGet)

	var out http.Handler = r
	if opts.RequestTimeout > 0 {
		out = http.TimeoutHandler(out, opts.RequestTimeout, timeoutBody)
	}
	out = cors.Handler(corsOptions(opts.CORSOrigin))(out)
	out = middleware.Recoverer(log)(out)
	return middleware.RequestLogger(log)(out)
}

func corsOptions(origin string) cors.Options {
	origins := []string{"*"}
	if origin != "" && origin != "*" {
		origins = strings.Split(origin, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.TokenHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:         300,
	}
}

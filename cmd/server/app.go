package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jdvries/transportdesk/internal/calendar"
	"github.com/jdvries/transportdesk/internal/handlers"
	"github.com/jdvries/transportdesk/internal/httpx"
	"github.com/jdvries/transportdesk/internal/logger"
	"github.com/jdvries/transportdesk/internal/services"
)

// App is the main application handler that sets up all routes.
// Authentication/session handling is provided by the surrounding platform;
// its middleware would wrap the mux inside ServeHTTP.
type App struct {
	mux *http.ServeMux
	db  *gorm.DB
	log zerolog.Logger
}

// NewApp creates the application with all routes configured.
func NewApp(db *gorm.DB, invoiceSvc *services.InvoiceService, suggestSvc *services.RateSuggestionService, holidays *calendar.Provider) *App {
	app := &App{
		mux: http.NewServeMux(),
		db:  db,
		log: logger.WithComponent("http"),
	}

	wh := handlers.NewWeeklyLogHandler(db, holidays)
	ch := handlers.NewCustomerHandler(db)
	rh := handlers.NewWeeklyRateHandler(db, suggestSvc)
	ih := handlers.NewInvoiceHandler(db, invoiceSvc)

	app.mux.HandleFunc("GET /health", app.health)
	app.mux.HandleFunc("GET /healthz", app.healthz)

	app.mux.HandleFunc("POST /weeklylogs/{driverID}/days", wh.SubmitDay)
	app.mux.HandleFunc("GET /weeklylogs/{driverID}/{weekID}", wh.Get)

	app.mux.HandleFunc("GET /customers", ch.List)
	app.mux.HandleFunc("POST /customers", ch.Create)
	app.mux.HandleFunc("GET /customers/{id}", ch.Get)

	app.mux.HandleFunc("PUT /weeklyrates/{customerID}/{weekID}", rh.Upsert)
	app.mux.HandleFunc("POST /weeklyrates/{customerID}/{weekID}/suggest", rh.Suggest)

	app.mux.HandleFunc("POST /invoices/preview", ih.Preview)
	app.mux.HandleFunc("POST /invoices", ih.Create)
	app.mux.HandleFunc("GET /invoices/{id}", ih.Get)

	return app
}

// ServeHTTP implements http.Handler with request logging applied.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	a.mux.ServeHTTP(w, r)
	a.log.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Dur("duration", time.Since(start)).
		Msg("request")
}

func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// healthz additionally pings the database.
func (a *App) healthz(w http.ResponseWriter, _ *http.Request) {
	if err := a.db.Exec("SELECT 1").Error; err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

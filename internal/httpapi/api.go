// Package httpapi is the HTTP layer: routing, middleware, request decoding
// and error mapping for the housing allocation service.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/allocation"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/dashboard"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/housing"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/obs"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/stream"
)

// tokenTTL is how long issued login tokens stay valid.
const tokenTTL = 24 * time.Hour

// ReadyProbe reports readiness, typically a DB ping.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config carries the dependencies and tunables for the API.
type Config struct {
	Version    string
	ReadyProbe ReadyProbe

	Allocations allocation.Service
	Inventory   housing.Inventory
	Identity    *identity.Service
	Dashboard   dashboard.Service
	Stream      *stream.Stream

	RateBurst  int
	RatePerSec int
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	allocations allocation.Service
	inventory   housing.Inventory
	identity    *identity.Service
	dashboard   dashboard.Service
	stream      *stream.Stream

	rateBurst  int
	ratePerSec int
}

func New(cfg Config) *API {
	a := &API{
		mux:         http.NewServeMux(),
		readyProbe:  cfg.ReadyProbe,
		version:     cfg.Version,
		allocations: cfg.Allocations,
		inventory:   cfg.Inventory,
		identity:    cfg.Identity,
		dashboard:   cfg.Dashboard,
		stream:      cfg.Stream,
		rateBurst:   cfg.RateBurst,
		ratePerSec:  cfg.RatePerSec,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 10
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/api/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// authentication
	a.mux.HandleFunc("/api/auth/employee/register", a.handleEmployeeRegister)
	a.mux.HandleFunc("/api/auth/employee/login", a.handleEmployeeLogin)
	a.mux.HandleFunc("/api/auth/admin/login", a.handleAdminLogin)

	// employers
	a.mux.HandleFunc("/api/employers", a.handleEmployersCollection)
	a.mux.HandleFunc("/api/employers/", a.handleEmployerResource)

	// housing inventory
	a.mux.HandleFunc("/api/housing", a.handleHousingCollection)
	a.mux.HandleFunc("/api/housing/filters/options", a.handleFilterOptions)
	a.mux.HandleFunc("/api/housing/", a.handleHousingResource)

	// allocation workflow
	a.mux.HandleFunc("/api/applications", a.handleApplicationsCollection)
	a.mux.HandleFunc("/api/applications/", a.handleApplicationResource)

	// dashboard
	a.mux.HandleFunc("/api/dashboard/stats", a.handleDashboardStats)
	a.mux.HandleFunc("/api/dashboard/stream", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = LoggingJSON(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

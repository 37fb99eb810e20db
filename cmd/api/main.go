package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/httpapi"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/obs"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/store/memory"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/store/pg"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/stream"
)

var version = "0.3.1"

type config struct {
	Addr       string `env:"HOUSING_ADDR" envDefault:":8080"`
	PgDSN      string `env:"HOUSING_PG_DSN"`
	RateBurst  int    `env:"HOUSING_RATE_BURST" envDefault:"20"`
	RatePerSec int    `env:"HOUSING_RATE_PER_SEC" envDefault:"10"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse config: %v", err)
	}

	obs.Init()

	apiCfg := httpapi.Config{
		Version:    version,
		Stream:     stream.New(),
		RateBurst:  cfg.RateBurst,
		RatePerSec: cfg.RatePerSec,
	}

	var closeStore func() error
	if cfg.PgDSN != "" {
		store, err := pg.Open(cfg.PgDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		closeStore = store.Close
		apiCfg.ReadyProbe = httpapi.ReadyProbe{DB: store.DB()}
		apiCfg.Allocations = store
		apiCfg.Inventory = store
		apiCfg.Identity = identity.NewService(store)
		apiCfg.Dashboard = store
	} else {
		// In-memory fallback for local development; data is lost on restart.
		log.Println("HOUSING_PG_DSN not set, using in-memory store")
		store := memory.New()
		for _, name := range []string{"Bedsitter", "1 Bedroom", "2 Bedroom", "3 Bedroom"} {
			store.AddHouseType(name)
		}
		apiCfg.Allocations = store
		apiCfg.Inventory = store
		apiCfg.Identity = identity.NewService(store)
		apiCfg.Dashboard = store
	}

	api := httpapi.New(apiCfg)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// SSE connections outlive the write timeout on purpose.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting staff-housing-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if closeStore != nil {
		_ = closeStore()
	}
	log.Println("Stopped")
}

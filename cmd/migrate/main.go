package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/identity"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/migrate"
	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	var (
		dsn            = flag.String("dsn", os.Getenv("HOUSING_PG_DSN"), "PostgreSQL DSN")
		migrationsPath = flag.String("migrations", "migrations/sql", "Path to SQL migrations")
		seedsPath      = flag.String("seeds", "migrations/seeds", "Path to SQL seeds")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or HOUSING_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|seed|seed-admin|status]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	mgr := migrate.NewManager(db, *migrationsPath, *seedsPath)

	switch flag.Arg(0) {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "seed-admin":
		err = seedAdmin(ctx, db)
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}

// seedAdmin upserts the administrator account. Credentials come from the
// environment; the password is hashed here, never stored in seed SQL.
func seedAdmin(ctx context.Context, db *sql.DB) error {
	username := os.Getenv("HOUSING_ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("HOUSING_ADMIN_PASSWORD")
	if password == "" {
		return fmt.Errorf("HOUSING_ADMIN_PASSWORD is required")
	}
	svc := identity.NewService(pg.NewFromDB(db))
	admin, err := svc.EnsureAdmin(ctx, username, password)
	if err != nil {
		return err
	}
	log.Printf("admin account %q ready", admin.Username)
	return nil
}

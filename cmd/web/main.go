package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"testshare/internal/app"
	"testshare/internal/db"
	"testshare/internal/store"
)

func main() {
	cfg := app.LoadConfig()

	var (
		st    store.Store
		sqlDB *sql.DB
	)
	switch cfg.StoreDriver {
	case "memory", "":
		st = store.NewMemory()
	case "sqlite", "postgres":
		conn, err := db.OpenWithConfig(context.Background(), db.Driver(cfg.StoreDriver), cfg.DBDSN, db.Config{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifeMins) * time.Minute,
		})
		if err != nil {
			log.Printf("database error: %v", err)
			os.Exit(1)
		}
		defer conn.Close()
		sqlDB = conn
		st = store.NewSQL(conn)
	default:
		log.Printf("unknown STORE_DRIVER %q", cfg.StoreDriver)
		os.Exit(1)
	}

	r := app.NewRouter(cfg, st, sqlDB)

	log.Printf("testshare web listening on %s (store=%s)", cfg.HTTPAddr, cfg.StoreDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"carwash/pkg/config"
	"carwash/pkg/db"
)

func main() {
	source := flag.String("source", "", "migration source (default MIGRATIONS_PATH, e.g. file://pkg/db/migrations)")
	flag.Parse()

	cfg := config.Load()
	if *source != "" {
		cfg.MigrationsPath = *source
	}

	// Uses DIRECT_URL when set; poolers often reject the DDL locks migrate takes.
	if err := db.Migrate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	// Sanity check the runtime connection (DATABASE_URL). DSNs are not printed.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	fmt.Println("migrations applied")
}

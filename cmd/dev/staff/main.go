package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"carwash/internal/staff"
	"carwash/pkg/config"
	"carwash/pkg/db"
	"carwash/pkg/stafftoken"
)

// staff manages dashboard staff rows in a dev database.
//
//	staff -email lee@wash.test -name Lee -role attendant   seed and print a token
//	staff -deactivate <staff-id>                           revoke access
func main() {
	var (
		email      = flag.String("email", "dev@carwash.local", "staff email to seed")
		name       = flag.String("name", "Dev Attendant", "staff display name")
		role       = flag.String("role", "attendant", "staff role")
		ttl        = flag.Duration("ttl", time.Hour, "token lifetime")
		deactivate = flag.String("deactivate", "", "staff id to deactivate instead of seeding")
	)
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := staff.NewRepository(pool)

	if *deactivate != "" {
		if err := repo.Deactivate(ctx, *deactivate); err != nil {
			if errors.Is(err, staff.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "no staff member %s\n", *deactivate)
				os.Exit(2)
			}
			fmt.Fprintf(os.Stderr, "deactivate: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("deactivated staff_id=%s\n", *deactivate)
		return
	}

	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "missing AUTH_JWT_SECRET (env or .env)")
		os.Exit(2)
	}
	m, err := repo.Upsert(ctx, *email, *name, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upsert staff: %v\n", err)
		os.Exit(1)
	}
	token, err := stafftoken.Issue(cfg.Auth.JWTSecret, cfg.Auth.Audience, m.ID, m.Role, *ttl, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("staff_id=%s role=%s\n", m.ID, m.Role)
	fmt.Printf("bearer token (%s): %s\n", *ttl, token)
}

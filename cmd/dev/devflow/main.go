package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"carwash/internal/bookingstate"
	"carwash/internal/devclient"
	"carwash/internal/staff"
	"carwash/pkg/config"
	"carwash/pkg/db"
	"carwash/pkg/stafftoken"
)

// devflow seeds a staff member, creates a booking through the API and walks it
// through a list of actions, printing each transition and the final history.
func main() {
	var (
		baseURL = flag.String("url", "", "API base url (defaults to http://localhost<HTTP_ADDR>)")
		email   = flag.String("email", "dev@carwash.local", "staff email to seed")
		name    = flag.String("name", "Dev Attendant", "staff display name")
		role    = flag.String("role", "manager", "staff role")
		plate   = flag.String("plate", "DEV-001", "vehicle plate")
		actions = flag.String("actions", "Book,Start,Manual Confirm,Finish", "comma-separated actions to apply in order")
	)
	flag.Parse()

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "missing AUTH_JWT_SECRET (env or .env)")
		os.Exit(2)
	}
	if *baseURL == "" {
		*baseURL = devclient.BaseURLFromAddr(cfg.HTTPAddr)
	}

	var steps []bookingstate.Action
	for _, raw := range strings.Split(*actions, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		a, err := bookingstate.ParseAction(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		steps = append(steps, a)
	}

	ctx := context.Background()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
	}

	member, err := staff.NewRepository(pool).Upsert(ctx, *email, *name, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upsert staff: %v\n", err)
		os.Exit(1)
	}

	token, err := stafftoken.Issue(cfg.Auth.JWTSecret, cfg.Auth.Audience, member.ID, member.Role, time.Hour, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	client := devclient.New(*baseURL, token)

	var created struct {
		Booking struct {
			ID          string `json:"id"`
			TotalAmount string `json:"totalAmount"`
			Currency    string `json:"currency"`
		} `json:"booking"`
	}
	err = client.Do(ctx, http.MethodPost, "/v1/bookings", map[string]any{
		"vehicle":      map[string]string{"plate": *plate, "make": "Toyota", "model": "Corolla", "color": "blue"},
		"customerName": "Jane Doe",
		"lines": []map[string]any{
			{"serviceCode": "EXT-WASH", "description": "Exterior wash", "unitPrice": "12.99", "quantity": 1},
			{"serviceCode": "TIRE-SHINE", "description": "Tire shine", "unitPrice": "4.50", "quantity": 2},
		},
		"discountPercent": "10",
	}, &created)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create booking: %v\n", err)
		fmt.Fprintf(os.Stderr, "tip: is the API running? url=%s\n", *baseURL)
		os.Exit(1)
	}
	id := created.Booking.ID
	fmt.Printf("staff_id=%s\n", member.ID)
	fmt.Printf("booking_id=%s total=%s %s\n", id, created.Booking.TotalAmount, created.Booking.Currency)

	for _, a := range steps {
		var res struct {
			OldState string `json:"oldState"`
			NewState string `json:"newState"`
		}
		if err := client.Do(ctx, http.MethodPost, "/v1/bookings/"+id+"/transitions", map[string]string{"action": a.String()}, &res); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", a, err)
			os.Exit(1)
		}
		fmt.Printf("  %-15s %s -> %s\n", a, res.OldState, res.NewState)
	}

	var history struct {
		Items []bookingstate.Record `json:"items"`
	}
	if err := client.Do(ctx, http.MethodGet, "/v1/bookings/"+id+"/history", nil, &history); err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("history:\n")
	for _, r := range history.Items {
		from := "-"
		if r.OldState != nil {
			from = r.OldState.String()
		}
		fmt.Printf("  #%d %s -> %s by %s at %s\n", r.Sequence, from, r.NewState, r.ActorID, r.Timestamp.Format(time.RFC3339))
	}
	fmt.Printf("\nbearer token (1h): %s\n", token)
}

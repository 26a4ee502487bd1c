package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"carwash/internal/bookingstate"
	"carwash/internal/devclient"
	"carwash/pkg/config"
	"carwash/pkg/stafftoken"
)

// simtransition posts one action for a booking as the given staff member, e.g. to
// reproduce rejected transitions from the dashboard.
func main() {
	var (
		baseURL   = flag.String("url", "", "API base url (defaults to http://localhost<HTTP_ADDR>)")
		bookingID = flag.String("booking", "", "booking id")
		action    = flag.String("action", "", "action name, e.g. Start or \"Manual Confirm\"")
		staffID   = flag.String("staff", "", "staff id placed in the token subject")
		role      = flag.String("role", "attendant", "staff role claim")
	)
	flag.Parse()

	if *bookingID == "" || *action == "" || *staffID == "" {
		fmt.Fprintln(os.Stderr, "missing -booking, -action or -staff")
		os.Exit(2)
	}
	a, err := bookingstate.ParseAction(*action)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	cfg := config.Load()
	if *baseURL == "" {
		*baseURL = devclient.BaseURLFromAddr(cfg.HTTPAddr)
	}
	token, err := stafftoken.Issue(cfg.Auth.JWTSecret, cfg.Auth.Audience, *staffID, *role, 5*time.Minute, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(2)
	}

	var res map[string]any
	err = devclient.New(*baseURL, token).Do(context.Background(), http.MethodPost,
		"/v1/bookings/"+*bookingID+"/transitions", map[string]string{"action": a.String()}, &res)
	if err != nil {
		var se *devclient.StatusError
		if errors.As(err, &se) {
			fmt.Fprintf(os.Stderr, "status=%d code=%s\n%s\n", se.Status, se.Code, se.Body)
		} else {
			fmt.Fprintf(os.Stderr, "post transition: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("ok: %s -> %s\n", res["oldState"], res["newState"])
}

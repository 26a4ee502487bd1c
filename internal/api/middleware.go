package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"carwash/internal/staff"
	"carwash/pkg/config"
	"carwash/pkg/stafftoken"
)

// StaffLookup resolves an authenticated staff id to an active staff record.
type StaffLookup interface {
	FindActiveByID(ctx context.Context, id string) (*staff.Member, error)
}

// StaffAuth validates dashboard bearer tokens and attaches the staff member to the
// request context.
//
// Expected header:
// - Authorization: Bearer <JWT> (HS256, sub = staff id, aud = AUTH_AUDIENCE)
//
// Outside prod a request without Authorization may name the staff member via
// X-Staff-ID instead.
func StaffAuth(cfg config.Config, lookup StaffLookup) func(http.Handler) http.Handler {
	return staffAuth(cfg, lookup, time.Now)
}

func staffAuth(cfg config.Config, lookup StaffLookup, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var staffID string

			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			switch {
			case strings.HasPrefix(strings.ToLower(authz), "bearer "):
				vs, err := stafftoken.Verify(strings.TrimSpace(authz[7:]), cfg.Auth.JWTSecret, cfg.Auth.Audience, now())
				if err != nil {
					WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid staff token")
					return
				}
				staffID = vs.StaffID
			case !cfg.IsProd() && strings.TrimSpace(r.Header.Get("X-Staff-ID")) != "":
				staffID = strings.TrimSpace(r.Header.Get("X-Staff-ID"))
			default:
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff token")
				return
			}

			// Staff ids are UUIDs; anything else cannot name a staff row.
			if _, err := uuid.Parse(staffID); err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown staff member")
				return
			}

			m, err := lookup.FindActiveByID(r.Context(), staffID)
			if err != nil {
				if errors.Is(err, staff.ErrNotFound) {
					WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown staff member")
					return
				}
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load staff member")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithStaff(r.Context(), m)))
		})
	}
}

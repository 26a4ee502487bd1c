package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwash/internal/staff"
	"carwash/pkg/config"
	"carwash/pkg/stafftoken"
)

type staffMap map[string]*staff.Member

func (m staffMap) FindActiveByID(_ context.Context, id string) (*staff.Member, error) {
	if s, ok := m[id]; ok {
		return s, nil
	}
	return nil, staff.ErrNotFound
}

type brokenLookup struct{}

func (brokenLookup) FindActiveByID(context.Context, string) (*staff.Member, error) {
	return nil, errors.New("db down")
}

type failLookup struct{ t *testing.T }

func (f failLookup) FindActiveByID(_ context.Context, id string) (*staff.Member, error) {
	f.t.Fatalf("unexpected staff lookup for %q", id)
	return nil, nil
}

const (
	staffOne = "7d8a3c1e-2f4b-4c6d-8e9f-0a1b2c3d4e5f"
	staffTwo = "9e0f1a2b-3c4d-4e5f-8a6b-7c8d9e0f1a2b"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func authConfig(env string) config.Config {
	return config.Config{
		AppEnv: env,
		Auth:   config.AuthConfig{JWTSecret: "test-secret", Audience: "carwash-dashboard"},
	}
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	m := StaffFromContext(r.Context())
	if m == nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(m.ID))
}

func serveAuth(t *testing.T, cfg config.Config, lookup StaffLookup, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	staffAuth(cfg, lookup, func() time.Time { return fixedNow })(http.HandlerFunc(whoAmI)).ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestStaffAuth_BearerToken(t *testing.T) {
	lookup := staffMap{staffOne: {ID: staffOne, Role: "attendant", Active: true}}
	tok, err := stafftoken.Issue("test-secret", "carwash-dashboard", staffOne, "attendant", time.Hour, fixedNow)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := serveAuth(t, authConfig("prod"), lookup, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, staffOne, rec.Body.String())
}

func TestStaffAuth_RejectsBadToken(t *testing.T) {
	tok, err := stafftoken.Issue("other-secret", "carwash-dashboard", staffOne, "", time.Hour, fixedNow)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	// A bad token is rejected even when the dev header is present.
	req.Header.Set("X-Staff-ID", staffOne)
	rec := serveAuth(t, authConfig("dev"), staffMap{staffOne: {ID: staffOne}}, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestStaffAuth_DevHeaderFallback(t *testing.T) {
	lookup := staffMap{staffTwo: {ID: staffTwo, Active: true}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Staff-ID", staffTwo)
	rec := serveAuth(t, authConfig("dev"), lookup, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, staffTwo, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Staff-ID", staffTwo)
	rec = serveAuth(t, authConfig("prod"), lookup, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaffAuth_UnknownAndLookupFailure(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Staff-ID", "0b7c1a55-5d8e-4b7f-9f0e-2c1d3e4f5a6b")
	rec := serveAuth(t, authConfig("dev"), staffMap{}, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Staff-ID", staffOne)
	rec = serveAuth(t, authConfig("dev"), brokenLookup{}, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", errorCode(t, rec))
}

func TestStaffAuth_MalformedStaffID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Staff-ID", "not-a-uuid")
	rec := serveAuth(t, authConfig("dev"), failLookup{t}, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

	tok, err := stafftoken.Issue("test-secret", "carwash-dashboard", "admin", "manager", time.Hour, fixedNow)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = serveAuth(t, authConfig("prod"), failLookup{t}, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestStaffAuth_MissingCredentials(t *testing.T) {
	rec := serveAuth(t, authConfig("dev"), staffMap{}, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardCORS(t *testing.T) {
	h := DashboardCORS(CORSOptions{AllowedOrigins: []string{"https://dash.example/"}})(http.HandlerFunc(whoAmI))

	req := httptest.NewRequest(http.MethodOptions, "/v1/bookings", nil)
	req.Header.Set("Origin", "https://dash.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dash.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/v1/bookings", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRateLimit_ReturnsEnvelope(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 1, WindowSize: time.Minute})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call().Code)
	rec := call()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))
}

func TestWriteErrorDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorDetails(rec, http.StatusConflict, "INVALID_TRANSITION", "nope", map[string]string{"state": "departed"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"INVALID_TRANSITION","message":"nope","details":{"state":"departed"}}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "NOT_FOUND", "missing")
	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"missing"}}`, rec.Body.String())
}

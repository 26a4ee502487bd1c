package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("POS_TAX_RATE", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("DASHBOARD_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.HTTPAddr)
	}
	if !cfg.POS.TaxRate.IsZero() {
		t.Fatalf("expected zero tax, got %s", cfg.POS.TaxRate)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("expected 120, got %d", cfg.RateLimitPerMinute)
	}
	if len(cfg.DashboardAllowedOrigins) != 2 || cfg.DashboardAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.DashboardAllowedOrigins)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("POS_TAX_RATE", "abc")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "-3")

	cfg := Load()
	if !cfg.POS.TaxRate.IsZero() {
		t.Fatalf("expected fallback tax rate, got %s", cfg.POS.TaxRate)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("expected fallback rate limit, got %d", cfg.RateLimitPerMinute)
	}
}

func TestLoad_TaxRate(t *testing.T) {
	t.Setenv("POS_TAX_RATE", "0.0825")
	if got := Load().POS.TaxRate.String(); got != "0.0825" {
		t.Fatalf("expected 0.0825, got %s", got)
	}
}

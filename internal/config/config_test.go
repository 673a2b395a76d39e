package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_SALES_ID", "")

	cfg, err := Load("testdata-missing.env")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Server.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Sheets.Enabled() {
		t.Fatalf("sheets export should be disabled without credentials")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	if _, err := Load("testdata-missing.env"); err == nil {
		t.Fatalf("expected invalid log level to fail")
	}

	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("REQUEST_TIMEOUT", "soon")
	if _, err := Load("testdata-missing.env"); err == nil {
		t.Fatalf("expected invalid duration to fail")
	}
}

func TestSheetsSettingsMustPair(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")
	t.Setenv("GOOGLE_SHEET_SALES_ID", "")
	if _, err := Load("testdata-missing.env"); err == nil {
		t.Fatalf("expected half-configured sheets to fail")
	}
}

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"asana-swit-backend/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:               "0",
		ActionPath:         "/app/asana",
		AppName:            "asana_sarah",
		SigningKey:         "k",
		SignatureMaxDelay:  5 * time.Minute,
		SwitAPIURL:         "https://openapi.swit.io/",
		AsanaAuthURL:       "https://app.asana.com/-/oauth_authorize",
		AsanaTokenURL:      "https://app.asana.com/-/oauth_token",
		AsanaAPIURL:        "https://app.asana.com/api/1.0/",
		DBDriver:           "sqlite",
		SQLitePath:         filepath.Join(t.TempDir(), "app.db"),
		HTTPClientTimeout:  time.Second,
		CORSAllowedOrigins: []string{"*"},
		OTelServiceName:    "test",
		SessionMaxAge:      time.Minute,
	}
}

func TestHandlerWiring(t *testing.T) {
	cfg := testConfig(t)
	store, db, err := openStore(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	handler := newHandler(cfg, store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/app/asana", bytes.NewReader([]byte(`{}`))))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid signature") {
		t.Fatalf("unsigned action: %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app_install?app_name=asana_sarah", nil))
	if rec.Code != http.StatusTemporaryRedirect || !strings.Contains(rec.Header().Get("Location"), "openapi.swit.io/oauth/authorize") {
		t.Fatalf("app install: %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestOpenStoreRejectsBadKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.TokenEncryptionKey = "short"
	if _, _, err := openStore(cfg); err == nil {
		t.Fatal("expected an error for a short encryption key")
	}
}

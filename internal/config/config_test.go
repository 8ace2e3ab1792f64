package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_RequiresAPIBaseURL(t *testing.T) {
	os.Unsetenv("API_BASE_URL")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when API_BASE_URL is missing")
	}
}

func TestLoad_WithAPIBaseURL(t *testing.T) {
	os.Setenv("API_BASE_URL", "https://api.orbitcare.example/v1")
	defer os.Unsetenv("API_BASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIBaseURL != "https://api.orbitcare.example/v1" {
		t.Errorf("expected API_BASE_URL to be set, got %s", cfg.APIBaseURL)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}

	if cfg.RowsPerPage != 10 {
		t.Errorf("expected default rows per page 10, got %d", cfg.RowsPerPage)
	}

	if cfg.SearchDebounce() != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %v", cfg.SearchDebounce())
	}

	if cfg.HTTPTimeout() != 15*time.Second {
		t.Errorf("expected default timeout 15s, got %v", cfg.HTTPTimeout())
	}
}

func TestValidate_BlobStoreNeedsAccount(t *testing.T) {
	c := &Config{
		APIBaseURL:     "https://api.example",
		HTTPTimeoutSec: 15,
		RowsPerPage:    10,
		BlobSASURL:     "https://store.example/logos?sig=x",
	}
	if err := c.Validate(); err == nil {
		t.Error("expected error when BLOB_SAS_URL is set without STORAGE_ACCOUNT_NAME")
	}

	c.StorageAccount = "orbitstore"
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

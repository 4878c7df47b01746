package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("FOODSCOUT_SERVER_PORT")
		os.Unsetenv("FOODSCOUT_SERVER_ENVIRONMENT")
		os.Unsetenv("FOODSCOUT_OPENFOODFACTS_BASE_URL")
		os.Unsetenv("FOODSCOUT_OPENFOODFACTS_USER_AGENT")
		os.Unsetenv("FOODSCOUT_OPENFOODFACTS_TIMEOUT")
		os.Unsetenv("FOODSCOUT_OPENFOODFACTS_REQUESTS_PER_MINUTE")
		os.Unsetenv("FOODSCOUT_SEARCH_MAX_RETRIES")
		os.Unsetenv("FOODSCOUT_SEARCH_BASE_DELAY")
		os.Unsetenv("FOODSCOUT_SEARCH_RATE_LIMIT_DELAY")
		os.Unsetenv("FOODSCOUT_SEARCH_MAX_PAGE_SIZE")
		os.Unsetenv("FOODSCOUT_RATELIMIT_PER_IP")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.OpenFoodFacts.BaseURL != "https://world.openfoodfacts.org" {
			t.Errorf("OpenFoodFacts.BaseURL = %s, want https://world.openfoodfacts.org", cfg.OpenFoodFacts.BaseURL)
		}
		if cfg.OpenFoodFacts.Timeout != 30*time.Second {
			t.Errorf("OpenFoodFacts.Timeout = %v, want 30s", cfg.OpenFoodFacts.Timeout)
		}
		if cfg.OpenFoodFacts.RequestsPerMinute != 90 {
			t.Errorf("OpenFoodFacts.RequestsPerMinute = %d, want 90", cfg.OpenFoodFacts.RequestsPerMinute)
		}
		if cfg.Search.MaxRetries != 2 {
			t.Errorf("Search.MaxRetries = %d, want 2", cfg.Search.MaxRetries)
		}
		if cfg.Search.BaseDelay != 500*time.Millisecond {
			t.Errorf("Search.BaseDelay = %v, want 500ms", cfg.Search.BaseDelay)
		}
		if cfg.Search.RateLimitDelay != 2*time.Second {
			t.Errorf("Search.RateLimitDelay = %v, want 2s", cfg.Search.RateLimitDelay)
		}
		if cfg.Search.MaxPageSize != 100 {
			t.Errorf("Search.MaxPageSize = %d, want 100", cfg.Search.MaxPageSize)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		os.Setenv("FOODSCOUT_SERVER_PORT", "9090")
		os.Setenv("FOODSCOUT_OPENFOODFACTS_BASE_URL", "https://staging.openfoodfacts.example")
		os.Setenv("FOODSCOUT_SEARCH_MAX_RETRIES", "4")
		os.Setenv("FOODSCOUT_SEARCH_RATE_LIMIT_DELAY", "5s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.OpenFoodFacts.BaseURL != "https://staging.openfoodfacts.example" {
			t.Errorf("OpenFoodFacts.BaseURL = %s, want staging URL", cfg.OpenFoodFacts.BaseURL)
		}
		if cfg.Search.MaxRetries != 4 {
			t.Errorf("Search.MaxRetries = %d, want 4", cfg.Search.MaxRetries)
		}
		if cfg.Search.RateLimitDelay != 5*time.Second {
			t.Errorf("Search.RateLimitDelay = %v, want 5s", cfg.Search.RateLimitDelay)
		}
	})

	t.Run("rejects an out-of-range page size", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		os.Setenv("FOODSCOUT_SEARCH_MAX_PAGE_SIZE", "500")

		if _, err := Load(); err == nil {
			t.Fatal("Load() error = nil, want validation error")
		}
	})

	t.Run("rejects negative retries", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		os.Setenv("FOODSCOUT_SEARCH_MAX_RETRIES", "-1")

		if _, err := Load(); err == nil {
			t.Fatal("Load() error = nil, want validation error")
		}
	})

	t.Run("rejects a non-positive timeout", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		os.Setenv("FOODSCOUT_OPENFOODFACTS_TIMEOUT", "0s")

		if _, err := Load(); err == nil {
			t.Fatal("Load() error = nil, want validation error")
		}
	})
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/foodscout/backend/config"
	httpDelivery "github.com/foodscout/backend/internal/delivery/http"
	"github.com/foodscout/backend/internal/infrastructure/metrics"
	"github.com/foodscout/backend/internal/infrastructure/openfoodfacts"
	"github.com/foodscout/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting FoodScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("OpenFoodFacts API: %s (%d req/min)", cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.RequestsPerMinute)

	// Initialize infrastructure dependencies
	offClient := openfoodfacts.NewClient(
		cfg.OpenFoodFacts.BaseURL,
		cfg.OpenFoodFacts.UserAgent,
		cfg.OpenFoodFacts.Timeout,
		cfg.OpenFoodFacts.RequestsPerMinute,
	)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		offClient.SetDebug(true)
		log.Printf("OpenFoodFacts client debug mode enabled")
	}

	collector := metrics.NewCollector()

	// Initialize usecase layer
	searchService := usecase.NewSearchService(
		offClient,
		collector,
		usecase.SearchServiceConfig{
			MaxRetries:     cfg.Search.MaxRetries,
			BaseDelay:      cfg.Search.BaseDelay,
			RateLimitDelay: cfg.Search.RateLimitDelay,
			MaxPageSize:    cfg.Search.MaxPageSize,
		},
	)

	log.Printf("Search pipeline: retries=%d, base delay=%s, rate-limit cooldown=%s",
		cfg.Search.MaxRetries,
		cfg.Search.BaseDelay,
		cfg.Search.RateLimitDelay)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}

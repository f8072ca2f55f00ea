package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"cycling-route-service/internal/adapters/cache"
	"cycling-route-service/internal/adapters/elevation"
	"cycling-route-service/internal/adapters/narrative"
	"cycling-route-service/internal/adapters/repositories"
	"cycling-route-service/internal/adapters/routing"
	"cycling-route-service/internal/adapters/weather"
	"cycling-route-service/internal/api"
	"cycling-route-service/internal/config"
	"cycling-route-service/internal/platform/metrics"
	"cycling-route-service/internal/ports"
	"cycling-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Redis, ORS, Open-Meteo, Anthropic)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/plans.db")
	port := config.Get("PORT", "8080")

	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := repositories.InitSchema(db); err != nil {
		log.Fatal(err)
	}

	// Redis is optional; without it geocode and weather responses are simply
	// fetched fresh every time.
	responseCache := openCache(config.Get("REDIS_ADDR", ""))

	routeProvider, err := routing.NewORSRouteProvider(orsKey)
	if err != nil {
		log.Fatal(err)
	}
	geocoder, err := routing.NewORSGeocoder(orsKey, responseCache)
	if err != nil {
		log.Fatal(err)
	}
	elevationProvider := elevation.NewOpenMeteoProvider()
	weatherProvider := weather.NewOpenMeteoProvider(responseCache)
	narrativeGen := openNarrative(os.Getenv("ANTHROPIC_API_KEY"))

	repo := repositories.NewSqlitePlanRepository(db)
	collector := metrics.NewCollector("cycling_route_service")

	synthesizer := services.NewSynthesizer(
		routeProvider,
		elevationProvider,
		weatherProvider,
		narrativeGen,
		repo,
		collector,
	)

	router := api.NewRouter(api.Dependencies{
		Synthesizer: synthesizer,
		Repo:        repo,
		Weather:     weatherProvider,
		Geocoder:    geocoder,
		Metrics:     collector,
	})

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// No write timeout: the plan endpoint streams for as long as the
		// narrative generator keeps producing tokens.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func openCache(addr string) *cache.Redis {
	if strings.TrimSpace(addr) == "" {
		log.Println("REDIS_ADDR not set, response caching disabled")
		return cache.NewRedis(nil)
	}
	log.Printf("Response caching via redis addr=%s", addr)
	return cache.NewRedis(redis.NewClient(&redis.Options{Addr: addr}))
}

func openNarrative(apiKey string) ports.NarrativeGenerator {
	if strings.TrimSpace(apiKey) == "" {
		log.Println("ANTHROPIC_API_KEY not set, using template narratives")
		return narrative.TemplateGenerator{}
	}

	gen, err := narrative.NewAnthropicGenerator(apiKey)
	if err != nil {
		log.Fatal(err)
	}
	return gen
}

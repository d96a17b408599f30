package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/tts885/musubisuite/internal/config"
	"github.com/tts885/musubisuite/internal/enrich"
	"github.com/tts885/musubisuite/internal/extract"
	"github.com/tts885/musubisuite/internal/handler"
	"github.com/tts885/musubisuite/internal/llm"
	"github.com/tts885/musubisuite/internal/repository/postgres"
	"github.com/tts885/musubisuite/internal/router"
	"github.com/tts885/musubisuite/internal/search"
	"github.com/tts885/musubisuite/internal/secret"
	"github.com/tts885/musubisuite/internal/suggest"

	// Vendor adapters register themselves with the gateway.
	_ "github.com/tts885/musubisuite/internal/llm/anthropic"
	_ "github.com/tts885/musubisuite/internal/llm/azure"
	_ "github.com/tts885/musubisuite/internal/llm/gemini"
	_ "github.com/tts885/musubisuite/internal/llm/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	cipher, err := secret.NewCipher(cfg.Secret.AppKey)
	if err != nil {
		return fmt.Errorf("failed to initialize cipher: %w", err)
	}

	// Initialize repositories
	providerRepo := postgres.NewProviderRepo(db)
	searchRepo := postgres.NewSearchRepo(db)

	// Initialize services
	gateway := llm.NewGateway(providerRepo, cipher, cfg.AI.CallTimeout)
	searcher := search.NewSearcher(searchRepo, cipher)
	extractor := extract.NewProcessor(gateway)
	enricher := enrich.NewService(gateway, searcher)
	suggester := suggest.NewService(gateway)

	// Initialize handlers
	aiH := handler.NewAIHandler(gateway, extractor, enricher, suggester)
	providerH := handler.NewProviderHandler(providerRepo, cipher)
	engineH := handler.NewSearchEngineHandler(searchRepo, cipher)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, aiH, providerH, engineH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

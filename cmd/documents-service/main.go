package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/mms-documents/internal/auth"
	"github.com/nurpe/mms-documents/internal/config"
	"github.com/nurpe/mms-documents/internal/db"
	"github.com/nurpe/mms-documents/internal/excel"
	httphandler "github.com/nurpe/mms-documents/internal/http"
	"github.com/nurpe/mms-documents/internal/http/middleware"
	"github.com/nurpe/mms-documents/internal/logger"
	"github.com/nurpe/mms-documents/internal/pdf"
	"github.com/nurpe/mms-documents/internal/policy"
	"github.com/nurpe/mms-documents/internal/repository"
	"github.com/nurpe/mms-documents/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	var store repository.BlobStore
	switch cfg.StoreDriver {
	case config.StorePostgres:
		database, err := db.New(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect database")
		}
		store = repository.NewPostgresStore(database)
	default:
		store = repository.NewMemoryStore()
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("document store ready")

	docRepo := repository.NewDocumentRepository(store)
	budgetRepo := repository.NewBudgetRepository(store, cfg.Policy.BudgetLimit)

	if cfg.Documents.SeedDemoData {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := repository.Seed(ctx, docRepo, budgetRepo, cfg.Policy.BudgetLimit, time.Now())
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	evaluator := policy.NewEvaluator(cfg.Policy.Route)
	documentService := service.NewDocumentService(docRepo, budgetRepo, evaluator, pdf.NewGenerator(), excel.NewGenerator(), cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	if !tokenParser.Enabled() {
		log.Warn().Msg("JWT_ACCESS_SECRET not set, every request is anonymous")
	}
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	handler := httphandler.NewHandler(documentService, log)
	router := httphandler.NewRouter(handler, cfg.Environment,
		[]gin.HandlerFunc{middleware.CORS(cfg.CORS.AllowedOrigins), middleware.OptionalAuth(tokenParser), middleware.RequestLogger(log)},
		rateLimiter.Middleware(),
	)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting documents service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

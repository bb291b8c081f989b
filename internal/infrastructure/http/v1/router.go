package v1

import (
	"github.com/gin-gonic/gin"

	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/closing"
	"ledgerio/internal/domain/digest"
	"ledgerio/internal/domain/ingest"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/ledger"
	"ledgerio/internal/infrastructure/http/v1/handlers"
	"ledgerio/internal/infrastructure/http/v1/middleware"
	"ledgerio/pkg/logger"
)

// Services are the ledger services the API exposes.
type Services struct {
	Ledgers  *ledger.Service
	Accounts *accounts.Service
	Journal  *journal.Service
	Digest   *digest.Service
	Closing  *closing.Service
	Ingest   *ingest.Service
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	Services Services

	// Logger for request logging
	Logger *logger.Logger

	// DB answers readiness probes; nil reports the database as not configured.
	DB handlers.Pinger

	// Idempotency enables X-Idempotency-Key handling for POST requests.
	Idempotency middleware.IdempotencyStore

	// Charts resolves account codes on commit; defaults to Services.Accounts.
	Charts handlers.ChartSource

	// DigestPostedOnly is the digest default when a request does not set it.
	DigestPostedOnly bool

	Version string
	Debug   bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	registerLedgerRoutes(api, cfg)
	registerJournalRoutes(api, cfg)
	registerClosingRoutes(api, cfg)
	registerDigestRoutes(api, cfg)

	return router
}

// registerLedgerRoutes registers entity, chart, unit and ledger endpoints
// together with the transaction commit.
func registerLedgerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	s := cfg.Services

	handler := handlers.NewLedgerHandler(baseHandler, s.Ledgers, s.Accounts)
	charts := cfg.Charts
	if charts == nil {
		charts = s.Accounts
	}
	commit := handlers.NewCommitHandler(baseHandler, s.Ingest, s.Ledgers, charts)

	entities := rg.Group("/entities")
	{
		entities.POST("", handler.CreateEntity)
		entities.GET("/:entityID", handler.GetEntity)
		entities.GET("/:entityID/accounts", handler.GetChart)
		entities.POST("/:entityID/units", handler.CreateUnit)
		entities.POST("/:entityID/ledgers", handler.CreateLedger)
	}

	ledgers := rg.Group("/ledgers")
	{
		ledgers.GET("/:ledgerID", handler.GetLedger)
		ledgers.POST("/:ledgerID/post", handler.PostLedger)
		ledgers.POST("/:ledgerID/unpost", handler.UnpostLedger)
		ledgers.POST("/:ledgerID/lock", handler.LockLedger)
		ledgers.POST("/:ledgerID/unlock", handler.UnlockLedger)
		ledgers.POST("/:ledgerID/commit", commit.Commit)
	}
}

// registerJournalRoutes registers journal entry endpoints.
func registerJournalRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewJournalHandler(handlers.NewBaseHandler(), cfg.Services.Journal)
	group := rg.Group("/journal-entries")
	RegisterLifecycleRoutes(group, handler)
	group.GET("/:id/transactions", handler.ListTransactions)
}

// registerClosingRoutes registers closing entry endpoints.
func registerClosingRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewClosingHandler(handlers.NewBaseHandler(), cfg.Services.Closing)
	rg.POST("/entities/:entityID/closing-entries", handler.Create)
	rg.GET("/entities/:entityID/closing-entries", handler.List)
	RegisterLifecycleRoutes(rg.Group("/closing-entries"), handler)
}

// registerDigestRoutes registers report endpoints.
func registerDigestRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewDigestHandler(handlers.NewBaseHandler(), cfg.Services.Digest, cfg.DigestPostedOnly)
	rg.GET("/entities/:entityID/digest", handler.Get)
}

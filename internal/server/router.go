package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"secretary-backend/internal/analyses"
	"secretary-backend/internal/assemble"
	"secretary-backend/internal/config"
	"secretary-backend/internal/extract"
	"secretary-backend/internal/ledger"
	"secretary-backend/internal/llm/gemini"
	"secretary-backend/internal/services/health"
	"secretary-backend/internal/sheets"
	"secretary-backend/internal/shared/server/middleware"
	"secretary-backend/internal/shared/server/respond"
	"secretary-backend/internal/shared/storage/db"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Printf("failed to connect database, falling back to file ledger: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to file ledger: %v", err)
				dbConn.Close()
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var usageStore ledger.Store
	if sqlDB != nil {
		usageStore = ledger.NewPGStore(sqlDB)
	} else {
		usageStore = ledger.NewFileStore(cfg.UsageLogPath)
	}
	usageSvc := ledger.NewService(usageStore)
	usageHandler := ledger.NewHandler(usageSvc)

	var analysisSvc *analyses.Service
	if cfg.GeminiAPIKey != "" {
		invoker, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("failed to create gemini client, analysis disabled: %v", err)
		} else {
			analysisSvc = analyses.NewService(invoker, cfg.GeminiModels, usageSvc)
		}
	} else {
		log.Printf("GEMINI_API_KEY not set, analysis disabled")
	}
	analysisHandler := analyses.NewHandler(analysisSvc, extract.Options{InlinePDFText: cfg.ExtractPDFText})

	artifactHandler := assemble.NewHandler(assemble.NewAssembler(cfg.TemplateDir))
	sheetsHandler := sheets.NewHandler(sheets.NewPublisher())
	healthSvc := health.NewService(analysisSvc != nil)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	analysisHandler.RegisterRoutes(api)
	artifactHandler.RegisterRoutes(api)
	sheetsHandler.RegisterRoutes(api)
	usageHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

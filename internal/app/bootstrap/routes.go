// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditlogsfeature "github.com/clubvault/clubvault/internal/app/features/auditlogs"
	documentsfeature "github.com/clubvault/clubvault/internal/app/features/documents"
	foldersfeature "github.com/clubvault/clubvault/internal/app/features/folders"
	healthfeature "github.com/clubvault/clubvault/internal/app/features/health"
	requestlogfeature "github.com/clubvault/clubvault/internal/app/features/requestlog"
	"github.com/clubvault/clubvault/internal/app/store/audit"
	ledgerstore "github.com/clubvault/clubvault/internal/app/store/ledger"
	"github.com/clubvault/clubvault/internal/app/system/assets"
	"github.com/clubvault/clubvault/internal/app/system/auditlog"
	"github.com/clubvault/clubvault/internal/app/system/auth"
	"github.com/clubvault/clubvault/internal/app/system/authz"
	"github.com/clubvault/clubvault/internal/app/system/ledger"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// The API is consumed by the club platform's gateway, which authenticates
// end users and forwards their identity in headers. This service verifies
// the gateway's API key and trusts the forwarded identity.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Audit logger for folder/document mutations.
	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Mode: appCfg.AuditLogMode,
	})

	// Remote asset cleanup used by document and cascading folder deletes.
	assetDeleter := assets.NewDeleter(deps.FileStorage, logger)

	// Failed-request ledger for the API subtree.
	apiLedgerConfig := ledger.Config{
		Store:  ledgerstore.New(deps.MongoDatabase),
		Logger: logger,
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Get("/healthz", healthHandler.Check)
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Serve document assets directly when using local storage
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// API routes: permissive CORS (API key auth, no cookies), Bearer key
	// auth, gateway identity headers, failed-request ledger.
	apiCORS := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", auth.HeaderUserID, auth.HeaderUserRole, auth.HeaderUserName},
		AllowCredentials: false,
		MaxAge:           300,
	})

	foldersHandler := foldersfeature.NewHandler(deps.MongoDatabase, assetDeleter, auditLogger, logger)
	documentsHandler := documentsfeature.NewHandler(deps.MongoDatabase, assetDeleter, auditLogger, logger)

	r.Route("/api", func(api chi.Router) {
		api.Use(apiCORS.Handler)
		api.Use(auth.APIKeyAuth(appCfg.APIKey, logger))
		api.Use(auth.LoadIdentity)
		api.Use(ledger.Middleware(apiLedgerConfig))

		api.Mount("/folders", foldersfeature.Routes(foldersHandler))
		api.Mount("/documents", documentsfeature.Routes(documentsHandler))

		// Admin-only introspection endpoints
		api.Group(func(admin chi.Router) {
			admin.Use(authz.RequireRole("admin"))
			admin.Mount("/audit-logs", auditlogsfeature.NewHandler(deps.MongoDatabase, logger).Routes())
			admin.Mount("/request-log", requestlogfeature.NewHandler(deps.MongoDatabase, logger).Routes())
		})
	})

	return r, nil
}

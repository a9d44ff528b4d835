// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	accountsfeature "github.com/lineagehub/lineagehub/internal/app/features/accounts"
	healthfeature "github.com/lineagehub/lineagehub/internal/app/features/health"
	membersfeature "github.com/lineagehub/lineagehub/internal/app/features/members"
	treesfeature "github.com/lineagehub/lineagehub/internal/app/features/trees"
	auditstore "github.com/lineagehub/lineagehub/internal/app/store/audit"
	userstore "github.com/lineagehub/lineagehub/internal/app/store/users"
	"github.com/lineagehub/lineagehub/internal/app/system/auditlog"
	"github.com/lineagehub/lineagehub/internal/app/system/auth"
	"github.com/lineagehub/lineagehub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// LineageHub applies session middleware and mounts the JSON API feature
// routers: account lifecycle under /api/auth, family trees (with the
// nested member router) under /api/family-trees, and the portrait upload
// endpoint. Stored portrait files are served under the configured storage
// URL prefix.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	portraitStore, err := storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
	if err != nil {
		logger.Error("portrait storage init failed", zap.Error(err))
		return nil, err
	}

	// Audit trail shared by the auth and mutation endpoints.
	auditLogger := auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Uploaded portrait files
	r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))

	// Account lifecycle: register, login, logout, current user.
	// Sign-in attempts are rate limited per IP and per email.
	accountsHandler := accountsfeature.NewHandler(userstore.New(deps.MongoDatabase), sessionMgr, logger)
	accountsHandler.Limits = ratelimit.NewLoginLimiter()
	accountsHandler.Audit = auditLogger
	r.Mount("/api/auth", accountsfeature.Routes(accountsHandler))

	// Family trees with the nested member router. Member routes inherit the
	// treeID URL parameter from the tree router that mounts them.
	membersHandler := membersfeature.NewHandler(deps.MongoDatabase, portraitStore, logger)
	membersHandler.Audit = auditLogger
	treesHandler := treesfeature.NewHandler(deps.MongoDatabase, logger)
	treesHandler.Audit = auditLogger
	r.Mount("/api/family-trees", treesfeature.Routes(treesHandler, membersfeature.Routes(membersHandler)))

	// Portrait upload is tree-independent so a portrait can be attached
	// before the member record exists.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Post("/api/uploads/members", membersHandler.HandleUploadPortrait)
	})

	return r, nil
}

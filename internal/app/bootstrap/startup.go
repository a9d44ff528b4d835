// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/waffle/config"
	"github.com/lineagehub/lineagehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It is the
// place to apply configured timeouts, prepare storage directories, warm
// caches, or perform any app-wide setup that depends on config and backends.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if appCfg.StorageType == "local" {
		if err := os.MkdirAll(appCfg.StorageLocalPath, 0o755); err != nil {
			return fmt.Errorf("create storage directory %q: %w", appCfg.StorageLocalPath, err)
		}
		logger.Info("portrait storage ready", zap.String("path", appCfg.StorageLocalPath))
	}

	return nil
}

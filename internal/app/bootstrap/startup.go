// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/khebert/koinonia/internal/app/system/grouping"
)

// groupCache holds each browser session's last generated partition. It
// is created here and handed to the regroup feature in BuildHandler.
var (
	groupCache *grouping.Cache
	sweepStop  chan struct{}
)

const sweepInterval = time.Hour

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// It creates the partition cache and starts its periodic sweeper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	groupCache = grouping.NewCache()
	sweepStop = make(chan struct{})

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepStop:
				return
			case now := <-ticker.C:
				if dropped := groupCache.Sweep(now); dropped > 0 {
					logger.Info("swept stale partitions",
						zap.Int("dropped", dropped),
						zap.Int("remaining", groupCache.Len()))
				}
			}
		}
	}()

	return nil
}

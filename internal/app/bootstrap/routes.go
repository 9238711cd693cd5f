// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	attendancefeature "github.com/khebert/koinonia/internal/app/features/attendance"
	errorsfeature "github.com/khebert/koinonia/internal/app/features/errors"
	healthfeature "github.com/khebert/koinonia/internal/app/features/health"
	homefeature "github.com/khebert/koinonia/internal/app/features/home"
	membersfeature "github.com/khebert/koinonia/internal/app/features/members"
	regroupfeature "github.com/khebert/koinonia/internal/app/features/regroup"
	reportsfeature "github.com/khebert/koinonia/internal/app/features/reports"
	_ "github.com/khebert/koinonia/internal/app/features/shared/views" // registers the shared layout set
	"github.com/khebert/koinonia/internal/app/system/websession"
)

// parseKeepApart splits the divider_keep_apart config value into name
// pairs. Format: pairs separated by ";", names within a pair by "|".
func parseKeepApart(raw string) ([][2]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var pairs [][2]string
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		names := strings.Split(part, "|")
		if len(names) != 2 {
			return nil, fmt.Errorf("pair %q must be two names separated by |", part)
		}
		a, b := strings.TrimSpace(names[0]), strings.TrimSpace(names[1])
		if a == "" || b == "" {
			return nil, fmt.Errorf("pair %q has an empty name", part)
		}
		pairs = append(pairs, [2]string{a, b})
	}
	return pairs, nil
}

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. It boots the template engine,
// applies the session middleware, and mounts the feature routers:
// home, members, attendance, groups, reports, and health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := websession.NewManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	keepApart, err := parseKeepApart(appCfg.DividerKeepApart)
	if err != nil {
		return nil, fmt.Errorf("divider_keep_apart: %w", err)
	}

	r := chi.NewRouter()

	// Every browser gets a stable session ID; the grouping cache and
	// flash messages hang off it.
	r.Use(sessionMgr.EnsureSession)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	homeHandler := homefeature.NewHandler(deps.MongoDatabase, sessionMgr, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	membersHandler := membersfeature.NewHandler(deps.MongoDatabase, sessionMgr, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	attendanceHandler := attendancefeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/attendance", attendancefeature.Routes(attendanceHandler))

	regroupHandler := regroupfeature.NewHandler(deps.MongoDatabase, sessionMgr, groupCache, regroupfeature.Options{
		TargetSize:    appCfg.DividerTargetSize,
		MinSize:       appCfg.DividerMinSize,
		MaxIterations: appCfg.DividerMaxIterations,
		AllowOversize: appCfg.DividerAllowOversize,
		KeepApart:     keepApart,
	}, logger)
	r.Mount("/groups", regroupfeature.Routes(regroupHandler))

	reportsHandler := reportsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/reports", reportsfeature.Routes(reportsHandler))

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

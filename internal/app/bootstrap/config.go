// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Koinonia.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: KOINONIA_MONGO_URI, KOINONIA_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "koinonia", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "koinonia-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Group divider tuning
	{Name: "divider_target_size", Default: 7, Desc: "Preferred group size"},
	{Name: "divider_min_size", Default: 4, Desc: "Hard minimum group size"},
	{Name: "divider_max_iterations", Default: 2000, Desc: "Gender balancer iteration cap"},
	{Name: "divider_allow_oversize", Default: false, Desc: "Permit groups past target+1 when members do not fit"},
	{Name: "divider_keep_apart", Default: "", Desc: `Pairs to keep in different groups, "Name One|Name Two;Name Three|Name Four"`},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for absolute links"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, KOINONIA_* for app), and
// command-line flags, merged with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "KOINONIA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		DividerTargetSize:    appValues.Int("divider_target_size"),
		DividerMinSize:       appValues.Int("divider_min_size"),
		DividerMaxIterations: appValues.Int("divider_max_iterations"),
		DividerAllowOversize: appValues.Bool("divider_allow_oversize"),
		DividerKeepApart:     appValues.String("divider_keep_apart"),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI and the divider size constraints are checked here so
// misconfiguration fails before any connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.DividerTargetSize < 2 {
		return fmt.Errorf("divider_target_size must be at least 2, got %d", appCfg.DividerTargetSize)
	}
	if appCfg.DividerMinSize < 1 {
		return fmt.Errorf("divider_min_size must be at least 1, got %d", appCfg.DividerMinSize)
	}
	if appCfg.DividerMinSize > appCfg.DividerTargetSize {
		return fmt.Errorf("divider_min_size (%d) cannot exceed divider_target_size (%d)",
			appCfg.DividerMinSize, appCfg.DividerTargetSize)
	}
	if appCfg.DividerMaxIterations < 0 {
		return fmt.Errorf("divider_max_iterations cannot be negative, got %d", appCfg.DividerMaxIterations)
	}
	if _, err := parseKeepApart(appCfg.DividerKeepApart); err != nil {
		return fmt.Errorf("divider_keep_apart: %w", err)
	}

	return nil
}

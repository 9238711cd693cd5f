// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging level, CORS); AppConfig
// is everything specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration. The app has no logins; sessions
	// only give each browser a stable identity for the grouping cache
	// and flash messages.
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: koinonia-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Group divider tuning
	DividerTargetSize    int    // Preferred group size
	DividerMinSize       int    // Hard minimum group size
	DividerMaxIterations int    // Gender balancer iteration cap
	DividerAllowOversize bool   // Permit groups past target+1 when members do not fit
	DividerKeepApart     string // Semicolon-separated "Name One|Name Two" pairs to keep in different groups

	// Base URL used in exported documents and absolute links
	BaseURL string // e.g., "http://localhost:3000"
}

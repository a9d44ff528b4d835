// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// handles framework-level settings like HTTP ports, TLS, logging, and
// CORS. Everything specific to LineageHub lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: lineagehub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Portrait storage configuration
	StorageType      string // Storage backend: only "local" is wired
	StorageLocalPath string // Local storage path (e.g., "./uploads/portraits")
	StorageLocalURL  string // URL prefix for serving stored files (e.g., "/files")

	// Audit logging destinations per category: "all", "db", "log", or "off"
	AuditLogAuth  string // authentication events (register, login, logout)
	AuditLogAdmin string // mutation events (trees, memberships, members)

	// Database operation timeouts (zero keeps the defaults)
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

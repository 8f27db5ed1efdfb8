package config // package config loads application configuration from environment variables

import (
    "log"  // log is used to report configuration errors and halt execution
    "os"   // os provides access to environment variables
    "time" // time parses connection-lifetime durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced at startup so a
// misconfigured deployment fails fast instead of at the first request.
type Config struct {
    Env               string // application environment (e.g. "dev", "prod")
    Port              string // HTTP port to listen on
    DBUser            string // database username
    DBPass            string // database password (optional)
    DBHost            string // database host address
    DBPort            string // database port number
    DBName            string // database name
    DBMaxOpenConns    int    // connection pool ceiling
    DBMaxIdleConns    int    // idle connections kept warm
    DBConnMaxLifetime time.Duration // recycle age for pooled connections
    JWTSecret         string // secret used to verify access tokens minted by the identity service
    TicketSecret      string // secret keying the ticket payload codec (required in prod)
    ArtifactBaseURL   string // blob-store ingest URL for ticket images (empty selects the in-memory store)
    ArtifactPublicURL string // public URL ticket images are served from (defaults to ArtifactBaseURL)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  TicketSecret is
// deliberately not enforced here: the ticket codec decides whether the
// development fallback key is acceptable for the current environment.
func Load() Config {
    return Config{
        Env:               must("APP_ENV"),                  // environment (dev/test/prod)
        Port:              must("APP_PORT"),                 // port to bind the HTTP server
        DBUser:            must("DB_USER"),                  // database user
        DBPass:            os.Getenv("DB_PASS"),             // database password (empty allowed)
        DBHost:            must("DB_HOST"),                  // database host
        DBPort:            must("DB_PORT"),                  // database port
        DBName:            must("DB_NAME"),                  // database name
        DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),  // pool ceiling
        DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),  // idle pool size
        DBConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
        JWTSecret:         must("JWT_SECRET"),               // secret for verifying bearer tokens
        TicketSecret:      os.Getenv("TICKET_SECRET"),       // ticket payload encryption secret
        ArtifactBaseURL:   os.Getenv("ARTIFACT_BASE_URL"),   // blob-store ingest endpoint
        ArtifactPublicURL: os.Getenv("ARTIFACT_PUBLIC_URL"), // public serving endpoint
    }
}

// IsProd reports whether the service runs with production guarantees;
// the ticket codec's fallback key is refused in this mode.
func (c Config) IsProd() bool { return c.Env == "prod" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

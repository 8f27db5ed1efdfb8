package config

import "time"

// AvailabilityCacheConfig controls the Redis read-through cache in front
// of event availability lookups.  When Enabled is false or no Redis
// client could be constructed, handlers fall back to the database on
// every request.  The reservation engine deletes cache entries whenever
// it consumes seats, so the TTL only bounds staleness across processes
// that bypass the engine.
type AvailabilityCacheConfig struct {
    Enabled bool
    TTL     time.Duration
}

// LoadAvailabilityCacheConfig reads environment variables to build an
// AvailabilityCacheConfig.  Defaults are used when variables are unset.
func LoadAvailabilityCacheConfig() AvailabilityCacheConfig {
    return AvailabilityCacheConfig{
        Enabled: envBool("CACHE_ENABLED", true),
        TTL:     envDur("CACHE_TTL", 30*time.Second),
    }
}

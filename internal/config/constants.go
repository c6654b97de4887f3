package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Client assertion lifetime demanded by the eSignet token endpoint
const ClientAssertionTTL = 300 * time.Second

// How long an already-consumed authorization code keeps returning its
// cached exchange result
const ConsumedCodeTTL = 10 * time.Minute

// Request body limit; batches may carry base64-encoded photos
const MaxRequestBodyBytes = 5 << 20

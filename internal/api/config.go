package api

import "time"

// Config holds HTTP server configuration.
type Config struct {
	Port              int
	AllowedOrigins    []string      // CORS allowed origins (empty = allow all)
	RateLimitRequests int           // Requests per minute per client (0 = disabled)
	RateLimitBurst    int           // Burst size
	ShutdownTimeout   time.Duration // Grace period for in-flight requests
	Version           string        // Reported by /healthz
}

package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one route pattern.
type EndpointConfig struct {
	Path   string        // route pattern, "{name}" segments match any value
	Method string        // HTTP method
	Limit  int           // requests per window
	Window time.Duration // refill window
	Burst  int           // bucket capacity, defaults to Limit
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvPositiveDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvPositiveDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTimeout:     getEnvPositiveDuration("RATE_LIMIT_IDLE_TIMEOUT", time.Hour),
		Whitelist:       parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route limits of the wizard API.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Session creation and saves touch Postgres and Kafka.
		{Path: "/wizard/sessions", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/wizard/sessions/{id}/save", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/wizard/sessions/{id}/uploads/{kind}", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},

		// Form edits are frequent while typing.
		{Path: "/wizard/sessions/{id}/fields", Method: "PATCH", Limit: 300, Window: time.Minute, Burst: 60},
		{Path: "/wizard/sessions/{id}/next", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/wizard/sessions/", Method: "POST", Limit: 120, Window: time.Minute, Burst: 30},
		{Path: "/wizard/sessions/", Method: "PUT", Limit: 120, Window: time.Minute, Burst: 30},
		{Path: "/wizard/sessions/", Method: "DELETE", Limit: 120, Window: time.Minute, Burst: 30},
	}
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvPositiveDuration is getEnvDuration that also falls back to the
// default for zero or negative values.
func getEnvPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	if d := getEnvDuration(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	ips := strings.Split(list, ",")
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}

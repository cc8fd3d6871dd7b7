package config

// Environment variable names shared by Load and tests.
const (
	EnvAppEnv          = "BAZARLINE_APP_ENV"
	EnvPort            = "BAZARLINE_APP_PORT"
	EnvRedisURL        = "BAZARLINE_REDIS_URL"
	EnvJWTSecret       = "BAZARLINE_JWT_SECRET"
	EnvJWTIssuer       = "BAZARLINE_JWT_ISSUER"
	EnvUpstreamBaseURL = "BAZARLINE_UPSTREAM_BASE_URL"
	EnvDeliveryFee     = "BAZARLINE_CHECKOUT_DELIVERY_FEE"
	EnvPollerInterval  = "BAZARLINE_POLLER_INTERVAL"
	EnvManagerTimeout  = "BAZARLINE_MANAGER_CHECK_TIMEOUT"
)

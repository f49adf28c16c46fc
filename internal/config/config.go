package config

import (
	"os"
	"strconv"
	"time"
)

// CM360Config carries Campaign Manager 360 API credentials. Platform clients
// receive this struct explicitly; they never read process environment.
type CM360Config struct {
	OAuthToken string
	ProfileID  string
	NetworkID  string
}

// Configured reports whether the client has enough credentials to make calls.
func (c CM360Config) Configured() bool {
	return c.OAuthToken != "" && c.ProfileID != ""
}

// MetaConfig carries Meta Graph API credentials.
type MetaConfig struct {
	AccessToken string
	AdAccountID string
	PixelID     string
}

func (c MetaConfig) Configured() bool {
	return c.AccessToken != "" && c.AdAccountID != ""
}

// TikTokConfig carries TikTok Business API credentials.
type TikTokConfig struct {
	AccessToken  string
	AdvertiserID string
}

func (c TikTokConfig) Configured() bool {
	return c.AccessToken != "" && c.AdvertiserID != ""
}

// KochavaConfig carries Kochava measurement API credentials.
type KochavaConfig struct {
	APIKey  string
	AppGUID string
}

func (c KochavaConfig) Configured() bool {
	return c.APIKey != ""
}

// AlertingConfig carries webhook destinations for the notifier. Empty URLs
// degrade to console fallback output rather than erroring.
type AlertingConfig struct {
	SlackWebhookURL string
	TeamsWebhookURL string
	WebhookSecret   string
	WebhookTimeout  time.Duration
	DedupeTTL       time.Duration
}

// Config holds application configuration derived from environment variables.
type Config struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RedisAddr       string
	ClickHouseDSN   string
	PostgresDSN     string
	DebugTrace      bool
	ReloadInterval  time.Duration
	ServiceName     string
	DefaultPlatform string

	// Pipeline scheduling
	PipelineEnabled   bool
	PipelineInterval  time.Duration
	SLACheckInterval  time.Duration
	AutoAssignEnabled bool

	// Outbound platform call throttling
	RateLimitEnabled    bool
	RateLimitCapacity   int
	RateLimitRefillRate int

	// External collaborator credentials
	CM360   CM360Config
	Meta    MetaConfig
	TikTok  TikTokConfig
	Kochava KochavaConfig
	Alerts  AlertingConfig

	// Database connection pooling configuration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	// ClickHouse connection pooling configuration
	CHMaxOpenConns    int
	CHMaxIdleConns    int
	CHConnMaxLifetime time.Duration
	CHConnMaxIdleTime time.Duration
	// Tracing configuration
	TracingEnabled    bool
	TempoEndpoint     string
	TracingSampleRate float64
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent. This is the only place the process
// environment is read; everything downstream takes explicit structs.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8790")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 10*time.Second)
	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default?async_insert=1&wait_for_async_insert=1")
	cfg.PostgresDSN = getenv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable")
	cfg.DebugTrace = envBool("DEBUG_TRACE", false)
	// default to 30 seconds between automatic reloads
	cfg.ReloadInterval = envDuration("RELOAD_INTERVAL", 30*time.Second)
	cfg.ServiceName = getenv("SERVICE_NAME", "openadops")
	cfg.DefaultPlatform = getenv("DEFAULT_PLATFORM", "DV360")

	cfg.PipelineEnabled = envBool("PIPELINE_ENABLED", true)
	cfg.PipelineInterval = envDuration("PIPELINE_INTERVAL", 5*time.Minute)
	cfg.SLACheckInterval = envDuration("SLA_CHECK_INTERVAL", 15*time.Minute)
	cfg.AutoAssignEnabled = envBool("AUTO_ASSIGN_ENABLED", false)

	cfg.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimitCapacity = envInt("RATE_LIMIT_CAPACITY", 100)
	cfg.RateLimitRefillRate = envInt("RATE_LIMIT_REFILL_RATE", 10)

	cfg.CM360 = CM360Config{
		OAuthToken: getenv("CM360_OAUTH_TOKEN", ""),
		ProfileID:  getenv("CM360_PROFILE_ID", ""),
		NetworkID:  getenv("CM360_NETWORK_ID", ""),
	}
	cfg.Meta = MetaConfig{
		AccessToken: getenv("META_ACCESS_TOKEN", ""),
		AdAccountID: getenv("META_AD_ACCOUNT_ID", ""),
		PixelID:     getenv("META_PIXEL_ID", ""),
	}
	cfg.TikTok = TikTokConfig{
		AccessToken:  getenv("TIKTOK_ACCESS_TOKEN", ""),
		AdvertiserID: getenv("TIKTOK_ADVERTISER_ID", ""),
	}
	cfg.Kochava = KochavaConfig{
		APIKey:  getenv("KOCHAVA_API_KEY", ""),
		AppGUID: getenv("KOCHAVA_APP_GUID", ""),
	}
	cfg.Alerts = AlertingConfig{
		SlackWebhookURL: getenv("SLACK_WEBHOOK_URL", ""),
		TeamsWebhookURL: getenv("TEAMS_WEBHOOK_URL", ""),
		WebhookSecret:   getenv("WEBHOOK_SECRET", ""),
		WebhookTimeout:  envDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		DedupeTTL:       envDuration("ALERT_DEDUPE_TTL", 6*time.Hour),
	}

	// Database connection pooling configuration
	cfg.DBMaxOpenConns = envInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = envInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.DBConnMaxIdleTime = envDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)

	// ClickHouse connection pooling configuration
	// Default to higher values than PostgreSQL due to async insert patterns and high event volume
	cfg.CHMaxOpenConns = envInt("CH_MAX_OPEN_CONNS", 100)
	cfg.CHMaxIdleConns = envInt("CH_MAX_IDLE_CONNS", 25)
	cfg.CHConnMaxLifetime = envDuration("CH_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.CHConnMaxIdleTime = envDuration("CH_CONN_MAX_IDLE_TIME", 1*time.Minute)

	// Tracing configuration
	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TempoEndpoint = getenv("TEMPO_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0) // Default to 100% sampling for dev

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Session   SessionSettings   `mapstructure:"session"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Login     LoginSettings     `mapstructure:"login"`
	Storage   StorageSettings   `mapstructure:"storage"`
	YouTube   YouTubeSettings   `mapstructure:"youtube"`
	Catalog   CatalogSettings   `mapstructure:"catalog"`
	CORS      CORSSettings      `mapstructure:"cors"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// IsProduction gates cookie Secure and gin release mode.
func (a AppSettings) IsProduction() bool {
	return a.Env == "production"
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// DSN renders the pgx connection string.
func (p PostgresSettings) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

// RedisSettings configure the optional shared attempt store.
type RedisSettings struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// SessionSettings configure token signing and cookie lifetime.
type SessionSettings struct {
	Secret       string `mapstructure:"secret"`
	DurationDays int    `mapstructure:"duration_days"`
}

func (s SessionSettings) Duration() time.Duration {
	days := s.DurationDays
	if days <= 0 {
		days = 14
	}
	return time.Duration(days) * 24 * time.Hour
}

// MaxAgeSeconds is the cookie max-age matching the token expiry.
func (s SessionSettings) MaxAgeSeconds() int {
	return int(s.Duration() / time.Second)
}

// RateLimitSettings configure the fixed-window login limiter.
type RateLimitSettings struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	Window        time.Duration `mapstructure:"window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	Store         string        `mapstructure:"store"`
}

// LoginSettings hold knobs of the authentication endpoint itself.
type LoginSettings struct {
	// FailureDelay decelerates brute-force attempts; applied uniformly to
	// every credential-related failure.
	FailureDelay time.Duration `mapstructure:"failure_delay"`
}

// StorageSettings configure the S3-compatible avatar bucket.
type StorageSettings struct {
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Bucket        string `mapstructure:"bucket"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type YouTubeSettings struct {
	APIKey    string        `mapstructure:"api_key"`
	ChannelID string        `mapstructure:"channel_id"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type CatalogSettings struct {
	CacheFile      string        `mapstructure:"cache_file"`
	MockCacheFile  string        `mapstructure:"mock_cache_file"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"`
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("ABA")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.enabled",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"session.secret",
		"session.duration_days",
		"rate_limit.max_attempts",
		"rate_limit.window",
		"rate_limit.sweep_interval",
		"rate_limit.store",
		"login.failure_delay",
		"storage.region",
		"storage.endpoint",
		"storage.access_key",
		"storage.secret_key",
		"storage.bucket",
		"storage.public_base_url",
		"youtube.api_key",
		"youtube.channel_id",
		"youtube.cache_ttl",
		"catalog.cache_file",
		"catalog.mock_cache_file",
		"catalog.reload_interval",
		"cors.allowed_origins",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "archivio-live-lezioni")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "aba")
	v.SetDefault("postgres.password", "aba_password")
	v.SetDefault("postgres.database", "aba")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.duration_days", 14)

	v.SetDefault("rate_limit.max_attempts", 5)
	v.SetDefault("rate_limit.window", "15m")
	v.SetDefault("rate_limit.sweep_interval", "30m")
	v.SetDefault("rate_limit.store", "memory")

	v.SetDefault("login.failure_delay", "1s")

	v.SetDefault("storage.region", "eu-central-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", "avatars")
	v.SetDefault("storage.public_base_url", "")

	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.channel_id", "UC18Pm8LKXwtK2uUSoif5RVw")
	v.SetDefault("youtube.cache_ttl", "60s")

	v.SetDefault("catalog.cache_file", "./data/videos_cache.json")
	v.SetDefault("catalog.mock_cache_file", "./data/videos_cache_mock.json")
	v.SetDefault("catalog.reload_interval", "60s")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "ABA_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

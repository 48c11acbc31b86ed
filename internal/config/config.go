package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Geocoder  GeocoderConfig
	SMTP      SMTPConfig
	S3        S3Config
	Scheduler SchedulerConfig
}

type AppConfig struct {
	AppName        string
	Environment    string
	HTTPPort       string
	WSPort         string
	UploadDir      string
	MaxFileUpload  int64
	ResumeStorage  string
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type JWTConfig struct {
	Secret        string
	ExpiresIn     time.Duration
	CookieExpires time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type GeocoderConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

type S3Config struct {
	Bucket          string
	Region          string
	BaseEndpoint    string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

type SchedulerConfig struct {
	TokenSweepSpec string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, EnvProduction)
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// Load reads the process environment. A .env file in the working directory, when present,
// fills variables that are not already set.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}
	optInt := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		d, err := parseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}

	cfg.App = AppConfig{
		AppName:        req("APP_NAME"),
		Environment:    strings.ToLower(req("APP_ENV")),
		HTTPPort:       req("HTTP_PORT"),
		WSPort:         opt("WS_PORT"),
		UploadDir:      optDefault("UPLOAD_DIR", "./public/uploads"),
		MaxFileUpload:  int64(optInt("MAX_FILE_UPLOAD", 5*1024*1024)),
		ResumeStorage:  strings.ToLower(optDefault("RESUME_STORAGE", StorageLocal)),
		RequestTimeout: optDuration("REQUEST_TIMEOUT", 10*time.Second),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             optDefault("DB_SSL_MODE", "disable"),
		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", 0),
	}

	cfg.JWT = JWTConfig{
		Secret:        req("JWT_SECRET"),
		ExpiresIn:     optDuration("JWT_EXPIRES_TIME", 7*24*time.Hour),
		CookieExpires: time.Duration(optInt("COOKIE_EXPIRES_TIME", 7)) * 24 * time.Hour,
	}

	cfg.Redis = RedisConfig{
		Host:     optDefault("REDIS_HOST", "localhost"),
		Port:     optDefault("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      time.Duration(optInt("REDIS_TTL", 600)) * time.Second,
	}

	cfg.RateLimit = RateLimitConfig{
		Max:    optInt("RATE_LIMIT_MAX", 100),
		Window: optDuration("RATE_LIMIT_WINDOW", 10*time.Minute),
	}

	cfg.Geocoder = GeocoderConfig{
		Provider: strings.ToLower(optDefault("GEOCODER_PROVIDER", "mapquest")),
		APIKey:   opt("GEOCODER_API_KEY"),
		BaseURL:  optDefault("GEOCODER_BASE_URL", "https://www.mapquestapi.com"),
	}

	cfg.SMTP = SMTPConfig{
		Host:      opt("SMTP_HOST"),
		Port:      optInt("SMTP_PORT", 587),
		Username:  opt("SMTP_EMAIL"),
		Password:  opt("SMTP_PASSWORD"),
		FromName:  optDefault("SMTP_FROM_NAME", "Jobboard"),
		FromEmail: optDefault("SMTP_FROM_EMAIL", "noreply@jobboard.local"),
	}

	cfg.S3 = S3Config{
		Bucket:          opt("S3_BUCKET"),
		Region:          optDefault("S3_REGION", "us-east-1"),
		BaseEndpoint:    opt("S3_BASE_ENDPOINT"),
		AccessKeyID:     opt("S3_ACCESS_KEY_ID"),
		SecretAccessKey: opt("S3_SECRET_ACCESS_KEY"),
		Prefix:          optDefault("S3_PREFIX", "resumes/"),
	}

	cfg.Scheduler = SchedulerConfig{
		TokenSweepSpec: optDefault("TOKEN_SWEEP_SPEC", "@every 1h"),
	}

	if cfg.App.Environment != "" && cfg.App.Environment != EnvDevelopment && cfg.App.Environment != EnvProduction {
		invalid = append(invalid, "APP_ENV")
	}
	if cfg.App.ResumeStorage != StorageLocal && cfg.App.ResumeStorage != StorageS3 {
		invalid = append(invalid, "RESUME_STORAGE")
	}
	if cfg.App.ResumeStorage == StorageS3 && cfg.S3.Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// parseDuration accepts Go durations plus a "<n>d" day suffix ("7d").
func parseDuration(raw string) (time.Duration, error) {
	if strings.HasSuffix(raw, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(raw)
}

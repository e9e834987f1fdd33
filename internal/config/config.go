package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port" env:"SERVER_PORT"`
		Mode            string        `yaml:"mode" env:"SERVER_MODE"`
		PublicURL       string        `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
		CORSOrigins     []string      `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string        `yaml:"host" env:"DB_HOST"`
		Port            string        `yaml:"port" env:"DB_PORT"`
		User            string        `yaml:"user" env:"DB_USER"`
		Password        string        `yaml:"password" env:"DB_PASSWORD"`
		DBName          string        `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxConns        int           `yaml:"max_conns" env:"DB_MAX_CONNS"`
		MinConns        int           `yaml:"min_conns" env:"DB_MIN_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		AutoMigrate     bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string        `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  time.Duration `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration time.Duration `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string        `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level        string `yaml:"level" env:"LOG_LEVEL"`
		Format       string `yaml:"format" env:"LOG_FORMAT"`
		RollbarToken string `yaml:"rollbar_token" env:"ROLLBAR_TOKEN"`
	} `yaml:"logging"`

	Cache struct {
		Driver        string        `yaml:"driver" env:"CACHE_DRIVER"`
		Size          int           `yaml:"size" env:"CACHE_SIZE"`
		DefaultTTL    time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL"`
		RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
		RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
		RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
		KeyPrefix     string        `yaml:"key_prefix" env:"CACHE_KEY_PREFIX"`
	} `yaml:"cache"`

	Session struct {
		CacheTTL time.Duration `yaml:"cache_ttl" env:"SESSION_CACHE_TTL"`
	} `yaml:"session"`

	Mail struct {
		Provider       string `yaml:"provider" env:"MAIL_PROVIDER"`
		SMTPHost       string `yaml:"smtp_host" env:"SMTP_HOST"`
		SMTPPort       int    `yaml:"smtp_port" env:"SMTP_PORT"`
		SMTPUsername   string `yaml:"smtp_username" env:"SMTP_USERNAME"`
		SMTPPassword   string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
		SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
		FromAddress    string `yaml:"from_address" env:"MAIL_FROM_ADDRESS"`
		FromName       string `yaml:"from_name" env:"MAIL_FROM_NAME"`
		FrontendURL    string `yaml:"frontend_url" env:"FRONTEND_URL"`
	} `yaml:"mail"`

	SMS struct {
		Enabled          bool   `yaml:"enabled" env:"SMS_ENABLED"`
		TwilioAccountSID string `yaml:"twilio_account_sid" env:"TWILIO_ACCOUNT_SID"`
		TwilioAuthToken  string `yaml:"twilio_auth_token" env:"TWILIO_AUTH_TOKEN"`
		FromNumber       string `yaml:"from_number" env:"TWILIO_FROM_NUMBER"`
	} `yaml:"sms"`

	Storage struct {
		Driver            string `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalPath         string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		S3Bucket          string `yaml:"s3_bucket" env:"S3_BUCKET"`
		S3Region          string `yaml:"s3_region" env:"S3_REGION"`
		S3AccessKeyID     string `yaml:"s3_access_key_id" env:"S3_ACCESS_KEY_ID"`
		S3SecretAccessKey string `yaml:"s3_secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
		S3Endpoint        string `yaml:"s3_endpoint" env:"S3_ENDPOINT"`
		S3PublicURL       string `yaml:"s3_public_url" env:"S3_PUBLIC_URL"`
		MaxAvatarBytes    int64  `yaml:"max_avatar_bytes" env:"STORAGE_MAX_AVATAR_BYTES"`
	} `yaml:"storage"`

	RateLimit struct {
		LoginRPS   float64 `yaml:"login_rps" env:"RATELIMIT_LOGIN_RPS"`
		LoginBurst int     `yaml:"login_burst" env:"RATELIMIT_LOGIN_BURST"`
	} `yaml:"ratelimit"`

	Jobs struct {
		Enabled          bool          `yaml:"enabled" env:"JOBS_ENABLED"`
		SessionPurgeSpec string        `yaml:"session_purge_spec" env:"JOBS_SESSION_PURGE_SPEC"`
		ResetTokenPurge  string        `yaml:"reset_token_purge_spec" env:"JOBS_RESET_TOKEN_PURGE_SPEC"`
		SessionRetention time.Duration `yaml:"session_retention" env:"JOBS_SESSION_RETENTION"`
	} `yaml:"jobs"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file, a .env file and environment variables.
// Precedence: environment > .env > YAML file > defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// godotenv.Load never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.PublicURL = "http://localhost:8080"
	config.Server.CORSOrigins = []string{"*"}
	config.Server.ReadTimeout = 15 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.ShutdownTimeout = 10 * time.Second

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "schooldesk"
	config.Database.SSLMode = "disable"
	config.Database.MaxConns = 20
	config.Database.MinConns = 2
	config.Database.ConnMaxLifetime = time.Hour
	config.Database.AutoMigrate = true

	// JWT defaults
	config.JWT.AccessTokenExpiration = 15 * time.Minute
	config.JWT.RefreshTokenExpiration = 7 * 24 * time.Hour
	config.JWT.Issuer = "schooldesk"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Cache.Driver = "memory"
	config.Cache.Size = 10000
	config.Cache.DefaultTTL = 5 * time.Minute
	config.Cache.RedisAddr = "localhost:6379"
	config.Cache.KeyPrefix = "schooldesk:"

	config.Session.CacheTTL = 5 * time.Minute

	config.Mail.Provider = "console"
	config.Mail.SMTPPort = 587
	config.Mail.FromAddress = "no-reply@schooldesk.local"
	config.Mail.FromName = "SchoolDesk"
	config.Mail.FrontendURL = "http://localhost:3000"

	config.Storage.Driver = "local"
	config.Storage.LocalPath = "./uploads"
	config.Storage.MaxAvatarBytes = 5 << 20

	config.RateLimit.LoginRPS = 0.2
	config.RateLimit.LoginBurst = 5

	config.Jobs.Enabled = true
	config.Jobs.SessionPurgeSpec = "@hourly"
	config.Jobs.ResetTokenPurge = "@hourly"
	config.Jobs.SessionRetention = 7 * 24 * time.Hour
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if config.JWT.AccessTokenExpiration <= 0 || config.JWT.RefreshTokenExpiration <= 0 {
		return fmt.Errorf("JWT token expirations must be positive")
	}

	switch config.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache driver %q", config.Cache.Driver)
	}

	switch config.Storage.Driver {
	case "local":
	case "s3":
		if config.Storage.S3Bucket == "" || config.Storage.S3Region == "" {
			return fmt.Errorf("s3 storage requires bucket and region")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	switch config.Mail.Provider {
	case "smtp", "sendgrid", "console":
	default:
		return fmt.Errorf("unknown mail provider %q", config.Mail.Provider)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetMigrationURL returns the connection string in the form golang-migrate's pgx/v5 driver expects
func (c *Config) GetMigrationURL() string {
	return "pgx5" + strings.TrimPrefix(c.GetPostgresConnectionString(), "postgres")
}

// IsProduction reports whether the server runs in release mode
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production" || c.Server.Mode == "release"
}

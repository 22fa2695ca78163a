package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Application holds all the application-wide dependencies.
type Application struct {
	Config         Config
	Logger         zerolog.Logger
	DB             *pgxpool.Pool
	TracerProvider *trace.TracerProvider
}

// Config holds all the configuration variables for the application.
type Config struct {
	Port                 int      `mapstructure:"PORT"`
	App_Env              string   `mapstructure:"APP_ENV"`
	App_Secret           string   `mapstructure:"APP_SECRET"`
	CORS_Allowed_Origins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	DatabaseURL          string   `mapstructure:"DATABASE_URL"`
	DbHost               string   `mapstructure:"DB_HOST"`
	DbPort               int      `mapstructure:"DB_PORT"`
	DbUser               string   `mapstructure:"DB_USER"`
	DbPassword           string   `mapstructure:"DB_PASSWORD"`
	DbName               string   `mapstructure:"DB_NAME"`
	DbSslMode            string   `mapstructure:"DB_SSL_MODE"`
	DbMaxConns           int      `mapstructure:"DB_MAX_CONNS"`
	DbMinConns           int      `mapstructure:"DB_MIN_CONNS"`
	DbQueryTimeout       int      `mapstructure:"DB_QUERY_TIMEOUT_SECONDS"`
	LogLevel             string   `mapstructure:"LOG_LEVEL"`
	RequestTimeout       int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	JWTExpirationHours   int      `mapstructure:"JWT_EXPIRATION_HOURS"`
	BcryptCost           int      `mapstructure:"BCRYPT_COST"`
	DefaultUserEmail     string   `mapstructure:"DEFAULT_USER_EMAIL"`
	DefaultUserPassword  string   `mapstructure:"DEFAULT_USER_PASSWORD"`
	OtelEndpoint         string   `mapstructure:"OTEL_EXPORTER_ENDPOINT"`
	// Photo storage
	StorageBackend  string `mapstructure:"STORAGE_BACKEND"`
	UploadDir       string `mapstructure:"UPLOAD_DIR"`
	UploadURLPrefix string `mapstructure:"UPLOAD_URL_PREFIX"`
	UploadMaxBytes  int64  `mapstructure:"UPLOAD_MAX_BYTES"`
	S3Bucket        string `mapstructure:"S3_BUCKET"`
	S3Region        string `mapstructure:"S3_REGION"`
	S3Endpoint      string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey     string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey     string `mapstructure:"S3_SECRET_KEY"`
	S3PublicBaseURL string `mapstructure:"S3_PUBLIC_BASE_URL"`
}

type ContextKey string

const (
	UserIDKey    = ContextKey("userID")
	RequestIDKey = ContextKey("request_id")
)

// AuthCookieName is the cookie login sets and the auth middleware falls back to.
const AuthCookieName = "jwt_token"

// Load reads configuration from secrets, environment variables, or defaults.
func Load() (config Config, err error) {
	// 1. Determine Environment First
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	viper.Set("APP_ENV", env)

	// 2. Set Defaults based on Environment
	if env == "production" {
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
		viper.SetDefault("JWT_EXPIRATION_HOURS", 24)
	} else {
		viper.SetDefault("LOG_LEVEL", "debug")
		viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 60)
		viper.SetDefault("JWT_EXPIRATION_HOURS", 168)
		viper.SetDefault("DEFAULT_USER_EMAIL", "admin@example.com")
		viper.SetDefault("DEFAULT_USER_PASSWORD", "admin123!")
	}

	// Universal Defaults
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIN_CONNS", 2)
	viper.SetDefault("DB_QUERY_TIMEOUT_SECONDS", 5)
	viper.SetDefault("BCRYPT_COST", 10)
	viper.SetDefault("STORAGE_BACKEND", "local")
	viper.SetDefault("UPLOAD_DIR", "./uploads/profile")
	viper.SetDefault("UPLOAD_URL_PREFIX", "/uploads/profile")
	viper.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	viper.SetDefault("S3_REGION", "auto")

	// 3. Conditional Loading Logic
	if env == "development" {
		// Later files win; the working directory beats its parent.
		for _, path := range []string{"../.env", ".env"} {
			_ = mergeEnvFile(path)
		}
	} else {
		loadSecrets(secretsDir)
	}

	// 4. AutomaticEnv (System Env Vars override everything loaded so far)
	viper.AutomaticEnv()

	// 5. Explicit bindings so keys without defaults still reach Unmarshal
	bindExplicitEnvs()

	// 6. Unmarshal
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// 7. Post-Load Logic
	if config.DatabaseURL == "" {
		config.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.DbUser, config.DbPassword, config.DbHost, config.DbPort, config.DbName, config.DbSslMode,
		)
	}

	return
}

const secretsDir = "/run/secrets"

// secretFiles maps config keys to Docker secret file names.
var secretFiles = map[string]string{
	"APP_SECRET":    "app_secret",
	"DATABASE_URL":  "database_url",
	"DB_HOST":       "db_host",
	"DB_PORT":       "db_port",
	"DB_USER":       "db_user",
	"DB_PASSWORD":   "db_password",
	"DB_NAME":       "db_name",
	"DB_SSL_MODE":   "db_ssl_mode",
	"S3_ACCESS_KEY": "s3_access_key",
	"S3_SECRET_KEY": "s3_secret_key",
}

func loadSecrets(dir string) {
	for key, name := range secretFiles {
		if value, ok := readSecret(dir, name); ok {
			viper.Set(key, value)
		}
	}
}

// readSecret accepts the file name in lower or upper case. Empty files are ignored.
func readSecret(dir, name string) (string, bool) {
	for _, candidate := range []string{name, strings.ToUpper(name)} {
		content, err := os.ReadFile(filepath.Join(dir, candidate))
		if err != nil {
			continue
		}
		if value := strings.TrimSpace(string(content)); value != "" {
			return value, true
		}
	}
	return "", false
}

// mergeEnvFile layers a KEY=VALUE file under the process environment.
func mergeEnvFile(path string) error {
	fileCfg := viper.New()
	fileCfg.SetConfigFile(path)
	fileCfg.SetConfigType("env")
	if err := fileCfg.ReadInConfig(); err != nil {
		return err
	}
	return viper.MergeConfigMap(fileCfg.AllSettings())
}

var envKeys = []string{
	"APP_SECRET", "DATABASE_URL", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"OTEL_EXPORTER_ENDPOINT", "S3_BUCKET", "S3_ENDPOINT", "S3_ACCESS_KEY",
	"S3_SECRET_KEY", "S3_PUBLIC_BASE_URL", "DEFAULT_USER_EMAIL", "DEFAULT_USER_PASSWORD",
}

func bindExplicitEnvs() {
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}
}

// Validate performs comprehensive configuration validation
func (c *Config) Validate() error {
	var errors []string

	if c.App_Secret == "" {
		errors = append(errors, "APP_SECRET is required")
	} else if len(c.App_Secret) < 32 {
		errors = append(errors, "APP_SECRET must be at least 32 characters long")
	}

	if c.DatabaseURL == "" {
		errors = append(errors, "DATABASE_URL is required")
	}

	if c.JWTExpirationHours <= 0 {
		errors = append(errors, "JWT_EXPIRATION_HOURS must be positive")
	}

	switch c.StorageBackend {
	case "local":
		if c.UploadDir == "" {
			errors = append(errors, "UPLOAD_DIR is required for the local storage backend")
		}
	case "s3":
		if c.S3Bucket == "" {
			errors = append(errors, "S3_BUCKET is required for the s3 storage backend")
		}
		if c.S3PublicBaseURL == "" {
			errors = append(errors, "S3_PUBLIC_BASE_URL is required for the s3 storage backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App_Env == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App_Env == "production"
}

// GetJWTExpiration returns the JWT expiration duration
func (c *Config) GetJWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

// GetRequestTimeout returns the request timeout duration
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetQueryTimeout bounds a single database round trip
func (c *Config) GetQueryTimeout() time.Duration {
	if c.DbQueryTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.DbQueryTimeout) * time.Second
}

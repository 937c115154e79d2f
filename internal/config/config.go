package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"gstreco/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	Reconcile ReconcileConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis address is configured.
func (r *RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// JWTConfig holds access-token validation settings.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Store and lock backends.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	LockRedis     = "redis"
	LockLocal     = "local"
)

// ReconcileConfig holds the service-level reconciliation defaults.
type ReconcileConfig struct {
	DefaultCriteria       []domain.Criterion `mapstructure:"default_criteria"`
	TaxableValueTolerance float64            `mapstructure:"taxable_value_tolerance"`
	TotalTaxTolerance     float64            `mapstructure:"total_tax_tolerance"`
	IncludeReverseCharge  bool               `mapstructure:"include_reverse_charge"`
	CarryForwardStore     string             `mapstructure:"carry_forward_store"`
	LockProvider          string             `mapstructure:"lock_provider"`
	LockTTL               time.Duration      `mapstructure:"lock_ttl"`
}

// MatchConfig returns the default match configuration for new sessions.
func (r *ReconcileConfig) MatchConfig() domain.MatchConfig {
	criteria := make([]domain.Criterion, len(r.DefaultCriteria))
	copy(criteria, r.DefaultCriteria)
	return domain.MatchConfig{
		Criteria: criteria,
		Tolerances: domain.Tolerances{
			TaxableValue: r.TaxableValueTolerance,
			TotalTax:     r.TotalTaxTolerance,
		},
	}
}

// Load reads configuration from environment variables with the GSTRECO_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GSTRECO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 20)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "gstreco")
	v.SetDefault("db.password", "gstreco_secret")
	v.SetDefault("db.name", "gstreco_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Redis defaults (empty addr disables redis)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "gstreco")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "gstreco-exports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Reconcile defaults
	v.SetDefault("reconcile.default_criteria", "")
	v.SetDefault("reconcile.taxable_value_tolerance", domain.DefaultTaxableValueTolerance)
	v.SetDefault("reconcile.total_tax_tolerance", domain.DefaultTotalTaxTolerance)
	v.SetDefault("reconcile.include_reverse_charge", true)
	v.SetDefault("reconcile.carry_forward_store", StorePostgres)
	v.SetDefault("reconcile.lock_provider", LockLocal)
	v.SetDefault("reconcile.lock_ttl", "30s")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "GSTRECO_SERVER_PORT",
		"server.read_timeout":               "GSTRECO_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "GSTRECO_SERVER_WRITE_TIMEOUT",
		"server.environment":                "GSTRECO_SERVER_ENVIRONMENT",
		"server.max_upload_mb":              "GSTRECO_SERVER_MAX_UPLOAD_MB",
		"db.host":                           "GSTRECO_DB_HOST",
		"db.port":                           "GSTRECO_DB_PORT",
		"db.user":                           "GSTRECO_DB_USER",
		"db.password":                       "GSTRECO_DB_PASSWORD",
		"db.name":                           "GSTRECO_DB_NAME",
		"db.sslmode":                        "GSTRECO_DB_SSLMODE",
		"db.max_open":                       "GSTRECO_DB_MAX_OPEN",
		"db.max_idle":                       "GSTRECO_DB_MAX_IDLE",
		"redis.addr":                        "GSTRECO_REDIS_ADDR",
		"redis.password":                    "GSTRECO_REDIS_PASSWORD",
		"redis.db":                          "GSTRECO_REDIS_DB",
		"jwt.secret":                        "GSTRECO_JWT_SECRET",
		"jwt.issuer":                        "GSTRECO_JWT_ISSUER",
		"s3.region":                         "GSTRECO_S3_REGION",
		"s3.bucket":                         "GSTRECO_S3_BUCKET",
		"s3.endpoint":                       "GSTRECO_S3_ENDPOINT",
		"s3.access_key":                     "GSTRECO_S3_ACCESS_KEY",
		"s3.secret_key":                     "GSTRECO_S3_SECRET_KEY",
		"s3.presign_expiry":                 "GSTRECO_S3_PRESIGN_EXPIRY",
		"log.level":                         "GSTRECO_LOG_LEVEL",
		"log.format":                        "GSTRECO_LOG_FORMAT",
		"cors.allowed_origins":              "GSTRECO_CORS_ALLOWED_ORIGINS",
		"reconcile.default_criteria":        "GSTRECO_RECONCILE_DEFAULT_CRITERIA",
		"reconcile.taxable_value_tolerance": "GSTRECO_RECONCILE_TAXABLE_VALUE_TOLERANCE",
		"reconcile.total_tax_tolerance":     "GSTRECO_RECONCILE_TOTAL_TAX_TOLERANCE",
		"reconcile.include_reverse_charge":  "GSTRECO_RECONCILE_INCLUDE_REVERSE_CHARGE",
		"reconcile.carry_forward_store":     "GSTRECO_RECONCILE_CARRY_FORWARD_STORE",
		"reconcile.lock_provider":           "GSTRECO_RECONCILE_LOCK_PROVIDER",
		"reconcile.lock_ttl":                "GSTRECO_RECONCILE_LOCK_TTL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if GSTRECO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("GSTRECO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	reconcileCfg, err := loadReconcile(v)
	if err != nil {
		return nil, err
	}
	cfg.Reconcile = reconcileCfg
	if cfg.Reconcile.CarryForwardStore == StoreRedis || cfg.Reconcile.LockProvider == LockRedis {
		if !cfg.Redis.Enabled() {
			return nil, errors.New("config: redis.addr is required when carry_forward_store or lock_provider is redis")
		}
	}

	return cfg, nil
}

func loadReconcile(v *viper.Viper) (ReconcileConfig, error) {
	criteria := domain.AllCriteria
	if raw := splitList(v.GetString("reconcile.default_criteria")); len(raw) > 0 {
		criteria = make([]domain.Criterion, 0, len(raw))
		for _, c := range raw {
			criteria = append(criteria, domain.Criterion(c))
		}
	}

	rc := ReconcileConfig{
		DefaultCriteria:       criteria,
		TaxableValueTolerance: v.GetFloat64("reconcile.taxable_value_tolerance"),
		TotalTaxTolerance:     v.GetFloat64("reconcile.total_tax_tolerance"),
		IncludeReverseCharge:  v.GetBool("reconcile.include_reverse_charge"),
		CarryForwardStore:     v.GetString("reconcile.carry_forward_store"),
		LockProvider:          v.GetString("reconcile.lock_provider"),
		LockTTL:               v.GetDuration("reconcile.lock_ttl"),
	}
	if err := rc.MatchConfig().Validate(); err != nil {
		return ReconcileConfig{}, fmt.Errorf("config: reconcile defaults: %w", err)
	}
	switch rc.CarryForwardStore {
	case StorePostgres, StoreRedis:
	default:
		return ReconcileConfig{}, fmt.Errorf("config: unknown carry_forward_store %q", rc.CarryForwardStore)
	}
	switch rc.LockProvider {
	case LockLocal, LockRedis:
	default:
		return ReconcileConfig{}, fmt.Errorf("config: unknown lock_provider %q", rc.LockProvider)
	}
	return rc, nil
}

// splitList parses a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

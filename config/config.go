package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Built-in signing secrets, accepted only with STORAGE=memory.
const (
	devAccessSecret  = "dev-access-secret"
	devRefreshSecret = "dev-refresh-secret"
)

type Config struct {
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	GRPCPort        string        `mapstructure:"GRPC_PORT"`
	Storage         string        `mapstructure:"STORAGE"`
	DBHost          string        `mapstructure:"DB_HOST"`
	DBPort          string        `mapstructure:"DB_PORT"`
	DBUser          string        `mapstructure:"DB_USER"`
	DBPassword      string        `mapstructure:"DB_PASSWORD"`
	DBName          string        `mapstructure:"DB_NAME"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	AccessSecret    string        `mapstructure:"ACCESS_SECRET"`
	RefreshSecret   string        `mapstructure:"REFRESH_SECRET"`
	AccessTTL       time.Duration `mapstructure:"ACCESS_TTL"`
	RefreshTTL      time.Duration `mapstructure:"REFRESH_TTL"`
	AllowedOrigins  string        `mapstructure:"ALLOWED_ORIGINS"`
	SendgridAPIKey  string        `mapstructure:"SENDGRID_API_KEY"`
	SMTPEmail       string        `mapstructure:"SMTP_EMAIL"`
	FrontendURL     string        `mapstructure:"FRONTEND_URL"`
	PreviewDebounce time.Duration `mapstructure:"PREVIEW_DEBOUNCE"`
	CookieSecure    bool          `mapstructure:"COOKIE_SECURE"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	AdminEmails     string        `mapstructure:"ADMIN_EMAILS"`
}

var keys = []string{
	"HTTP_PORT", "GRPC_PORT", "STORAGE",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"REDIS_ADDR", "ACCESS_SECRET", "REFRESH_SECRET", "ACCESS_TTL", "REFRESH_TTL",
	"ALLOWED_ORIGINS", "SENDGRID_API_KEY", "SMTP_EMAIL", "FRONTEND_URL",
	"PREVIEW_DEBOUNCE", "COOKIE_SECURE", "LOG_LEVEL", "ADMIN_EMAILS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", ":8080")
	v.SetDefault("GRPC_PORT", ":9090")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "codelearn")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("ACCESS_SECRET", devAccessSecret)
	v.SetDefault("REFRESH_SECRET", devRefreshSecret)
	v.SetDefault("ACCESS_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TTL", 7*24*time.Hour)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:8080")
	v.SetDefault("SMTP_EMAIL", "noreply@localhost")
	v.SetDefault("FRONTEND_URL", "http://localhost:8080")
	v.SetDefault("PREVIEW_DEBOUNCE", 300*time.Millisecond)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ADMIN_EMAILS", "")
}

// LoadConfig reads app.env from path if present and overlays the environment.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	setDefaults(v)
	v.AutomaticEnv()

	for _, k := range keys {
		if err = v.BindEnv(k); err != nil {
			return
		}
	}

	// no file is fine, env and defaults still apply
	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	err = config.Validate()
	return
}

func (c Config) Validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE %q", c.Storage)
	}
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return fmt.Errorf("config: ACCESS_SECRET and REFRESH_SECRET are required")
	}
	if c.Storage != StorageMemory && (c.AccessSecret == devAccessSecret || c.RefreshSecret == devRefreshSecret) {
		return fmt.Errorf("config: built-in ACCESS_SECRET/REFRESH_SECRET are only allowed with STORAGE=%s", StorageMemory)
	}
	if c.PreviewDebounce <= 0 {
		return fmt.Errorf("config: PREVIEW_DEBOUNCE must be positive")
	}
	return nil
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// AdminGrants returns the lower-cased emails that are made admins on registration.
func (c Config) AdminGrants() []string {
	var out []string
	for _, e := range strings.Split(c.AdminEmails, ",") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			out = append(out, e)
		}
	}
	return out
}

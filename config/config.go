// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	AI struct {
		Provider string        `mapstructure:"provider"`
		APIKey   string        `mapstructure:"api_key"`
		APIURL   string        `mapstructure:"api_url"`
		Model    string        `mapstructure:"model"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"ai"`
	Storage struct {
		Driver string `mapstructure:"driver"`
		Path   string `mapstructure:"path"`
	} `mapstructure:"storage"`
	DB       DBConfig `mapstructure:"db"`
	Telegram struct {
		Token string `mapstructure:"token"`
	} `mapstructure:"telegram"`
	Server struct {
		Port           string `mapstructure:"port"`
		StaticDir      string `mapstructure:"static_dir"`
		UploadDir      string `mapstructure:"upload_dir"`
		MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	} `mapstructure:"server"`
	Log struct {
		Mode string `mapstructure:"mode"`
	} `mapstructure:"log"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"name"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnLifetime time.Duration `mapstructure:"conn_lifetime"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"ai.provider":             "AI_PROVIDER",
	"ai.api_key":              "AI_API_KEY",
	"ai.api_url":              "AI_API_URL",
	"ai.model":                "AI_MODEL",
	"ai.timeout":              "AI_TIMEOUT",
	"storage.driver":          "STORE_DRIVER",
	"storage.path":            "DATABASE_PATH",
	"db.host":                 "DB_HOST",
	"db.port":                 "DB_PORT",
	"db.user":                 "DB_USER",
	"db.password":             "DB_PASSWORD",
	"db.name":                 "DB_NAME",
	"db.ssl_mode":             "DB_SSL_MODE",
	"db.max_open_conns":       "DB_MAX_OPEN_CONNS",
	"db.max_idle_conns":       "DB_MAX_IDLE_CONNS",
	"db.conn_lifetime":        "DB_CONN_LIFETIME",
	"telegram.token":          "TELEGRAM_TOKEN",
	"server.port":             "SERVER_PORT",
	"server.static_dir":       "STATIC_DIR",
	"server.upload_dir":       "UPLOAD_DIR",
	"server.max_upload_bytes": "MAX_UPLOAD_BYTES",
	"log.mode":                "LOG_MODE",
	"shutdown_timeout":        "SHUTDOWN_TIMEOUT",
}

// Load loads the configuration from .env, an optional config file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.fitplan")

	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			v.Set(key, os.Getenv(envVar))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.path", "fitness.db")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "fitness")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_lifetime", 5*time.Minute)
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.static_dir", "build")
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("server.max_upload_bytes", 16<<20)
	v.SetDefault("log.mode", "production")
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// AIConfigured reports whether live AI calls are enabled. The OpenAI SDK has a
// default endpoint, so only the key is required there.
func (c *Config) AIConfigured() bool {
	if c.AI.APIKey == "" {
		return false
	}
	if c.AI.Provider == ProviderOpenAI {
		return true
	}
	return c.AI.APIURL != ""
}

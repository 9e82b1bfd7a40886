package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	RunMigrations      bool          `mapstructure:"RUN_MIGRATIONS"`
	MigrationsDir      string        `mapstructure:"MIGRATIONS_DIR"`
	SessionStore       string        `mapstructure:"SESSION_STORE"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	PersistTimeout     time.Duration `mapstructure:"PERSIST_TIMEOUT"`
	TelegramBotToken   string        `mapstructure:"TELEGRAM_BOT_TOKEN"`
	DoctorChatID       int64         `mapstructure:"DOCTOR_CHAT_ID"`
	ReportFontPaths    []string      `mapstructure:"REPORT_FONT_PATHS"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	DefaultLocale      string        `mapstructure:"DEFAULT_LOCALE"`
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

var keys = []string{
	"PORT",
	"ENV",
	"DATABASE_URL",
	"RUN_MIGRATIONS",
	"MIGRATIONS_DIR",
	"SESSION_STORE",
	"REDIS_URL",
	"SESSION_IDLE_TIMEOUT",
	"PERSIST_TIMEOUT",
	"TELEGRAM_BOT_TOKEN",
	"DOCTOR_CHAT_ID",
	"REPORT_FONT_PATHS",
	"CORS_ORIGINS",
	"DEFAULT_LOCALE",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("SESSION_STORE", StoreMemory)
	v.SetDefault("SESSION_IDLE_TIMEOUT", "2h")
	v.SetDefault("PERSIST_TIMEOUT", "5s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DEFAULT_LOCALE", "en-GB")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(cfg.CORSOrigins, v.GetString("CORS_ORIGINS"))
	cfg.ReportFontPaths = splitList(cfg.ReportFontPaths, v.GetString("REPORT_FONT_PATHS"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=%s", StoreRedis)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// TelegramEnabled reports whether completed reports should be delivered.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.DoctorChatID != 0
}

func splitList(parsed []string, raw string) []string {
	if len(parsed) == 0 {
		parsed = strings.Split(raw, ",")
	}
	var out []string
	for _, item := range parsed {
		for _, p := range strings.Split(item, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App     AppConfig
	SQLite  SQLiteConfig
	Discord DiscordConfig
	Logger  LoggerConfig
	Export  ExportConfig
}

// AppConfig controls the embedded health server.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// SQLiteConfig holds database settings.
type SQLiteConfig struct {
	Path         string
	RunBootstrap bool
}

// DiscordConfig holds gateway credentials and guild wiring.
type DiscordConfig struct {
	Token             string
	ParentChannelID   string
	PrivilegedRoleIDs []string
	TeamMentions      map[string]string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// ExportConfig controls the performance report output.
type ExportConfig struct {
	Path string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "ticket-desk"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		SQLite: SQLiteConfig{
			Path:         getEnv("SQLITE_PATH", "tickets.db"),
			RunBootstrap: getEnvAsBool("SQLITE_RUN_BOOTSTRAP", true),
		},
		Discord: DiscordConfig{
			Token:             os.Getenv("DISCORD_TOKEN"),
			ParentChannelID:   os.Getenv("DISCORD_PARENT_CHANNEL_ID"),
			PrivilegedRoleIDs: splitList(os.Getenv("DISCORD_PRIVILEGED_ROLE_IDS")),
			TeamMentions:      parseMentionMap(os.Getenv("TEAM_MENTIONS")),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Export: ExportConfig{
			Path: getEnv("EXPORT_PATH", "ticket_performance.csv"),
		},
	}

	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.Discord.ParentChannelID == "" {
		return nil, fmt.Errorf("DISCORD_PARENT_CHANNEL_ID is required")
	}

	return cfg, nil
}

// Addr returns the health server bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseMentionMap parses "Design Team=<@&123>;Development Team=<@&456>".
func parseMentionMap(raw string) map[string]string {
	mentions := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" && value != "" {
			mentions[key] = value
		}
	}
	return mentions
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

package slotbot

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/ellavondegurechaff/slotbot/slotbot/config"
	"github.com/ellavondegurechaff/slotbot/slotbot/database"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment overrides, applied after the TOML file so secrets can stay out of it.
const (
	EnvToken       = "SLOTBOT_TOKEN"
	EnvRecoveryKey = "SLOTBOT_RECOVERY_KEY"
	EnvDBPassword  = "SLOTBOT_DB_PASSWORD"
	EnvGuildID     = "SLOTBOT_GUILD_ID"
)

var ErrInvalidConfig = errors.New("invalid config")

// LoadConfig reads the TOML file at path, applies .env and environment
// overrides, then validates the result.
func LoadConfig(path string) (*Config, error) {
	// .env is a local convenience; production uses real environment variables.
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err = cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	Bot     BotConfig         `toml:"bot"`
	DB      database.DBConfig `toml:"db"`
	Slots   SlotsConfig       `toml:"slots"`
	Metrics MetricsConfig     `toml:"metrics"`
}

type BotConfig struct {
	DevGuilds  []snowflake.ID `toml:"dev_guilds"`
	Token      string         `toml:"token"`
	GuildID    snowflake.ID   `toml:"guild_id"`
	CategoryID snowflake.ID   `toml:"category_id"`
	AdminRoles []snowflake.ID `toml:"admin_roles"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	AddSource bool       `toml:"add_source"`
}

type SlotsConfig struct {
	RecoveryKey             string  `toml:"recovery_key"`
	HereLimit               int     `toml:"here_limit"`
	ExpiryIntervalSeconds   int     `toml:"expiry_interval_seconds"`
	ReminderIntervalMinutes int     `toml:"reminder_interval_minutes"`
	ReminderDays            int     `toml:"reminder_days"`
	PromptTimeoutSeconds    int     `toml:"prompt_timeout_seconds"`
	SweepParallelism        int     `toml:"sweep_parallelism"`
	DMPerSecond             float64 `toml:"dm_per_second"`
	DMBurst                 int     `toml:"dm_burst"`
	PingRetentionDays       int     `toml:"ping_retention_days"`
}

type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the endpoint.
	Addr string `toml:"addr"`
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Bot.Token = v
	}
	if v, ok := lookup(EnvRecoveryKey); ok && v != "" {
		c.Slots.RecoveryKey = v
	}
	if v, ok := lookup(EnvDBPassword); ok && v != "" {
		c.DB.Password = v
	}
	if v, ok := lookup(EnvGuildID); ok && v != "" {
		id, err := snowflake.Parse(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvGuildID, err)
		}
		c.Bot.GuildID = id
	}
	return nil
}

// Validate rejects configs the bot cannot run with and fills defaults for the rest.
func (c *Config) Validate() error {
	switch {
	case c.Bot.Token == "":
		return fmt.Errorf("%w: bot.token is required", ErrInvalidConfig)
	case c.Bot.GuildID == 0:
		return fmt.Errorf("%w: bot.guild_id is required", ErrInvalidConfig)
	case len(c.Slots.RecoveryKey) < 16:
		return fmt.Errorf("%w: slots.recovery_key must be at least 16 characters", ErrInvalidConfig)
	}

	s := &c.Slots
	if s.HereLimit <= 0 {
		s.HereLimit = slots.DefaultHereLimit
	}
	if s.ExpiryIntervalSeconds <= 0 {
		s.ExpiryIntervalSeconds = int(slots.DefaultExpiryInterval / time.Second)
	}
	if s.ReminderIntervalMinutes <= 0 {
		s.ReminderIntervalMinutes = int(slots.DefaultReminderInterval / time.Minute)
	}
	if s.ReminderDays <= 0 {
		s.ReminderDays = slots.DefaultReminderWindowDays
	}
	if s.SweepParallelism <= 0 {
		s.SweepParallelism = 4
	}
	if s.DMPerSecond <= 0 {
		s.DMPerSecond = 1
	}
	if s.DMBurst <= 0 {
		s.DMBurst = 5
	}
	if s.PingRetentionDays <= 0 {
		s.PingRetentionDays = 7
	}

	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	return nil
}

func (s SlotsConfig) ExpiryInterval() time.Duration {
	return time.Duration(s.ExpiryIntervalSeconds) * time.Second
}

func (s SlotsConfig) ReminderInterval() time.Duration {
	return time.Duration(s.ReminderIntervalMinutes) * time.Minute
}

// PromptTimeout is clamped to the supported range.
func (s SlotsConfig) PromptTimeout() time.Duration {
	d := time.Duration(s.PromptTimeoutSeconds) * time.Second
	switch {
	case s.PromptTimeoutSeconds <= 0:
		return config.DefaultPromptTimeout
	case d < config.MinPromptTimeout:
		return config.MinPromptTimeout
	case d > config.MaxPromptTimeout:
		return config.MaxPromptTimeout
	}
	return d
}

func (s SlotsConfig) PingRetention() time.Duration {
	return time.Duration(s.PingRetentionDays) * 24 * time.Hour
}

// String hides secrets so the config can be logged.
func (c Config) String() string {
	return fmt.Sprintf("guild=%s category=%s admin_roles=%d here_limit=%d db=%s@%s:%d/%s metrics=%q",
		c.Bot.GuildID, c.Bot.CategoryID, len(c.Bot.AdminRoles), c.Slots.HereLimit,
		c.DB.User, c.DB.Host, c.DB.Port, c.DB.Database, c.Metrics.Addr)
}

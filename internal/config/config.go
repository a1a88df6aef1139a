package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds process configuration loaded from environment variables.
// User-facing settings (goal, interval, awake window) live in the store.
type Config struct {
	DBPath       string        `envconfig:"DB_PATH" default:"./data/hydrate.db"`
	RunMode      string        `envconfig:"RUN_MODE" default:"tui"`                // tui|headless
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`              // debug|info|warn|error
	LogFile      string        `envconfig:"LOG_FILE" default:"./data/hydrate.log"` // tui mode only
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"1s"`
	SinkTimeout  time.Duration `envconfig:"SINK_TIMEOUT" default:"30s"` // per delivery channel
	Title        string        `envconfig:"REMINDER_TITLE" default:"Time to drink water 💧"`

	SoundEnabled bool `envconfig:"SOUND_ENABLED" default:"true"`
	BellEnabled  bool `envconfig:"BELL_ENABLED" default:"true"`

	TelegramToken  string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

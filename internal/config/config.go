package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
// Values are immutable for the process lifetime.
type Config struct {
	BotToken    string `envconfig:"BOT_TOKEN" required:"true"`
	UnsplashKey string `envconfig:"UNSPLASH_KEY" required:"true"`
	DBPath      string `envconfig:"DB_PATH" default:"./data/morningbot.db"`
	LockPath    string `envconfig:"LOCK_PATH" default:"./data/morningbot.lock"`
	Timezone    string `envconfig:"TIMEZONE" default:"Europe/Moscow"` // IANA name for the cron triggers
	MorningCron string `envconfig:"MORNING_CRON" default:"0 9 * * *"` // empty disables the trigger
	EveningCron string `envconfig:"EVENING_CRON" default:"0 21 * * *"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

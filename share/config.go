package share

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Listen        string        `env:"TRICKS_LISTEN" envDefault:"127.0.0.1:5555"`
	DBPath        string        `env:"TRICKS_DB_PATH" envDefault:"./tricks.db"`
	CacheDir      string        `env:"TRICKS_CACHE_DIR" envDefault:"./cached/fix"`
	CacheExpires  time.Duration `env:"TRICKS_CACHE_EXPIRES" envDefault:"10m"`
	RecaptchaKey  string        `env:"GOOGLE_RECAPTCHA_V3_SECRET"`
	SentryDSN     string        `env:"SENTRY_DSN"`
	DefaultLocale string        `env:"TRICKS_LOCALE" envDefault:"en"`
	Debug         bool          `env:"TRICKS_DEBUG"`
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*Config, error) {
	godotenv.Load(".env")

	var cfg Config
	err := env.Parse(&cfg)
	if err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	return &cfg, nil
}

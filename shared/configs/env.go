package configs

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full environment surface of the server. An empty RedisURL
// selects the in-process store, which only makes sense for a single
// instance.
type Config struct {
	Addr           string `env:"ADDR" envDefault:":5000"`
	GinMode        string `env:"GIN_MODE"`
	FrontendOrigin string `env:"FRONTEND_ORIGIN"`

	RedisURL string        `env:"REDIS_URL"`
	RoomTTL  time.Duration `env:"ROOM_TTL" envDefault:"3h"`

	GracePeriod     time.Duration `env:"GRACE_PERIOD" envDefault:"30s"`
	RevealDelay     time.Duration `env:"REVEAL_DELAY" envDefault:"3s"`
	MaxAnswerLength int           `env:"MAX_ANSWER_LENGTH" envDefault:"200"`
}

func Load() (Config, error) {
	cfg := Config{}
	err := env.Parse(&cfg)
	return cfg, err
}

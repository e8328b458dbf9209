package taskstore

import (
	"github.com/dmitrymomot/harrier/pkg/config"
	"github.com/dmitrymomot/harrier/pkg/mongo"
	"github.com/dmitrymomot/harrier/pkg/pg"
	"github.com/dmitrymomot/harrier/pkg/redis"
)

// Config selects and tunes the task store. URL picks the backend; the
// backend sections supply everything except the connection string.
type Config struct {
	URL string `env:"TASK_STORE_URL" envDefault:"memory://"`

	Postgres pg.Config
	Redis    redis.Config
	Mongo    mongo.Config
}

// LoadConfig reads Config from the environment and the optional .env file.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

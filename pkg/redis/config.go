package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // ConnectionURL is the URL of the database. It should be in the format "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`             // RetryAttempts is the number of attempts to connect to the database.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`            // RetryInterval is the interval between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`          // ConnectTimeout bounds the whole connection procedure, retries included.

	KeyPrefix     string `env:"REDIS_KEY_PREFIX" envDefault:"harrier"`     // KeyPrefix namespaces every key written by TaskStore.
	ScanBatchSize int64  `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"` // ScanBatchSize is the COUNT hint used while loading tasks.
}

// DefaultConfig returns the env defaults for the given URL.
func DefaultConfig(url string) Config {
	return Config{
		ConnectionURL:  url,
		RetryAttempts:  3,
		RetryInterval:  2 * time.Second,
		ConnectTimeout: 30 * time.Second,
		KeyPrefix:      "harrier",
		ScanBatchSize:  1000,
	}
}

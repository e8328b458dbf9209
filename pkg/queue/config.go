package queue

import "time"

// Config holds the environment-driven settings of a Queue.
type Config struct {
	MaxConcurrentTasks int           `env:"QUEUE_MAX_CONCURRENT_TASKS" envDefault:"3"`
	PollInterval       time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"3s"`
	ShutdownTimeout    time.Duration `env:"QUEUE_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns the values used when no environment is configured.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentTasks: DefaultMaxConcurrency,
		PollInterval:       DefaultPollInterval,
		ShutdownTimeout:    DefaultShutdownTimeout,
	}
}

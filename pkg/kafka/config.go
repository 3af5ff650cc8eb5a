package kafka

import "time"

// Config holds Kafka producer configuration
type Config struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig(brokers []string) *Config {
	return &Config{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// internal/workers/motors/calculate-requirements/config.go
package calculaterequirements

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

// internal/workers/motors/find-suitable-motors/config.go
package findsuitablemotors

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

// internal/engine/llm/config.go
package llm

import "time"

// Config carries the generation backend settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	MaxRetries  int
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Timeout:     60 * time.Second,
		MaxTokens:   512,
		Temperature: 0.7,
		MaxRetries:  2,
	}
}

// Package internal holds process-level plumbing: configuration and logging.
package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host string `env:"HOST,default=localhost"`
	Port int    `env:"PORT,default=8080"`

	DatabaseURL string `env:"DATABASE_URL,required=true"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`

	CharReplacement  string `env:"CHARACTER_REPLACEMENT,default=*"`
	CensoredWordsCSV string `env:"CENSORED_WORDS"`
	MaxContentLength int    `env:"MAX_CONTENT_LENGTH,default=2000"`
}

// CharacterRune parses the single-character moderation replacement.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

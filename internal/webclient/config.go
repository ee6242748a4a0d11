package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

// Config selects and tunes the WebClient backend.
type Config struct {
	Client Client `mapstructure:"client" envconfig:"CLIENT"`

	// Timeout bounds one HTTP round trip. Zero means 30s.
	Timeout time.Duration `mapstructure:"timeout" envconfig:"TIMEOUT"`

	// UserAgent is sent on every request when set.
	UserAgent string `mapstructure:"user_agent" envconfig:"USER_AGENT"`

	// MaxBodyBytes caps response bodies; larger ones fail with ErrBodyTooLarge.
	// Zero means 10 MiB.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

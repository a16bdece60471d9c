// Package channel carries framed messages over one persistent duplex
// connection. The WebSocket implementation is used by both the client and
// the stub backend.
package channel

import (
	"context"
	"time"

	"sas-panel/internal/common/config"
)

// Transport is an ordered, message-framed duplex connection.
type Transport interface {
	// Send writes one message. It returns once the message is on the wire.
	Send(ctx context.Context, msg []byte) error
	// Messages yields inbound messages and is closed when the connection ends.
	Messages() <-chan []byte
	// Done is closed when the connection ends, whichever side ended it.
	Done() <-chan struct{}
	Close() error
}

// Settings tunes a WebSocket connection. Zero durations disable the
// corresponding deadline.
type Settings struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration
	MaxMessageBytes  int64
	SendBufferSize   int
}

func DefaultSettings() Settings {
	return Settings{
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingInterval:     20 * time.Second,
		MaxMessageBytes:  4 << 20,
		SendBufferSize:   32,
	}
}

// SettingsFromConfig maps the channel section of the config file.
func SettingsFromConfig(cfg config.ChannelConfig) Settings {
	s := DefaultSettings()
	s.HandshakeTimeout = config.GetDuration(cfg.HandshakeTimeout)
	s.WriteTimeout = config.GetDuration(cfg.WriteTimeout)
	s.PingInterval = config.GetDuration(cfg.PingInterval)
	if cfg.MaxMessageBytes > 0 {
		s.MaxMessageBytes = cfg.MaxMessageBytes
	}
	return s
}

// readTimeout is how long the reader waits for any frame, pongs included.
func (s Settings) readTimeout() time.Duration {
	if s.PingInterval <= 0 {
		return 0
	}
	return 2 * s.PingInterval
}

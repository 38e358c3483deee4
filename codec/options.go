package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/messgen/buffer"
)

type options struct {
	logger   *zap.Logger
	maxDepth int
}

// Option configures a Codec.
type Option func(*options)

// WithLogger sets the logger of one codec.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxDepth bounds the nesting of composite values on encode, decode and
// size. Zero disables the limit.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

func defaultOptions() options {
	return options{maxDepth: buffer.DefaultMaxDepth}
}

package row

import (
	"errors"
	"log/slog"

	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/internal/options"
	"github.com/arloliu/savcodec/textcodec"
)

type config struct {
	codec      *textcodec.Codec
	strict     bool
	logger     *slog.Logger
	sysMissing float64
	engine     endian.EndianEngine
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		codec:      textcodec.UTF8(),
		logger:     slog.New(slog.DiscardHandler),
		sysMissing: format.SysMissing,
		engine:     endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Option configures a row Decoder, Encoder, Reader or Writer.
type Option = options.Option[*config]

// WithTextCodec sets the text codec of string variables. The default is UTF-8.
func WithTextCodec(codec *textcodec.Codec) Option {
	return options.New(func(c *config) error {
		if codec == nil {
			return errors.New("nil text codec")
		}
		c.codec = codec

		return nil
	})
}

// WithStrict makes the encoder report strings truncated to their byte budget
// as ErrEncodingOverflow. The row is written either way.
func WithStrict(strict bool) Option {
	return options.NoError(func(c *config) {
		c.strict = strict
	})
}

// WithLogger sets the logger used to report truncated strings at debug level.
// A nil logger discards the records.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		c.logger = logger
	})
}

// WithSysMissing sets the system-missing sentinel numeric elements are
// compared against. It must match the value the element source produces.
func WithSysMissing(v float64) Option {
	return options.NoError(func(c *config) {
		c.sysMissing = v
	})
}

// WithEngine sets the byte order numeric elements are decoded with.
func WithEngine(engine endian.EndianEngine) Option {
	return options.New(func(c *config) error {
		if engine == nil {
			return errors.New("nil endian engine")
		}
		c.engine = engine

		return nil
	})
}

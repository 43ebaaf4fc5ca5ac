package spool

import (
	"errors"
	"fmt"
	"math"

	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/internal/options"
	"github.com/arloliu/savcodec/internal/pool"
)

// MaxFrameSize is the largest raw frame a Reader accepts.
const MaxFrameSize = 1 << 26

type config struct {
	frameSize int
	codec     format.CompressionType
	bias      float64
	engine    endian.EndianEngine
	raw       bool
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		frameSize: pool.FrameBufferDefaultSize,
		codec:     format.CompressionS2,
		bias:      format.DefaultBias,
		engine:    endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Option configures a spool Writer.
type Option = options.Option[*config]

// WithFrameSize sets the raw size at which a frame is compressed and written.
// The default is 64KiB.
func WithFrameSize(size int) Option {
	return options.New(func(c *config) error {
		if size <= 0 || size > MaxFrameSize {
			return fmt.Errorf("%w: frame size %d", errs.ErrInvalidBlockSize, size)
		}
		c.frameSize = size

		return nil
	})
}

// WithCodec sets the frame codec. The default is S2.
func WithCodec(codec format.CompressionType) Option {
	return options.New(func(c *config) error {
		if !codec.IsValid() {
			return fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, codec)
		}
		c.codec = codec

		return nil
	})
}

// WithBias records the compression bias of the spooled byte-code stream.
func WithBias(bias float64) Option {
	return options.New(func(c *config) error {
		if math.IsNaN(bias) || math.IsInf(bias, 0) {
			return fmt.Errorf("invalid compression bias: %v", bias)
		}
		c.bias = bias

		return nil
	})
}

// WithEngine records the byte order of the spooled numeric elements.
func WithEngine(engine endian.EndianEngine) Option {
	return options.New(func(c *config) error {
		if engine == nil {
			return errors.New("nil endian engine")
		}
		c.engine = engine

		return nil
	})
}

// WithRaw marks the spool as holding uncompressed elements instead of a
// byte-code stream.
func WithRaw(raw bool) Option {
	return options.NoError(func(c *config) {
		c.raw = raw
	})
}

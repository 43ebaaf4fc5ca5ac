package zdata

import (
	"fmt"
	"math"

	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/internal/options"
	"github.com/arloliu/savcodec/section"
)

type config struct {
	blockSize int
	codec     format.CompressionType
	bias      float64
	engine    endian.EndianEngine
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		blockSize: section.DefaultZBlockSize,
		codec:     format.CompressionZlib,
		bias:      format.DefaultBias,
		engine:    endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Option configures a Reader or a Writer.
type Option = options.Option[*config]

// WithBlockSize sets the maximum inflated size of a block written by a Writer.
// The default is 0x3FF000, the value every known producer uses.
func WithBlockSize(size int) Option {
	return options.New(func(c *config) error {
		if size <= 0 || size > math.MaxInt32 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidBlockSize, size)
		}
		c.blockSize = size

		return nil
	})
}

// WithBlockCodec sets the block codec. Files read by other tools must use
// the default, format.CompressionZlib.
func WithBlockCodec(codec format.CompressionType) Option {
	return options.New(func(c *config) error {
		if !codec.IsValid() {
			return fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, codec)
		}
		c.codec = codec

		return nil
	})
}

// WithBias sets the compression bias recorded in, and checked against, the trailer.
func WithBias(bias float64) Option {
	return options.New(func(c *config) error {
		if math.IsNaN(bias) || math.IsInf(bias, 0) {
			return fmt.Errorf("invalid compression bias: %v", bias)
		}
		c.bias = bias

		return nil
	})
}

// WithEngine sets the byte order of the header and trailer fields.
func WithEngine(engine endian.EndianEngine) Option {
	return options.New(func(c *config) error {
		if engine == nil {
			return fmt.Errorf("nil endian engine")
		}
		c.engine = engine

		return nil
	})
}

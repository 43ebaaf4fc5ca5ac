package bytecode

import (
	"errors"
	"fmt"
	"math"

	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/internal/options"
)

// config holds the settings shared by every element source and sink.
type config struct {
	bias       float64
	sysMissing float64
	engine     endian.EndianEngine
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		bias:       format.DefaultBias,
		sysMissing: format.SysMissing,
		engine:     endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) sysMissingElement() format.Element {
	var e format.Element
	endian.PutFloat64(c.engine, e[:], c.sysMissing)

	return e
}

// Option configures a compressor, decompressor or raw element stream.
type Option = options.Option[*config]

// WithBias sets the compression bias. The default is 100.
func WithBias(bias float64) Option {
	return options.New(func(c *config) error {
		if math.IsNaN(bias) || math.IsInf(bias, 0) {
			return fmt.Errorf("invalid compression bias: %v", bias)
		}
		c.bias = bias

		return nil
	})
}

// WithSysMissing sets the system-missing sentinel. The default is -math.MaxFloat64.
func WithSysMissing(v float64) Option {
	return options.NoError(func(c *config) {
		c.sysMissing = v
	})
}

// WithEngine sets the byte order of numeric elements. The default is little-endian.
func WithEngine(engine endian.EndianEngine) Option {
	return options.New(func(c *config) error {
		if engine == nil {
			return errors.New("nil endian engine")
		}
		c.engine = engine

		return nil
	})
}

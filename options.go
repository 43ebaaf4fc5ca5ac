package savcodec

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/arloliu/savcodec/bytecode"
	"github.com/arloliu/savcodec/endian"
	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/format"
	"github.com/arloliu/savcodec/internal/options"
	"github.com/arloliu/savcodec/row"
	"github.com/arloliu/savcodec/section"
	"github.com/arloliu/savcodec/spool"
	"github.com/arloliu/savcodec/textcodec"
	"github.com/arloliu/savcodec/zdata"
)

type config struct {
	compression format.CaseCompression
	bias        float64
	sysMissing  float64
	codec       *textcodec.Codec
	engine      endian.EndianEngine
	strict      bool
	logger      *slog.Logger
	spoolCodec  format.CompressionType
	zblockSize  int
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		compression: format.CaseBytecode,
		bias:        format.DefaultBias,
		sysMissing:  format.SysMissing,
		codec:       textcodec.UTF8(),
		engine:      endian.GetLittleEndianEngine(),
		logger:      slog.New(slog.DiscardHandler),
		spoolCodec:  format.CompressionS2,
		zblockSize:  section.DefaultZBlockSize,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) bytecodeOptions() []bytecode.Option {
	return []bytecode.Option{
		bytecode.WithBias(c.bias),
		bytecode.WithSysMissing(c.sysMissing),
		bytecode.WithEngine(c.engine),
	}
}

func (c *config) rowOptions() []row.Option {
	return []row.Option{
		row.WithTextCodec(c.codec),
		row.WithStrict(c.strict),
		row.WithLogger(c.logger),
		row.WithSysMissing(c.sysMissing),
		row.WithEngine(c.engine),
	}
}

func (c *config) zdataOptions() []zdata.Option {
	return []zdata.Option{
		zdata.WithBlockSize(c.zblockSize),
		zdata.WithBias(c.bias),
		zdata.WithEngine(c.engine),
	}
}

func (c *config) spoolOptions() []spool.Option {
	return []spool.Option{
		spool.WithCodec(c.spoolCodec),
		spool.WithBias(c.bias),
		spool.WithEngine(c.engine),
		spool.WithRaw(c.compression == format.CaseUncompressed),
	}
}

// Option configures a Session.
type Option = options.Option[*config]

// WithCompression sets the case compression declared in the file header.
// The default is format.CaseBytecode.
func WithCompression(compression format.CaseCompression) Option {
	return options.New(func(c *config) error {
		if !compression.IsValid() {
			return fmt.Errorf("%w: case compression %d", errs.ErrUnsupportedCompression, compression)
		}
		c.compression = compression

		return nil
	})
}

// WithBias sets the compression bias from the file header. The default is 100.
func WithBias(bias float64) Option {
	return options.New(func(c *config) error {
		if math.IsNaN(bias) || math.IsInf(bias, 0) {
			return fmt.Errorf("invalid compression bias: %v", bias)
		}
		c.bias = bias

		return nil
	})
}

// WithSysMissing sets the system-missing value. The default is -math.MaxFloat64.
func WithSysMissing(v float64) Option {
	return options.NoError(func(c *config) {
		c.sysMissing = v
	})
}

// WithEncoding sets the character encoding of string variables by name,
// e.g. "UTF-8" or "windows-1252". The default is UTF-8.
func WithEncoding(name string) Option {
	return options.New(func(c *config) error {
		codec, err := textcodec.Lookup(name)
		if err != nil {
			return err
		}
		c.codec = codec

		return nil
	})
}

// WithBigEndian makes numeric elements big-endian. Use it for files whose
// layout code is stored big-endian.
func WithBigEndian() Option {
	return options.NoError(func(c *config) {
		c.engine = endian.GetBigEndianEngine()
	})
}

// WithEngine sets the byte order of numeric elements directly, typically the
// engine returned by endian.FromLayoutCode.
func WithEngine(engine endian.EndianEngine) Option {
	return options.New(func(c *config) error {
		if engine == nil {
			return errors.New("nil endian engine")
		}
		c.engine = engine

		return nil
	})
}

// WithStrict makes writers report strings truncated to fit their variable.
func WithStrict(strict bool) Option {
	return options.NoError(func(c *config) {
		c.strict = strict
	})
}

// WithLogger sets the logger for non-fatal conditions. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		c.logger = logger
	})
}

// WithSpoolCodec sets the frame codec of case spools. The default is S2.
func WithSpoolCodec(codec format.CompressionType) Option {
	return options.New(func(c *config) error {
		if !codec.IsValid() {
			return fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, codec)
		}
		c.spoolCodec = codec

		return nil
	})
}

// WithZBlockSize sets the inflated block size of ZSAV writers. The default is 0x3FF000.
func WithZBlockSize(size int) Option {
	return options.New(func(c *config) error {
		if size <= 0 || size > math.MaxInt32 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidBlockSize, size)
		}
		c.zblockSize = size

		return nil
	})
}

package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type codecConfig struct {
	bias     float64
	encoding string
	strict   bool
	applied  []string
}

var errNegativeBias = errors.New("bias must not be negative")

func withBias(bias float64) Option[*codecConfig] {
	return New(func(c *codecConfig) error {
		if bias < 0 {
			return errNegativeBias
		}
		c.bias = bias
		c.applied = append(c.applied, "bias")

		return nil
	})
}

func withEncoding(name string) Option[*codecConfig] {
	return NoError(func(c *codecConfig) {
		c.encoding = name
		c.applied = append(c.applied, "encoding")
	})
}

func withStrict() Option[*codecConfig] {
	return NoError(func(c *codecConfig) {
		c.strict = true
		c.applied = append(c.applied, "strict")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &codecConfig{}
		err := Apply(cfg, withEncoding("UTF-8"), withBias(100), withStrict())
		require.NoError(t, err)
		require.Equal(t, 100.0, cfg.bias)
		require.Equal(t, "UTF-8", cfg.encoding)
		require.True(t, cfg.strict)
		require.Equal(t, []string{"encoding", "bias", "strict"}, cfg.applied)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &codecConfig{}
		err := Apply(cfg, withEncoding("windows-1252"), withBias(-1), withStrict())
		require.ErrorIs(t, err, errNegativeBias)
		require.Equal(t, []string{"encoding"}, cfg.applied)
		require.False(t, cfg.strict)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &codecConfig{bias: 7}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 7.0, cfg.bias)
	})

	t.Run("nil options are skipped", func(t *testing.T) {
		cfg := &codecConfig{}
		require.NoError(t, Apply(cfg, nil, withStrict(), nil))
		require.True(t, cfg.strict)
	})
}

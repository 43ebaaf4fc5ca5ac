// Package hash provides the xxHash64 helpers used for dictionary bookkeeping.
package hash

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Name computes the xxHash64 of a variable name. Variable names are
// case-insensitive, so names differing only in case hash alike.
func Name(name string) uint64 {
	return xxhash.Sum64String(strings.ToUpper(name))
}

// Package collision detects duplicate variable names while a dictionary is
// validated.
package collision

import (
	"fmt"
	"strings"

	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/internal/hash"
)

// Tracker records variable names by their case-insensitive hash. Two
// different names sharing a hash are a collision, not a duplicate; the
// tracker keeps every name in the bucket and compares them exactly.
type Tracker struct {
	names map[uint64][]string // hash → names with that hash
}

// NewTracker creates a new name tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64][]string),
	}
}

// Track records name.
//
// Returns:
//   - error: ErrDuplicateName if a name equal to name ignoring case was
//     already tracked
func (t *Tracker) Track(name string) error {
	h := hash.Name(name)

	bucket := t.names[h]
	for _, existing := range bucket {
		if strings.EqualFold(existing, name) {
			return fmt.Errorf("%w: %q and %q", errs.ErrDuplicateName, existing, name)
		}
	}
	t.names[h] = append(bucket, name)

	return nil
}

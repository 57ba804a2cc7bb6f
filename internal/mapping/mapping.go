// Package mapping computes the plaintext -> ciphertext relation of an RSA key
// over a contiguous range of integers and projects it onto drawable geometry.
package mapping

import (
	"errors"
	"fmt"
)

// DefaultMaxRange caps the number of entries a single range may produce.
const DefaultMaxRange = 1000

var (
	ErrInvalidRange  = errors.New("range start must be non-negative and not greater than end")
	ErrRangeTooLarge = errors.New("range is too large")
)

// Encrypter is the part of a key the generator needs.
type Encrypter interface {
	Encrypt(m int64) int64
}

// Entry is one plaintext and its ciphertext.
type Entry struct {
	Plaintext   int64
	Ciphertext  int64
	SelfMapping bool
}

// Range is an inclusive interval of plaintexts.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of integers in the range.
func (r Range) Len() int {
	return int(r.End - r.Start + 1)
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v int64) bool {
	return v >= r.Start && v <= r.End
}

// Validate checks bounds and that the range holds at most limit values.
// limit <= 0 means DefaultMaxRange.
func (r Range) Validate(limit int) error {
	if r.Start < 0 || r.Start > r.End {
		return fmt.Errorf("[%d, %d]: %w", r.Start, r.End, ErrInvalidRange)
	}
	if limit <= 0 {
		limit = DefaultMaxRange
	}
	if r.End-r.Start >= int64(limit) {
		return fmt.Errorf("[%d, %d] has more than %d values: %w", r.Start, r.End, limit, ErrRangeTooLarge)
	}
	return nil
}

// Generate encrypts every plaintext of r in ascending order.
// The output depends only on the key and the range.
func Generate(key Encrypter, r Range, limit int) ([]Entry, error) {
	if err := r.Validate(limit); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, r.Len())
	// counting up to End would wrap at MaxInt64
	for i := range r.Len() {
		m := r.Start + int64(i)
		c := key.Encrypt(m)
		entries = append(entries, Entry{
			Plaintext:   m,
			Ciphertext:  c,
			SelfMapping: m == c,
		})
	}
	return entries, nil
}

// SelfMappings returns the fixed points among entries.
func SelfMappings(entries []Entry) []Entry {
	var fixed []Entry
	for _, e := range entries {
		if e.SelfMapping {
			fixed = append(fixed, e)
		}
	}
	return fixed
}

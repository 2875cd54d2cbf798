package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// ErrEntropy is returned when the underlying entropy source fails.
// Callers must treat a failed draw as fatal for the current spin and
// return without producing a partial grid.
var ErrEntropy = fmt.Errorf("rng: entropy source unavailable")

// Source yields uniform randomness for grid generation. Implementations
// must be safe for concurrent use across unrelated sessions; within one
// session's spin the source is only ever consulted sequentially.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() (float64, error)

	// Intn returns a uniform value in [0, n). n must be > 0.
	Intn(n int) (int, error)
}

// Crypto is a Source backed by crypto/rand. The zero value is ready to use.
type Crypto struct{}

// NewCrypto returns a crypto/rand backed source.
func NewCrypto() *Crypto {
	return &Crypto{}
}

// Float64 returns a uniform value in [0, 1) built from 53 random bits.
func (c *Crypto) Float64() (float64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53), nil
}

// Intn returns a uniform value in [0, n) using rejection sampling to
// avoid modulo bias.
func (c *Crypto) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("rng: Intn called with n=%d", n)
	}
	max := uint64(n)
	limit := (^uint64(0) / max) * max
	var buf [8]byte
	for {
		if _, err := crand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrEntropy, err)
		}
		u := binary.BigEndian.Uint64(buf[:])
		if u < limit {
			return int(u % max), nil
		}
	}
}

package rng

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

// Stream is a deterministic Source derived from an HMAC-SHA256 byte
// stream keyed by (serverSeed, clientSeed, nonce). Given identical seeds
// the server and a predictive client consume the same draw sequence and
// produce identical outcomes, which is also what makes replayed spins
// reproducible in tests and audits.
type Stream struct {
	serverSeed string
	clientSeed string
	nonce      uint64
	round      int
	cursor     int
	buffer     [sha256.Size]byte
}

// NewStream creates a deterministic stream at cursor 0.
func NewStream(serverSeed, clientSeed string, nonce uint64) *Stream {
	return &Stream{
		serverSeed: serverSeed,
		clientSeed: clientSeed,
		nonce:      nonce,
		cursor:     sha256.Size, // force a round on first draw
	}
}

func (s *Stream) next() byte {
	if s.cursor >= sha256.Size {
		h := hmac.New(sha256.New, []byte(s.serverSeed))
		fmt.Fprintf(h, "%s:%d:%d", s.clientSeed, s.nonce, s.round)
		copy(s.buffer[:], h.Sum(nil))
		s.round++
		s.cursor = 0
	}
	b := s.buffer[s.cursor]
	s.cursor++
	return b
}

// Float64 returns a deterministic value in [0, 1) built from 4 bytes.
func (s *Stream) Float64() (float64, error) {
	var f float64
	div := 256.0
	for i := 0; i < 4; i++ {
		f += float64(s.next()) / div
		div *= 256.0
	}
	return f, nil
}

// Intn returns a deterministic value in [0, n).
func (s *Stream) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("rng: Intn called with n=%d", n)
	}
	f, _ := s.Float64()
	return int(f * float64(n)), nil
}

package session

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/engine"
)

// Store errors. The service layer maps these onto the API error codes.
var (
	// ErrNotFound means no state is persisted for the session.
	ErrNotFound = errors.New("session: state not found")

	// ErrRevisionConflict means a conditional update lost the race: the
	// persisted revision no longer matches the caller's.
	ErrRevisionConflict = errors.New("session: revision conflict")

	// ErrLocked means another spin holds the session's exclusive lease.
	ErrLocked = errors.New("session: spin already in flight")
)

// State is the durable record written after every committed spin: the
// bonus run, the bet that opened it, and a revision for conditional
// updates. On resume the caller re-submits this state and the engine
// rejects anything that diverges from the last committed copy.
type State struct {
	SessionID string            `json:"sessionId"`
	Bonus     engine.BonusState `json:"bonus"`
	Bet       decimal.Decimal   `json:"bet"`
	Revision  int64             `json:"revision"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// New returns a fresh state with no active bonus.
func New(sessionID string) *State {
	return &State{
		SessionID: sessionID,
		Bonus:     engine.BonusState{AccumulatedWin: decimal.Zero},
		Bet:       decimal.Zero,
		UpdatedAt: time.Now().UTC(),
	}
}

// Matches reports whether a resume request's state is exactly the
// last-committed state: same tier, spin count, accumulated win, bet and
// sticky frame set. Anything less is a divergent resume and is
// rejected rather than partially applied.
func (s *State) Matches(other *State) bool {
	if other == nil {
		return false
	}
	if s.Bonus.Mode != other.Bonus.Mode ||
		s.Bonus.SpinsRemaining != other.Bonus.SpinsRemaining ||
		!s.Bonus.AccumulatedWin.Equal(other.Bonus.AccumulatedWin) ||
		!s.Bet.Equal(other.Bet) {
		return false
	}
	if len(s.Bonus.Sticky) != len(other.Bonus.Sticky) {
		return false
	}
	for i, sf := range s.Bonus.Sticky {
		if sf != other.Bonus.Sticky[i] {
			return false
		}
	}
	return true
}

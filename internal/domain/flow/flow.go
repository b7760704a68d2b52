// Package flow is the operator conversation state machine.
package flow

import (
	"fmt"

	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/daterange"
)

// State is one step of the search conversation.
type State string

// Conversation states, in walking order.
const (
	AwaitingDateRange State = "awaiting_date_range"
	AwaitingSeeds     State = "awaiting_seeds"
	Searching         State = "searching"
	Done              State = "done"
)

// IsValid checks if the state is one of the supported values.
func (s State) IsValid() bool {
	return s == AwaitingDateRange || s == AwaitingSeeds || s == Searching || s == Done
}

// Session tracks one chat's progress through the conversation. The zero
// value is not usable; start with New or rehydrate with Reconstruct.
type Session struct {
	chatID   int64
	state    State
	rng      daterange.Range
	hasRange bool
}

// New starts a fresh conversation waiting for a date range.
func New(chatID int64) *Session {
	return &Session{chatID: chatID, state: AwaitingDateRange}
}

// Reconstruct rehydrates a Session without validation (storage hydration).
func Reconstruct(chatID int64, state State, rng daterange.Range, hasRange bool) *Session {
	return &Session{chatID: chatID, state: state, rng: rng, hasRange: hasRange}
}

// ChatID returns the owning chat identifier.
func (s *Session) ChatID() int64 { return s.chatID }

// State returns the current conversation state.
func (s *Session) State() State { return s.state }

// DateRange returns the accepted range; ok is false until one is accepted.
func (s *Session) DateRange() (daterange.Range, bool) {
	return s.rng, s.hasRange
}

// AcceptRange stores the operator's date range and advances to seed entry.
func (s *Session) AcceptRange(r daterange.Range) error {
	if s.state != AwaitingDateRange {
		return s.badTransition(AwaitingSeeds)
	}
	s.rng = r
	s.hasRange = true
	s.state = AwaitingSeeds

	return nil
}

// BeginSearch marks the session as running a search.
func (s *Session) BeginSearch() error {
	if s.state != AwaitingSeeds {
		return s.badTransition(Searching)
	}
	s.state = Searching

	return nil
}

// Finish marks the search as delivered.
func (s *Session) Finish() error {
	if s.state != Searching {
		return s.badTransition(Done)
	}
	s.state = Done

	return nil
}

func (s *Session) badTransition(to State) error {
	return fmt.Errorf("%w: cannot move from %s to %s", domain.ErrInvalidTransition, s.state, to)
}

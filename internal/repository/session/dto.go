package session

import (
	"time"

	"github.com/huntline/phrasehound/internal/domain/daterange"
	"github.com/huntline/phrasehound/internal/domain/flow"
)

const dayFormat = "2006-01-02"

// sessionDTO is the stored JSON shape of a conversation session.
type sessionDTO struct {
	ChatID   int64  `json:"chat_id"`
	State    string `json:"state"`
	Since    string `json:"since,omitempty"`
	Until    string `json:"until,omitempty"`
	HasRange bool   `json:"has_range"`
}

func toDTO(s *flow.Session) sessionDTO {
	dto := sessionDTO{
		ChatID: s.ChatID(),
		State:  string(s.State()),
	}
	if r, ok := s.DateRange(); ok {
		dto.Since = r.Since().Format(dayFormat)
		dto.Until = r.Until().Format(dayFormat)
		dto.HasRange = true
	}
	return dto
}

// fromDTO rebuilds the session; ok is false when the payload is not usable.
func fromDTO(dto sessionDTO) (*flow.Session, bool) {
	state := flow.State(dto.State)
	if !state.IsValid() {
		return nil, false
	}

	var (
		rng      daterange.Range
		hasRange bool
	)
	if dto.HasRange {
		since, err := time.ParseInLocation(dayFormat, dto.Since, time.UTC)
		if err != nil {
			return nil, false
		}
		until, err := time.ParseInLocation(dayFormat, dto.Until, time.UTC)
		if err != nil {
			return nil, false
		}
		rng, err = daterange.New(since, until)
		if err != nil {
			return nil, false
		}
		hasRange = true
	}

	return flow.Reconstruct(dto.ChatID, state, rng, hasRange), true
}

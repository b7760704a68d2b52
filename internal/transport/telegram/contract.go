package telegram

import (
	"context"

	"github.com/huntline/phrasehound/internal/domain/daterange"
	"github.com/huntline/phrasehound/internal/domain/flow"
	"github.com/huntline/phrasehound/internal/domain/seed"
	"github.com/huntline/phrasehound/internal/usecase/search"
)

// API is the slice of the Bot API client the conversation layer needs.
type API interface {
	GetUpdates(ctx context.Context, offset int64) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, opts SendOpts) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// SessionStore persists conversation state between updates.
type SessionStore interface {
	Save(ctx context.Context, s *flow.Session) error
	Load(ctx context.Context, chatID int64) (*flow.Session, error)
	Delete(ctx context.Context, chatID int64) error
}

// Searcher runs one full search for an operator submission.
type Searcher interface {
	Run(ctx context.Context, phrases []seed.Phrase, rng daterange.Range) (search.Report, error)
}

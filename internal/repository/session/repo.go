// Package session persists conversation state between Telegram updates.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/huntline/phrasehound/internal/db"
	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/flow"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// store is the consumer interface for session state (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo stores sessions keyed by chat ID, each expiring after ttl so an
// abandoned conversation cleans itself up.
type Repo struct {
	store     store
	keyPrefix string
	ttl       time.Duration
}

// New creates a session repository.
func New(s store, keyPrefix string, ttl time.Duration) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, ttl: ttl}
}

// Save writes the session, refreshing its TTL.
func (r *Repo) Save(ctx context.Context, s *flow.Session) error {
	data, err := json.Marshal(toDTO(s))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, r.key(s.ChatID()), data, r.ttl); err != nil {
		return fmt.Errorf("store session %d: %w", s.ChatID(), err)
	}
	return nil
}

// Load reads the chat's session. Missing, expired and unreadable payloads
// all come back as domain.ErrSessionNotFound: the bot restarts the
// conversation rather than getting stuck on stale state.
func (r *Repo) Load(ctx context.Context, chatID int64) (*flow.Session, error) {
	data, err := r.store.Get(ctx, r.key(chatID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session %d: %w", chatID, err)
	}

	var dto sessionDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	s, ok := fromDTO(dto)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete removes the chat's session.
func (r *Repo) Delete(ctx context.Context, chatID int64) error {
	if err := r.store.Del(ctx, r.key(chatID)); err != nil {
		return fmt.Errorf("delete session %d: %w", chatID, err)
	}
	return nil
}

func (r *Repo) key(chatID int64) string {
	return r.keyPrefix + "session:" + strconv.FormatInt(chatID, 10)
}

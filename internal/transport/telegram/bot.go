package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/daterange"
	"github.com/huntline/phrasehound/internal/domain/flow"
	"github.com/huntline/phrasehound/internal/domain/seed"
	"github.com/huntline/phrasehound/internal/logger"
	"github.com/huntline/phrasehound/internal/metrics"
	"github.com/huntline/phrasehound/internal/usecase/search"
)

const pollRetryDelay = 3 * time.Second

// Config tunes the conversation layer.
type Config struct {
	AllowedChatIDs []int64 // empty allows any chat
	MaxResultCards int     // default 8
	Debug          bool
}

// Bot drives operator conversations: one finite-state session per chat,
// persisted between updates so a restart does not lose the dialogue.
type Bot struct {
	api      API
	sessions SessionStore
	searcher Searcher
	cfg      Config
	logger   *zap.Logger
	allowed  map[int64]struct{}
}

// NewBot wires the conversation layer.
func NewBot(api API, sessions SessionStore, searcher Searcher, cfg Config, log *zap.Logger) *Bot {
	if cfg.MaxResultCards <= 0 {
		cfg.MaxResultCards = 8
	}
	if log == nil {
		log = zap.NewNop()
	}

	var allowed map[int64]struct{}
	if len(cfg.AllowedChatIDs) > 0 {
		allowed = make(map[int64]struct{}, len(cfg.AllowedChatIDs))
		for _, id := range cfg.AllowedChatIDs {
			allowed[id] = struct{}{}
		}
	}

	return &Bot{
		api:      api,
		sessions: sessions,
		searcher: searcher,
		cfg:      cfg,
		logger:   log,
		allowed:  allowed,
	}
}

// Run long-polls until ctx is done. Updates are handled sequentially: one
// operator action lands fully before the next is read, so session state
// never races with itself.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot started")

	var offset int64
	for {
		if ctx.Err() != nil {
			b.logger.Info("bot stopped")
			return nil
		}

		updates, err := b.api.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("bot stopped")
				return nil
			}
			b.logger.Warn("get updates failed", zap.Error(err))
			select {
			case <-ctx.Done():
				b.logger.Info("bot stopped")
				return nil
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.ID >= offset {
				offset = u.ID + 1
			}
			b.handleUpdate(ctx, u)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u Update) {
	switch {
	case u.Callback != nil:
		b.handleCallback(ctx, u.Callback)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

func (b *Bot) chatAllowed(chatID int64) bool {
	if b.allowed == nil {
		return true
	}
	_, ok := b.allowed[chatID]
	return ok
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	log := b.logger.With(zap.Int64("chat_id", chatID))

	if !b.chatAllowed(chatID) {
		log.Debug("message from disallowed chat ignored")
		return
	}

	switch strings.TrimSpace(msg.Text) {
	case "/start":
		b.send(ctx, chatID, startText, SendOpts{})
		return
	case "/help":
		b.send(ctx, chatID, helpText, SendOpts{})
		return
	case "/organic":
		b.startFlow(ctx, chatID)
		return
	}

	sess, err := b.sessions.Load(ctx, chatID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			log.Error("session load failed", zap.Error(err))
		}
		// сообщение вне диалога
		return
	}

	switch sess.State() {
	case flow.AwaitingDateRange:
		b.acceptRange(ctx, sess, strings.TrimSpace(msg.Text))
	case flow.AwaitingSeeds:
		b.acceptSeeds(ctx, log, sess, msg.Text)
	default:
		log.Debug("message ignored", zap.String("state", string(sess.State())))
	}
}

// startFlow begins (or restarts) the conversation for a chat.
func (b *Bot) startFlow(ctx context.Context, chatID int64) {
	if _, err := b.sessions.Load(ctx, chatID); errors.Is(err, domain.ErrSessionNotFound) {
		metrics.ActiveSessions.Inc()
	}

	if err := b.sessions.Save(ctx, flow.New(chatID)); err != nil {
		b.logger.Error("session save failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.send(ctx, chatID, oopsText, SendOpts{})
		return
	}
	metrics.FlowTransitionsTotal.WithLabelValues(string(flow.AwaitingDateRange)).Inc()

	b.send(ctx, chatID, rangePromptText, SendOpts{CancelKeyboard: true})
}

// acceptRange parses the operator's date range. Bad input re-prompts and
// keeps the session where it was.
func (b *Bot) acceptRange(ctx context.Context, sess *flow.Session, text string) {
	chatID := sess.ChatID()

	rng, err := daterange.Parse(text)
	if err != nil {
		b.send(ctx, chatID, badRangeText, SendOpts{})
		return
	}

	if err := sess.AcceptRange(rng); err != nil {
		b.logger.Error("range transition failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	if err := b.sessions.Save(ctx, sess); err != nil {
		b.logger.Error("session save failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.send(ctx, chatID, oopsText, SendOpts{})
		return
	}
	metrics.FlowTransitionsTotal.WithLabelValues(string(flow.AwaitingSeeds)).Inc()

	b.send(ctx, chatID, seedsPromptText(rng), SendOpts{CancelKeyboard: true})
}

// acceptSeeds parses the seed lines, runs the search and delivers results.
// The raw message text goes into the parser verbatim, one phrase per line.
func (b *Bot) acceptSeeds(ctx context.Context, log *zap.Logger, sess *flow.Session, raw string) {
	chatID := sess.ChatID()

	phrases, lineErrs := seed.ParseLines(raw)
	if note := skippedLinesText(lineErrs); note != "" {
		b.send(ctx, chatID, note, SendOpts{})
	}
	if len(phrases) == 0 {
		b.send(ctx, chatID, noSeedsText, SendOpts{})
		return
	}

	rng, ok := sess.DateRange()
	if !ok {
		log.Error("seed entry without an accepted range")
		b.clearSession(ctx, chatID)
		b.send(ctx, chatID, oopsText, SendOpts{})
		return
	}

	if err := sess.BeginSearch(); err != nil {
		log.Error("search transition failed", zap.Error(err))
		return
	}
	if err := b.sessions.Save(ctx, sess); err != nil {
		log.Warn("session save failed", zap.Error(err))
	}
	metrics.FlowTransitionsTotal.WithLabelValues(string(flow.Searching)).Inc()

	b.send(ctx, chatID, searchingText(rng, len(phrases)), SendOpts{})

	report, err := b.searcher.Run(logger.With(ctx, log), phrases, rng)

	if ferr := sess.Finish(); ferr == nil {
		metrics.FlowTransitionsTotal.WithLabelValues(string(flow.Done)).Inc()
	}
	b.clearSession(ctx, chatID)

	if err != nil {
		log.Error("search failed", zap.Error(err))
		b.send(ctx, chatID, searchErrText(err), SendOpts{})
		return
	}

	b.deliver(ctx, chatID, len(phrases), rng, report)
}

// deliver sends the summary, failure notes, result cards and, in debug
// mode, the full verdict digest.
func (b *Bot) deliver(ctx context.Context, chatID int64, seeds int, rng daterange.Range, report search.Report) {
	b.send(ctx, chatID, summaryText(rng, seeds, len(report.Matches)), SendOpts{DisablePreview: true})

	if note := fetchFailuresText(report.Failures); note != "" {
		b.send(ctx, chatID, note, SendOpts{DisablePreview: true})
	}

	if len(report.Matches) == 0 {
		b.send(ctx, chatID, emptyResultText, SendOpts{})
	} else {
		cards := report.Matches
		if len(cards) > b.cfg.MaxResultCards {
			cards = cards[:b.cfg.MaxResultCards]
		}
		for _, ev := range cards {
			b.send(ctx, chatID, resultCard(ev, b.cfg.Debug), SendOpts{})
		}
	}

	if b.cfg.Debug && len(report.Evaluations) > 0 {
		b.send(ctx, chatID, debugDigest(report.Evaluations), SendOpts{DisablePreview: true})
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *Callback) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	log := b.logger.With(zap.Int64("chat_id", chatID))

	if !b.chatAllowed(chatID) {
		log.Debug("callback from disallowed chat ignored")
		return
	}

	if cb.Data == CallbackCancel {
		if _, err := b.sessions.Load(ctx, chatID); err == nil {
			b.clearSession(ctx, chatID)
		}
		if err := b.api.EditMessageText(ctx, chatID, cb.Message.ID, cancelledText); err != nil {
			log.Warn("edit message failed", zap.Error(err))
		}
	}

	if err := b.api.AnswerCallback(ctx, cb.ID); err != nil {
		log.Warn("answer callback failed", zap.Error(err))
	}
}

// clearSession drops the chat's conversation state. Callers only invoke it
// for sessions known to exist, keeping the active gauge honest.
func (b *Bot) clearSession(ctx context.Context, chatID int64) {
	if err := b.sessions.Delete(ctx, chatID); err != nil {
		b.logger.Warn("session delete failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	metrics.ActiveSessions.Dec()
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, opts SendOpts) {
	if err := b.api.SendMessage(ctx, chatID, text, opts); err != nil {
		b.logger.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

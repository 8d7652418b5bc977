package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"cityguide/internal/identity"
	"cityguide/internal/logging"

	"github.com/rs/zerolog"
)

const (
	DefaultDedupWindow  = time.Hour
	defaultTrackTimeout = 5 * time.Second
)

// Scheduler is notified after a post's engagement changes.
type Scheduler interface {
	ScheduleUpdate(postID string)
}

type LedgerConfig struct {
	DedupWindow  time.Duration
	Clock        Clock
	Scheduler    Scheduler // optional
	TrackTimeout time.Duration
}

// VoteState is the helpful-vote state after a toggle.
type VoteState struct {
	Voted bool `json:"voted"`
}

// Ledger records views and helpful votes against posts.
type Ledger struct {
	store        Store
	window       time.Duration
	clock        Clock
	scheduler    Scheduler
	trackTimeout time.Duration
	log          zerolog.Logger
	wg           sync.WaitGroup
}

func NewLedger(store Store, cfg LedgerConfig) *Ledger {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = DefaultDedupWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.TrackTimeout <= 0 {
		cfg.TrackTimeout = defaultTrackTimeout
	}
	return &Ledger{
		store:        store,
		window:       cfg.DedupWindow,
		clock:        cfg.Clock,
		scheduler:    cfg.Scheduler,
		trackTimeout: cfg.TrackTimeout,
		log:          logging.Component("ledger"),
	}
}

// ViewOutcome says what RecordViewOutcome did with a view.
type ViewOutcome int

const (
	ViewSkipped   ViewOutcome = iota // no viewer identity
	ViewRecorded                     // a new ledger row was written
	ViewDuplicate                    // same viewer inside the dedup window
)

func (o ViewOutcome) String() string {
	switch o {
	case ViewRecorded:
		return "recorded"
	case ViewDuplicate:
		return "duplicate"
	default:
		return "skipped"
	}
}

// RecordView appends a view for tok. A missing identity or a repeat view
// inside the dedup window is not an error; only ErrPostNotFound and
// storage failures are returned.
func (l *Ledger) RecordView(ctx context.Context, postID string, tok identity.Token) error {
	_, err := l.RecordViewOutcome(ctx, postID, tok)
	return err
}

// RecordViewOutcome is RecordView that also reports whether a row was
// written. The outcome is ViewSkipped whenever err is non-nil.
func (l *Ledger) RecordViewOutcome(ctx context.Context, postID string, tok identity.Token) (ViewOutcome, error) {
	if !tok.Valid() {
		viewsTotal.WithLabelValues(ViewSkipped.String()).Inc()
		l.log.Debug().Str("post_id", postID).Msg("no viewer identity, view skipped")
		return ViewSkipped, nil
	}

	err := l.store.InsertView(ctx, postID, tok, l.clock.Now(), l.window)
	switch {
	case err == nil:
		viewsTotal.WithLabelValues(ViewRecorded.String()).Inc()
		l.schedule(postID)
		return ViewRecorded, nil
	case errors.Is(err, ErrDuplicateEngagement):
		viewsTotal.WithLabelValues(ViewDuplicate.String()).Inc()
		return ViewDuplicate, nil
	case errors.Is(err, ErrPostNotFound):
		viewsTotal.WithLabelValues("not_found").Inc()
		return ViewSkipped, err
	default:
		viewsTotal.WithLabelValues("error").Inc()
		storageErrorsTotal.WithLabelValues("record_view").Inc()
		l.log.Error().Err(err).
			Str("post_id", postID).
			Stringer("viewer", tok.Kind()).
			Msg("failed to record view")
		return ViewSkipped, err
	}
}

// TrackView records a view in the background. The write outlives the
// request context but is bounded by the track timeout.
func (l *Ledger) TrackView(ctx context.Context, postID string, tok identity.Token) {
	ctx = context.WithoutCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, l.trackTimeout)
		defer cancel()
		if err := l.RecordView(ctx, postID, tok); errors.Is(err, ErrPostNotFound) {
			l.log.Debug().Str("post_id", postID).Msg("tracked view for unknown post")
		}
	}()
}

// Wait blocks until background view writes have finished.
func (l *Ledger) Wait() {
	l.wg.Wait()
}

// ToggleHelpfulVote flips tok's helpful vote on the post.
func (l *Ledger) ToggleHelpfulVote(ctx context.Context, postID string, tok identity.Token) (VoteState, error) {
	if !tok.Valid() {
		return VoteState{}, identity.ErrUnavailable
	}

	voted, err := l.store.ToggleVote(ctx, postID, tok, l.clock.Now())
	if err != nil {
		if !errors.Is(err, ErrPostNotFound) {
			storageErrorsTotal.WithLabelValues("toggle_vote").Inc()
			l.log.Error().Err(err).
				Str("post_id", postID).
				Stringer("voter", tok.Kind()).
				Msg("failed to toggle helpful vote")
		}
		return VoteState{}, err
	}

	state := "off"
	if voted {
		state = "on"
	}
	votesToggledTotal.WithLabelValues(state).Inc()
	l.schedule(postID)
	return VoteState{Voted: voted}, nil
}

// CheckIfVoted reports whether tok has a helpful vote on the post. An
// unavailable identity has not voted.
func (l *Ledger) CheckIfVoted(ctx context.Context, postID string, tok identity.Token) (bool, error) {
	if !tok.Valid() {
		return false, nil
	}
	voted, err := l.store.HasVote(ctx, postID, tok)
	if err != nil {
		storageErrorsTotal.WithLabelValues("check_vote").Inc()
		l.log.Error().Err(err).Str("post_id", postID).Msg("failed to check helpful vote")
		return false, err
	}
	return voted, nil
}

func (l *Ledger) GetEngagementCounts(ctx context.Context, postID string) (Counts, error) {
	c, err := l.store.Counts(ctx, postID)
	if err != nil && !errors.Is(err, ErrPostNotFound) {
		storageErrorsTotal.WithLabelValues("counts").Inc()
		l.log.Error().Err(err).Str("post_id", postID).Msg("failed to read engagement counts")
	}
	return c, err
}

func (l *Ledger) schedule(postID string) {
	if l.scheduler != nil {
		l.scheduler.ScheduleUpdate(postID)
	}
}

// Package engine owns the sequential batch processing of submitted images.
// It admits work bounded by the credit ledger, drives items through the
// generation gateway strictly one at a time and in admission order, and
// exposes immutable snapshots for rendering.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"luxelens/internal/credits"
	"luxelens/internal/domain"
	"luxelens/internal/gateway"
	"luxelens/internal/notify"
	"luxelens/internal/storage"
)

// DefaultStepDelay spaces consecutive gateway calls so the upstream service
// is not hammered and UI transitions have time to render. Tunable, not a
// correctness requirement.
const DefaultStepDelay = 300 * time.Millisecond

// Snapshot is the immutable view handed to consumers after every step.
type Snapshot struct {
	Batch            domain.Batch
	Mode             domain.Mode
	Options          domain.RetouchOptions
	RemainingCredits int
}

// Engine sequences one batch at a time. All mutation happens through its own
// transition steps; consumers only ever see deep-copied snapshots.
type Engine struct {
	ctx       context.Context
	ledger    *credits.Ledger
	retoucher gateway.Retoucher
	notifier  notify.Notifier
	archive   *storage.Archive
	logger    zerolog.Logger
	stepDelay time.Duration

	mu      sync.Mutex
	batch   domain.Batch
	mode    domain.Mode
	options domain.RetouchOptions
}

// Options configures a new engine. Archive may be nil to disable result
// archiving; Notifier defaults to a no-op.
type Options struct {
	Ledger    *credits.Ledger
	Retoucher gateway.Retoucher
	Notifier  notify.Notifier
	Archive   *storage.Archive
	Logger    zerolog.Logger
	StepDelay time.Duration
}

// New constructs an idle engine bound to ctx; the driving loop stops when
// ctx is cancelled.
func New(ctx context.Context, opts Options) *Engine {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}
	stepDelay := opts.StepDelay
	if stepDelay < 0 {
		stepDelay = DefaultStepDelay
	}
	return &Engine{
		ctx:       ctx,
		ledger:    opts.Ledger,
		retoucher: opts.Retoucher,
		notifier:  notifier,
		archive:   opts.Archive,
		logger:    opts.Logger,
		stepDelay: stepDelay,
		batch:     domain.NewIdleBatch(),
		mode:      domain.ModeSingle,
		options:   domain.DefaultRetouchOptions(),
	}
}

// Snapshot returns a deep copy of the current state plus the credit balance.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Batch:            e.batch.Clone(),
		Mode:             e.mode,
		Options:          e.options,
		RemainingCredits: e.ledger.Remaining(),
	}
}

// SetOptions stores the style configuration used by subsequent steps.
func (e *Engine) SetOptions(opts domain.RetouchOptions) {
	opts.Normalize()
	e.mu.Lock()
	e.options = opts
	e.mu.Unlock()
}

// Options returns the current style configuration.
func (e *Engine) Options() domain.RetouchOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.options
}

// SetMode switches the studio mode and discards the current batch, matching
// the front-end behavior of mode changes.
func (e *Engine) SetMode(mode domain.Mode) Snapshot {
	if mode != domain.ModeSingle && mode != domain.ModeBatch && mode != domain.ModeVideo {
		mode = domain.ModeSingle
	}
	e.mu.Lock()
	e.mode = mode
	e.batch = domain.NewIdleBatch()
	e.mu.Unlock()
	return e.Snapshot()
}

// Submit admits the given images into a new batch, bounded by the remaining
// credits, and starts the driving loop. Admission preserves order and
// silently drops input beyond the credit budget. It returns ErrNoCredits
// when the balance is zero and ErrBatchActive while a run is in flight.
func (e *Engine) Submit(images []domain.ImagePayload) (Snapshot, error) {
	if len(images) == 0 {
		return e.Snapshot(), domain.ErrNothingSubmitted
	}

	e.mu.Lock()
	if e.batch.Status == domain.BatchStatusRunning {
		e.mu.Unlock()
		return e.Snapshot(), domain.ErrBatchActive
	}
	remaining := e.ledger.Remaining()
	if remaining == 0 {
		e.mu.Unlock()
		return e.Snapshot(), domain.ErrNoCredits
	}

	admitted := images
	if len(admitted) > remaining {
		admitted = admitted[:remaining]
	}

	items := make([]domain.WorkItem, len(admitted))
	for i, img := range admitted {
		items[i] = domain.WorkItem{
			ID:     uuid.NewString(),
			Source: img.Clone(),
			Status: domain.ItemStatusPending,
		}
	}

	runID := uuid.NewString()
	e.batch = domain.Batch{
		RunID:     runID,
		Items:     items,
		Cursor:    0,
		Status:    domain.BatchStatusRunning,
		StartedAt: time.Now(),
	}
	e.mode = domain.EffectiveMode(e.mode, len(items))
	e.mu.Unlock()

	e.logger.Info().
		Str("run_id", runID).
		Int("submitted", len(images)).
		Int("admitted", len(items)).
		Str("mode", string(e.mode)).
		Msg("engine: batch admitted")

	go e.drive(runID)
	return e.Snapshot(), nil
}

// Reset discards the current batch and returns to idle. A gateway response
// still in flight for the discarded run is dropped when it arrives. The
// ledger is untouched.
func (e *Engine) Reset() Snapshot {
	e.mu.Lock()
	e.batch = domain.NewIdleBatch()
	e.mu.Unlock()
	e.logger.Info().Msg("engine: reset to idle")
	return e.Snapshot()
}

// drive is the single loop advancing the run; at most one gateway call is
// outstanding at any time.
func (e *Engine) drive(runID string) {
	logger := e.logger.With().Str("run_id", runID).Logger()

	for {
		if e.ctx.Err() != nil {
			logger.Warn().Msg("engine: run interrupted by shutdown")
			return
		}

		e.mu.Lock()
		if e.batch.RunID != runID {
			e.mu.Unlock()
			logger.Debug().Msg("engine: run superseded, stopping")
			return
		}

		idx := e.batch.Cursor
		if idx < 0 || idx >= len(e.batch.Items) {
			e.batch.Status = domain.BatchStatusCompleted
			e.batch.Cursor = domain.CursorNone
			e.batch.FinishedAt = time.Now()
			completed, failed := e.batch.CompletedCount(), e.batch.FailedCount()
			e.mu.Unlock()
			logger.Info().Int("completed", completed).Int("failed", failed).Msg("engine: run completed")
			return
		}

		// Credits may have been drained by another consumer since admission,
		// so the balance is re-validated before every item.
		if e.ledger.Remaining() == 0 {
			for i := range e.batch.Items {
				if !e.batch.Items[i].Status.Terminal() {
					e.batch.Items[i].Status = domain.ItemStatusFailed
					e.batch.Items[i].ErrorDetail = domain.OutOfCreditsReason
				}
			}
			e.batch.Status = domain.BatchStatusAborted
			e.batch.Cursor = domain.CursorNone
			e.batch.FinishedAt = time.Now()
			e.mu.Unlock()
			logger.Warn().Msg("engine: run aborted, credits exhausted")
			return
		}

		e.batch.Items[idx].Status = domain.ItemStatusProcessing
		itemID := e.batch.Items[idx].ID
		source := e.batch.Items[idx].Source.Clone()
		opts := e.options
		e.mu.Unlock()

		result, err := e.retoucher.Retouch(e.ctx, source, opts)

		e.mu.Lock()
		if e.batch.RunID != runID {
			e.mu.Unlock()
			logger.Debug().Str("item_id", itemID).Msg("engine: discarding stale gateway response")
			return
		}
		if err != nil {
			e.batch.Items[idx].Status = domain.ItemStatusFailed
			e.batch.Items[idx].ErrorDetail = err.Error()
		} else {
			r := result.Clone()
			e.batch.Items[idx].Result = &r
			e.batch.Items[idx].Status = domain.ItemStatusCompleted
		}
		e.batch.Cursor = idx + 1
		e.mu.Unlock()

		if err != nil {
			logger.Error().Err(err).Str("item_id", itemID).Msg("engine: item failed")
		} else {
			remaining := e.ledger.ConsumeOne(e.ctx)
			logger.Info().Str("item_id", itemID).Int("credits_remaining", remaining).Msg("engine: item completed")
			e.emitCompletion(runID, itemID)
			e.archiveResult(logger, runID, itemID, result)
		}

		if e.stepDelay > 0 {
			select {
			case <-e.ctx.Done():
				logger.Warn().Msg("engine: run interrupted by shutdown")
				return
			case <-time.After(e.stepDelay):
			}
		}
	}
}

// emitCompletion fires the completion signal without blocking the loop;
// notifier failures are logged and otherwise ignored.
func (e *Engine) emitCompletion(runID, itemID string) {
	evt := notify.Event{
		Kind:       notify.EventRetouchCompleted,
		RunID:      runID,
		ItemID:     itemID,
		OccurredAt: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(e.ctx), 5*time.Second)
		defer cancel()
		if err := e.notifier.GenerationCompleted(ctx, evt); err != nil {
			e.logger.Warn().Err(err).Str("item_id", itemID).Msg("engine: completion notification failed")
		}
	}()
}

func (e *Engine) archiveResult(logger zerolog.Logger, runID, itemID string, result domain.ImagePayload) {
	if e.archive == nil {
		return
	}
	if _, err := e.archive.SaveResult(e.ctx, runID, itemID, result.Data, result.MIME); err != nil {
		logger.Warn().Err(err).Str("item_id", itemID).Msg("engine: archive result failed")
	}
}

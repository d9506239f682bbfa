// Package credits tracks the usage-credit balance that bounds how much work
// the batch engine may admit. The balance is a single non-negative integer
// persisted through an injected Store so a restart never restores spent
// credits.
package credits

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultStartingBalance seeds the ledger when the store has no value yet.
const DefaultStartingBalance = 3

// Store persists the balance across sessions. Load reports ok=false when no
// balance has ever been saved.
type Store interface {
	Load(ctx context.Context) (remaining int, ok bool, err error)
	Save(ctx context.Context, remaining int) error
}

// Ledger holds the in-memory balance and writes every decrement through to
// the store. Only successful generations consume a credit; nothing in this
// package ever increases the balance.
type Ledger struct {
	mu        sync.Mutex
	remaining int
	store     Store
	logger    zerolog.Logger
}

// Open loads the persisted balance, seeding the store with the default
// starting balance on first use.
func Open(ctx context.Context, store Store, logger zerolog.Logger) (*Ledger, error) {
	remaining, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("credits: load balance: %w", err)
	}
	if !ok {
		remaining = DefaultStartingBalance
		if err := store.Save(ctx, remaining); err != nil {
			return nil, fmt.Errorf("credits: seed balance: %w", err)
		}
	}
	if remaining < 0 {
		remaining = 0
	}
	return &Ledger{remaining: remaining, store: store, logger: logger}, nil
}

// Remaining returns the current balance.
func (l *Ledger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}

// ConsumeOne decrements the balance by one, floored at zero, and persists the
// new value immediately. The returned value is the balance after the
// decrement. A persistence failure is logged but does not undo the decrement;
// the in-memory balance stays authoritative for the running process.
func (l *Ledger) ConsumeOne(ctx context.Context) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.remaining > 0 {
		l.remaining--
	}
	if err := l.store.Save(ctx, l.remaining); err != nil {
		l.logger.Error().Err(err).Int("remaining", l.remaining).Msg("credits: persist balance failed")
	}
	return l.remaining
}

package domain

import "time"

// ItemStatus enumerates the lifecycle states of a single work item.
type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusProcessing ItemStatus = "processing"
	ItemStatusCompleted  ItemStatus = "completed"
	ItemStatusFailed     ItemStatus = "failed"
)

// Terminal reports whether the status is one of the two terminal states.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusCompleted || s == ItemStatusFailed
}

// BatchStatus enumerates the lifecycle states of a whole batch run.
type BatchStatus string

const (
	BatchStatusIdle      BatchStatus = "idle"
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusAborted   BatchStatus = "aborted"
)

// Mode enumerates the studio presentation modes.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
	ModeVideo  Mode = "video"
)

// EffectiveMode derives the mode a run actually executes in from the
// requested mode and the number of admitted items. More than one item always
// forces batch; a single item keeps a requested batch mode, otherwise single.
func EffectiveMode(requested Mode, admitted int) Mode {
	if admitted > 1 {
		return ModeBatch
	}
	if requested == ModeBatch {
		return ModeBatch
	}
	return ModeSingle
}

// CursorNone marks a batch with no item currently being processed, either
// before the run starts or after it reaches a terminal state.
const CursorNone = -1

// WorkItem tracks one submitted image through its processing lifecycle.
// Source is set at admission and never mutated; Result is set at most once,
// only on success; ErrorDetail only when the item failed.
type WorkItem struct {
	ID          string
	Source      ImagePayload
	Result      *ImagePayload
	Status      ItemStatus
	ErrorDetail string
}

// Batch is an ordered run of work items plus the processing cursor.
// Insertion order is processing order and is fixed once the run starts.
type Batch struct {
	RunID      string
	Items      []WorkItem
	Cursor     int
	Status     BatchStatus
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewIdleBatch returns an empty batch with no items and no cursor.
func NewIdleBatch() Batch {
	return Batch{Cursor: CursorNone, Status: BatchStatusIdle}
}

// Clone deep-copies the batch so snapshots never alias engine-owned state.
func (b Batch) Clone() Batch {
	out := b
	out.Items = make([]WorkItem, len(b.Items))
	copy(out.Items, b.Items)
	for i := range out.Items {
		if r := out.Items[i].Result; r != nil {
			c := r.Clone()
			out.Items[i].Result = &c
		}
		out.Items[i].Source = out.Items[i].Source.Clone()
	}
	return out
}

// CompletedCount returns how many items finished successfully.
func (b Batch) CompletedCount() int {
	n := 0
	for _, item := range b.Items {
		if item.Status == ItemStatusCompleted {
			n++
		}
	}
	return n
}

// FailedCount returns how many items failed.
func (b Batch) FailedCount() int {
	n := 0
	for _, item := range b.Items {
		if item.Status == ItemStatusFailed {
			n++
		}
	}
	return n
}

package domain

import "errors"

var (
	ErrNoCredits        = errors.New("no credits remaining")
	ErrBatchActive      = errors.New("a batch is already running")
	ErrNothingSubmitted = errors.New("no images submitted")
	ErrProviderFailure  = errors.New("provider failure")
)

// OutOfCreditsReason is recorded on every item aborted by mid-run credit
// exhaustion.
const OutOfCreditsReason = "Out of credits"

// Package gateway defines the contracts for the external generation services
// the studio sequences work through. Implementations are black boxes with
// high, uncontrolled latency; any failure surfaces as an opaque reason on the
// work item that triggered the call.
package gateway

import (
	"context"
	"fmt"

	"luxelens/internal/domain"
)

// Retoucher produces a retouched rendition of a jewelry photograph.
type Retoucher interface {
	Retouch(ctx context.Context, src domain.ImagePayload, opts domain.RetouchOptions) (domain.ImagePayload, error)
}

// Video references a generated video, fetchable at URL.
type Video struct {
	URL    string
	MIME   string
	Length int
}

// Animator turns a jewelry photograph into a short cinematic video. The
// underlying service runs a long-lived operation that is polled until a
// terminal state is reached.
type Animator interface {
	Animate(ctx context.Context, src domain.ImagePayload, aspect domain.AspectRatio) (*Video, error)
}

// GenerationError carries the opaque failure reason recorded on a work item.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return e.Reason
}

// Unwrap lets callers match the domain sentinel with errors.Is.
func (e *GenerationError) Unwrap() error {
	return domain.ErrProviderFailure
}

// Failure wraps a provider error into a GenerationError.
func Failure(format string, args ...any) error {
	return &GenerationError{Reason: fmt.Sprintf(format, args...)}
}

package pipeline

import "errors"

var (
	// ErrUnknownOutputKind means a request carried a discriminant with no template.
	ErrUnknownOutputKind = errors.New("unknown output kind")

	// ErrGenerationFailed wraps a text provider call that returned no response.
	// Nothing is persisted when it occurs.
	ErrGenerationFailed = errors.New("course generation failed")

	// ErrPersistence wraps a failed store write. It is never retried here.
	ErrPersistence = errors.New("failed to persist course")

	ErrContentMismatch = errors.New("content kind does not match request")
	ErrMissingImages   = errors.New("image asset map is nil")
)

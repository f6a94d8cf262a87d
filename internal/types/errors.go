package types

import "errors"

// ErrMissingKeyword is returned when a request has no keyword.
var ErrMissingKeyword = errors.New("generation request requires a keyword")

// ErrEmptyDraft is returned when the generator produced no usable body.
// This is the only error that aborts a run outright: every other collaborator
// failure degrades one feature instead.
var ErrEmptyDraft = errors.New("content generation returned an empty draft")

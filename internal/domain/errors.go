package domain

import "errors"

var (
	// ErrGenerationFailure means the text generation backend failed or
	// returned nothing usable.
	ErrGenerationFailure = errors.New("generation failure")
	// ErrParseFailure means generated text did not have the expected
	// structure.
	ErrParseFailure = errors.New("parse failure")
	// ErrProfileMissing means an operation needs a profile the user does
	// not have yet.
	ErrProfileMissing = errors.New("profile missing")
	ErrNotFound       = errors.New("not found")
)

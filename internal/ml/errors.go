package ml

import "errors"

var (
	// ErrMissingFeature is returned when a feature bundle lacks the kind a routine needs.
	ErrMissingFeature = errors.New("required feature not in bundle")
	// ErrTitleNotFound is returned by similarity lookups for an unknown title.
	ErrTitleNotFound = errors.New("title not found")
	// ErrNotFitted is returned by Transform calls made before Fit.
	ErrNotFitted = errors.New("transformer is not fitted")
	// ErrEmptyVocabulary means the corpus held no terms after tokenizing and stop-word removal.
	ErrEmptyVocabulary = errors.New("empty vocabulary; documents may only contain stop words")
	ErrInvalidK        = errors.New("invalid number of clusters or components")
	ErrEmptyLog        = errors.New("viewing log is empty")
)

package entities

import "errors"

// Domain errors
var (
	// Voice analysis errors
	ErrInvalidAudioReference = errors.New("invalid audio reference")
	ErrInvalidSegment        = errors.New("segment end must not precede start")

	// Rule configuration errors
	ErrUnknownKeywordCategory = errors.New("unknown keyword category")
	ErrOverlappingVocabulary  = errors.New("keyword vocabularies must be disjoint")
)

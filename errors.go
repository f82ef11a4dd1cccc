package linkify

import "errors"

// Sentinel errors for parser construction and segment decoding.
// Parsing itself never fails.
var (
	ErrInvalidDomain  = errors.New("invalid site domain")
	ErrInvalidMaxSize = errors.New("invalid max message size")

	// Segment decoding errors.
	ErrUnknownSegmentType   = errors.New("unknown segment type")
	ErrUnknownReferenceKind = errors.New("unknown link reference kind")
)

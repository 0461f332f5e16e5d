package interfaces

import "errors"

var (
	// ErrMissingKeyColumn is returned when no source column maps to the natural key
	ErrMissingKeyColumn = errors.New("missing key column")

	// ErrNoJSONObjectFound is returned when a completion reply contains no {...} span
	ErrNoJSONObjectFound = errors.New("no JSON object found")

	// ErrMalformedJSON is returned when the extracted span does not parse
	ErrMalformedJSON = errors.New("malformed JSON")

	// ErrSchemaMismatch is returned when a parsed document fails schema validation
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrExternalServiceUnavailable is returned when the completion service fails or times out
	ErrExternalServiceUnavailable = errors.New("external service unavailable")

	// ErrStorage wraps persistence failures
	ErrStorage = errors.New("storage error")

	ErrNotFound            = errors.New("not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidChatContext  = errors.New("invalid chat context")
)

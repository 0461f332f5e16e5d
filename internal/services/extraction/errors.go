package extraction

import (
	"fmt"

	"github.com/codelie14/zillasec/internal/interfaces"
)

// ErrorKind classifies an extraction failure
type ErrorKind string

const (
	KindNoJSONObject   ErrorKind = "no_json_object_found"
	KindMalformedJSON  ErrorKind = "malformed_json"
	KindSchemaMismatch ErrorKind = "schema_mismatch"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNoJSONObject:
		return interfaces.ErrNoJSONObjectFound
	case KindMalformedJSON:
		return interfaces.ErrMalformedJSON
	default:
		return interfaces.ErrSchemaMismatch
	}
}

// ExtractionError reports why a completion reply could not become a structured result.
// Raw is the unmodified reply. errors.Is matches the sentinel of Kind as well as Err.
type ExtractionError struct {
	Kind      ErrorKind
	Raw       string
	Violation string
	Err       error
}

func (e *ExtractionError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Violation != "" {
		msg += ": " + e.Violation
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func newError(kind ErrorKind, raw string, err error, format string, args ...any) *ExtractionError {
	return &ExtractionError{
		Kind:      kind,
		Raw:       raw,
		Violation: fmt.Sprintf(format, args...),
		Err:       err,
	}
}

package analysis

import (
	"fmt"

	"github.com/codelie14/zillasec/internal/interfaces"
)

// RowPersistenceError reports that an analysis was committed but its rows were not.
// The analysis record stays stored and is returned alongside this error.
type RowPersistenceError struct {
	AnalysisID string
	Rows       int
	Err        error
}

func (e *RowPersistenceError) Error() string {
	return fmt.Sprintf("analysis %s committed but its %d rows were not stored: %v", e.AnalysisID, e.Rows, e.Err)
}

// Unwrap exposes ErrStorage and the underlying storage error
func (e *RowPersistenceError) Unwrap() []error {
	return []error{interfaces.ErrStorage, e.Err}
}

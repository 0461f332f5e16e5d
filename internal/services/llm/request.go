package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codelie14/zillasec/internal/models"
)

// CompletionRequest is the instruction and row payload sent for one analysis
type CompletionRequest struct {
	SystemInstruction string
	Payload           string
	Truncated         bool
	RowsSent          int
	RowsTotal         int
}

// BuildRequest serializes rows as a JSON array of objects, absent fields as null.
// Only the first maxRows rows are sent; maxRows <= 0 sends every row.
// Truncation is reported on the request, it is not an error.
func BuildRequest(rows []models.NormalizedRecord, instruction string, maxRows int) (*CompletionRequest, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, fmt.Errorf("instruction is required")
	}

	sent := rows
	if maxRows > 0 && len(rows) > maxRows {
		sent = rows[:maxRows]
	}

	objects := make([]map[string]*string, len(sent))
	for i, r := range sent {
		objects[i] = r
	}

	payload, err := json.Marshal(objects)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize rows: %w", err)
	}

	return &CompletionRequest{
		SystemInstruction: instruction,
		Payload:           string(payload),
		Truncated:         len(sent) < len(rows),
		RowsSent:          len(sent),
		RowsTotal:         len(rows),
	}, nil
}

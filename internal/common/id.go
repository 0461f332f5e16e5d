package common

import (
	"fmt"

	"github.com/google/uuid"
)

// NewAnalysisID generates a unique analysis ID. Format: ana_<uuid>
func NewAnalysisID() string {
	return "ana_" + uuid.New().String()
}

// NewRowID derives a raw row ID from its analysis and position. Format: <analysis_id>/<position>
func NewRowID(analysisID string, position int) string {
	return fmt.Sprintf("%s/%06d", analysisID, position)
}

// NewTemplateID generates a unique template ID. Format: tpl_<uuid>
func NewTemplateID() string {
	return "tpl_" + uuid.New().String()
}

// NewConversationID generates a unique conversation ID. Format: conv_<uuid>
func NewConversationID() string {
	return "conv_" + uuid.New().String()
}

// NewAuditID generates a unique completion audit ID. Format: aud_<uuid>
func NewAuditID() string {
	return "aud_" + uuid.New().String()
}

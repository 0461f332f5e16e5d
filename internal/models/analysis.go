package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVariant names the JSON shape an analysis reply is validated against
type SchemaVariant string

const (
	// SchemaRiskSummary expects synthese/anomalies/risques/recommandations/metriques
	SchemaRiskSummary SchemaVariant = "risk_summary"
	// SchemaAccessReview expects the account-by-account review document
	SchemaAccessReview SchemaVariant = "access_review"
	// SchemaOpen accepts any JSON object
	SchemaOpen SchemaVariant = "open"
)

// Valid reports whether v is a known variant
func (v SchemaVariant) Valid() bool {
	switch v {
	case SchemaRiskSummary, SchemaAccessReview, SchemaOpen:
		return true
	}
	return false
}

// FileMetadata describes an uploaded source file
type FileMetadata struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Size    int64    `json:"size"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// AnalysisMetadata records how an analysis was produced
type AnalysisMetadata struct {
	Provider      string        `json:"provider"`
	Model         string        `json:"model"`
	SchemaVariant SchemaVariant `json:"schema_variant"`
	RowsSent      int           `json:"rows_sent"`
	RowsTotal     int           `json:"rows_total"`
	Truncated     bool          `json:"truncated"`
	Instruction   string        `json:"instruction"`
	TemplateID    string        `json:"template_id,omitempty"`
}

// StructuredResult is a validated analysis document.
// Document holds the JSON object exactly as it was sliced from the model reply.
type StructuredResult struct {
	Variant  SchemaVariant   `json:"variant"`
	Document json.RawMessage `json:"document"`
}

// Fields decodes the document into a generic map
func (r StructuredResult) Fields() (map[string]any, error) {
	var out map[string]any
	if err := r.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode unmarshals the document into v
func (r StructuredResult) Decode(v any) error {
	if len(r.Document) == 0 {
		return fmt.Errorf("empty analysis document")
	}
	if err := json.Unmarshal(r.Document, v); err != nil {
		return fmt.Errorf("failed to decode analysis document: %w", err)
	}
	return nil
}

// AnalysisRecord is one committed analysis. Written once, never modified.
type AnalysisRecord struct {
	ID        string           `json:"id" badgerhold:"key"` // ana_{uuid}
	File      FileMetadata     `json:"file"`
	Metadata  AnalysisMetadata `json:"metadata"`
	Result    StructuredResult `json:"result"`
	CreatedAt time.Time        `json:"created_at" badgerhold:"index"`
}

// RawAnalysisRow is one source row attached to an analysis, including rows without a key.
// Values holds present fields only. AnalysisID is not indexed because every row of a
// batch shares it and the rows are written in one transaction.
type RawAnalysisRow struct {
	ID         string            `json:"id" badgerhold:"key"` // {analysis_id}/{position}
	AnalysisID string            `json:"analysis_id"`
	Position   int               `json:"position"`
	Values     map[string]string `json:"values"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Fields returns the row as a normalized record
func (r RawAnalysisRow) Fields() NormalizedRecord {
	return NormalizedRecordFrom(r.Values)
}

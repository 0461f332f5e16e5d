package models

import "time"

// ChatContext selects which analyses a chat question is answered against
type ChatContext string

const (
	// ChatContextDatabase uses the most recent analyses
	ChatContextDatabase ChatContext = "database"
	// ChatContextFile uses one analysis
	ChatContextFile ChatContext = "file"
)

// Conversation is a stored chat exchange
type Conversation struct {
	ID         string      `json:"id" badgerhold:"key"` // conv_{uuid}
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Context    ChatContext `json:"context"`
	AnalysisID string      `json:"analysis_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at" badgerhold:"index"`
}

// CompletionAudit records one call to the completion service
type CompletionAudit struct {
	ID            string    `json:"id" badgerhold:"key"` // aud_{uuid}
	Timestamp     time.Time `json:"timestamp" badgerhold:"index"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	Operation     string    `json:"operation"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	PromptChars   int       `json:"prompt_chars"`
	ResponseChars int       `json:"response_chars"`
}

// DashboardMetrics summarizes stored analyses and identities
type DashboardMetrics struct {
	TotalAnalyses  int     `json:"total_analyses"`
	AvgRiskScore   float64 `json:"avg_risk_score"`
	TotalAnomalies int     `json:"total_anomalies"`
	TotalRisks     int     `json:"total_risks"`
	IdentityCount  int     `json:"identity_count"`
}

package interfaces

import (
	"context"
	"time"

	"github.com/codelie14/zillasec/internal/models"
)

// IdentityTx is the view of the identity store inside one reconciliation transaction
type IdentityTx interface {
	// AllKeys returns every natural key currently stored
	AllKeys() (map[string]struct{}, error)

	// BulkInsert creates one identity per record; every key must be new
	BulkInsert(records []models.NormalizedRecord, now time.Time) error

	// UpdateByKey overwrites all non-key attributes of an existing identity
	UpdateByKey(key string, fields models.NormalizedRecord, now time.Time) error
}

// IdentityStorage persists identity records keyed by CUID
type IdentityStorage interface {
	// Reconcile runs fn in a single transaction, committed only if fn returns nil
	Reconcile(ctx context.Context, fn func(tx IdentityTx) error) error

	GetIdentity(ctx context.Context, cuid string) (*models.IdentityRecord, error)
	ListIdentities(ctx context.Context, offset, limit int) ([]*models.IdentityRecord, error)
	CountIdentities(ctx context.Context) (int, error)
	DeleteIdentity(ctx context.Context, cuid string) error
}

// AnalysisStorage persists analyses and the rows they were computed from.
// InsertAnalysis and InsertRows commit independently.
type AnalysisStorage interface {
	InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) (string, error)
	InsertRows(ctx context.Context, rows []models.NormalizedRecord, analysisID string) error
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
	// ListAnalyses returns analyses newest first
	ListAnalyses(ctx context.Context, offset, limit int) ([]*models.AnalysisRecord, error)
	ListRows(ctx context.Context, analysisID string) ([]*models.RawAnalysisRow, error)
	CountAnalyses(ctx context.Context) (int, error)
}

// TemplateStorage persists instruction templates
type TemplateStorage interface {
	SaveTemplate(ctx context.Context, template *models.InstructionTemplate) error
	GetTemplate(ctx context.Context, id string) (*models.InstructionTemplate, error)
	ListTemplates(ctx context.Context, category models.TemplateCategory) ([]*models.InstructionTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	CountTemplates(ctx context.Context) (int, error)
}

// ConversationStorage persists chat exchanges
type ConversationStorage interface {
	SaveConversation(ctx context.Context, conversation *models.Conversation) error
	// ListConversations returns conversations newest first
	ListConversations(ctx context.Context, offset, limit int) ([]*models.Conversation, error)
}

// CompletionAuditStorage persists completion audit entries
type CompletionAuditStorage interface {
	SaveAudit(ctx context.Context, entry *models.CompletionAudit) error
	ListAudits(ctx context.Context, limit int) ([]*models.CompletionAudit, error)
}

// StorageManager aggregates every store backed by one database
type StorageManager interface {
	IdentityStorage() IdentityStorage
	AnalysisStorage() AnalysisStorage
	TemplateStorage() TemplateStorage
	ConversationStorage() ConversationStorage
	CompletionAuditStorage() CompletionAuditStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}

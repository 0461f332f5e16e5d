package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

// AuditLogger records completion calls
type AuditLogger interface {
	LogCompletion(ctx context.Context, entry *models.CompletionAudit) error
	GetLogs(ctx context.Context, limit int) ([]*models.CompletionAudit, error)
	ExportToJSON(ctx context.Context, w io.Writer) error
}

// StorageAuditLogger implements AuditLogger on top of CompletionAuditStorage
type StorageAuditLogger struct {
	storage interfaces.CompletionAuditStorage
	logger  arbor.ILogger
}

// NewStorageAuditLogger creates a new storage-backed audit logger
func NewStorageAuditLogger(storage interfaces.CompletionAuditStorage, logger arbor.ILogger) *StorageAuditLogger {
	return &StorageAuditLogger{
		storage: storage,
		logger:  logger,
	}
}

// LogCompletion stores one entry
func (l *StorageAuditLogger) LogCompletion(ctx context.Context, entry *models.CompletionAudit) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.logger.Debug().
		Str("operation", entry.Operation).
		Str("provider", entry.Provider).
		Bool("success", entry.Success).
		Int64("duration_ms", entry.DurationMs).
		Msg("Logging completion call")

	if err := l.storage.SaveAudit(ctx, entry); err != nil {
		l.logger.Error().Err(err).Str("operation", entry.Operation).Msg("Failed to insert audit log entry")
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// GetLogs returns the most recent entries
func (l *StorageAuditLogger) GetLogs(ctx context.Context, limit int) ([]*models.CompletionAudit, error) {
	return l.storage.ListAudits(ctx, limit)
}

// ExportToJSON writes every entry, newest first, as an indented JSON array
func (l *StorageAuditLogger) ExportToJSON(ctx context.Context, w io.Writer) error {
	logs, err := l.storage.ListAudits(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to query audit logs for export: %w", err)
	}
	if logs == nil {
		logs = []*models.CompletionAudit{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(logs); err != nil {
		return fmt.Errorf("failed to encode audit logs to JSON: %w", err)
	}

	l.logger.Info().Int("count", len(logs)).Msg("Exported audit logs to JSON")
	return nil
}

// NullAuditLogger discards entries
type NullAuditLogger struct{}

func NewNullAuditLogger() *NullAuditLogger {
	return &NullAuditLogger{}
}

func (l *NullAuditLogger) LogCompletion(ctx context.Context, entry *models.CompletionAudit) error {
	return nil
}

func (l *NullAuditLogger) GetLogs(ctx context.Context, limit int) ([]*models.CompletionAudit, error) {
	return []*models.CompletionAudit{}, nil
}

func (l *NullAuditLogger) ExportToJSON(ctx context.Context, w io.Writer) error {
	_, err := w.Write([]byte("[]"))
	return err
}

package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

// AuditStorage keeps the completion audit log
type AuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewAuditStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CompletionAuditStorage {
	return &AuditStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AuditStorage) SaveAudit(ctx context.Context, entry *models.CompletionAudit) error {
	if entry.ID == "" {
		entry.ID = common.NewAuditID()
	}
	if err := s.db.Store().Insert(entry.ID, entry); err != nil {
		return fmt.Errorf("%w: failed to save completion audit: %w", interfaces.ErrStorage, err)
	}
	return nil
}

// ListAudits returns the most recent entries first
func (s *AuditStorage) ListAudits(ctx context.Context, limit int) ([]*models.CompletionAudit, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("Timestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.CompletionAudit
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list completion audits: %w", interfaces.ErrStorage, err)
	}

	result := make([]*models.CompletionAudit, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}

package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

// AnalysisStorage implements interfaces.AnalysisStorage for Badger.
// Analyses and their rows are written in separate transactions.
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

// InsertAnalysis commits one analysis record and returns its id
func (s *AnalysisStorage) InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("%w: analysis record is nil", interfaces.ErrStorage)
	}
	if record.ID == "" {
		record.ID = common.NewAnalysisID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return "", fmt.Errorf("%w: failed to insert analysis: %w", interfaces.ErrStorage, err)
	}

	s.logger.Debug().Str("analysis_id", record.ID).Msg("Analysis record committed")
	return record.ID, nil
}

// InsertRows commits every row for analysisID in one transaction
func (s *AnalysisStorage) InsertRows(ctx context.Context, rows []models.NormalizedRecord, analysisID string) error {
	if analysisID == "" {
		return fmt.Errorf("%w: analysis id is required", interfaces.ErrStorage)
	}

	store := s.db.Store()
	now := time.Now()
	err := store.Badger().Update(func(txn *badger.Txn) error {
		for i, r := range rows {
			row := &models.RawAnalysisRow{
				ID:         common.NewRowID(analysisID, i),
				AnalysisID: analysisID,
				Position:   i,
				Values:     r.Present(),
				CreatedAt:  now,
			}
			if err := store.TxInsert(txn, row.ID, row); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: failed to insert analysis rows: %w", interfaces.ErrStorage, err)
	}

	s.logger.Debug().Str("analysis_id", analysisID).Int("rows", len(rows)).Msg("Analysis rows committed")
	return nil
}

func (s *AnalysisStorage) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	if err := s.db.Store().Get(id, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("analysis %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get analysis: %w", interfaces.ErrStorage, err)
	}
	record.ID = id
	return &record, nil
}

// ListAnalyses returns analyses newest first
func (s *AnalysisStorage) ListAnalyses(ctx context.Context, offset, limit int) ([]*models.AnalysisRecord, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Skip(offset)
	}

	var records []models.AnalysisRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list analyses: %w", interfaces.ErrStorage, err)
	}

	result := make([]*models.AnalysisRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

// ListRows returns the rows of one analysis in source order
func (s *AnalysisStorage) ListRows(ctx context.Context, analysisID string) ([]*models.RawAnalysisRow, error) {
	var rows []models.RawAnalysisRow
	query := badgerhold.Where("AnalysisID").Eq(analysisID).SortBy("Position")
	if err := s.db.Store().Find(&rows, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list analysis rows: %w", interfaces.ErrStorage, err)
	}

	result := make([]*models.RawAnalysisRow, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

func (s *AnalysisStorage) CountAnalyses(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.AnalysisRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count analyses: %w", interfaces.ErrStorage, err)
	}
	return int(count), nil
}

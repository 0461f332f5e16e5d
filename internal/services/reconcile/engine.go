// Package reconcile applies normalized identity batches to the identity store.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
	"github.com/codelie14/zillasec/internal/services/intake"
)

// Engine partitions a batch into new and existing identities and commits both sets in one transaction.
// Passes through the same Engine are serialized. Separate processes sharing a database are not.
type Engine struct {
	storage interfaces.IdentityStorage
	logger  arbor.ILogger
	now     func() time.Time
	mu      sync.Mutex
}

// NewEngine creates a reconciliation engine
func NewEngine(storage interfaces.IdentityStorage, logger arbor.ILogger) *Engine {
	return &Engine{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// ImportBatch reconciles records against the identity store.
// Keyless records are skipped and duplicate keys collapse to their last occurrence.
// On any error nothing is written and no outcome is returned.
func (e *Engine) ImportBatch(ctx context.Context, records []models.NormalizedRecord) (*models.ReconciliationOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	batch, skipped := intake.Deduplicate(records)
	outcome := &models.ReconciliationOutcome{Skipped: skipped}
	now := e.now()

	err := e.storage.Reconcile(ctx, func(tx interfaces.IdentityTx) error {
		existing, err := tx.AllKeys()
		if err != nil {
			return err
		}

		var inserts, updates []models.NormalizedRecord
		for _, r := range batch {
			if _, ok := existing[r.Key()]; ok {
				updates = append(updates, r)
			} else {
				inserts = append(inserts, r)
			}
		}

		if len(inserts) > 0 {
			if err := tx.BulkInsert(inserts, now); err != nil {
				return err
			}
		}
		for _, r := range updates {
			if err := tx.UpdateByKey(r.Key(), r, now); err != nil {
				return err
			}
		}

		outcome.Inserted = len(inserts)
		outcome.Updated = len(updates)
		return nil
	})
	if err != nil {
		e.logger.Error().Err(err).Int("records", len(batch)).Msg("Reconciliation failed, nothing committed")
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}

	e.logger.Info().
		Int("inserted", outcome.Inserted).
		Int("updated", outcome.Updated).
		Int("skipped", outcome.Skipped).
		Msg("Reconciliation committed")

	return outcome, nil
}

// ImportFile reads, normalizes and reconciles one spreadsheet
func (e *Engine) ImportFile(ctx context.Context, name string, data []byte) (*models.ReconciliationOutcome, error) {
	table, err := intake.ReadTable(name, data)
	if err != nil {
		return nil, err
	}
	for _, w := range table.Warnings {
		e.logger.Warn().Str("file", name).Int("row", w.Row).Msg(w.Message)
	}

	if !intake.HasKeyColumn(table.Columns) {
		return nil, fmt.Errorf("%w: %s has no column mapping to %s", interfaces.ErrMissingKeyColumn, name, models.FieldCUID)
	}

	return e.ImportBatch(ctx, intake.MapRows(table))
}

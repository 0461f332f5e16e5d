package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

// IdentityStorage implements interfaces.IdentityStorage for Badger
type IdentityStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewIdentityStorage creates a new IdentityStorage instance
func NewIdentityStorage(db *BadgerDB, logger arbor.ILogger) interfaces.IdentityStorage {
	return &IdentityStorage{
		db:     db,
		logger: logger,
	}
}

// Reconcile runs fn inside one read-write badger transaction.
// Nothing is written unless fn returns nil and the commit succeeds.
func (s *IdentityStorage) Reconcile(ctx context.Context, fn func(tx interfaces.IdentityTx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrStorage, err)
	}

	store := s.db.Store()
	err := store.Badger().Update(func(txn *badger.Txn) error {
		return fn(&identityTx{store: store, txn: txn})
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Identity reconciliation rolled back")
		if errors.Is(err, interfaces.ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: %w", interfaces.ErrStorage, err)
	}
	return nil
}

type identityTx struct {
	store *badgerhold.Store
	txn   *badger.Txn
}

func (t *identityTx) AllKeys() (map[string]struct{}, error) {
	var records []models.IdentityRecord
	if err := t.store.TxFind(t.txn, &records, nil); err != nil {
		return nil, fmt.Errorf("failed to read identity keys: %w", err)
	}
	keys := make(map[string]struct{}, len(records))
	for _, r := range records {
		keys[r.CUID] = struct{}{}
	}
	return keys, nil
}

func (t *identityTx) BulkInsert(records []models.NormalizedRecord, now time.Time) error {
	for _, r := range records {
		key := r.Key()
		if key == "" {
			return fmt.Errorf("cannot insert identity without cuid")
		}
		if err := t.store.TxInsert(t.txn, key, models.NewIdentityRecord(r, now)); err != nil {
			return fmt.Errorf("failed to insert identity %s: %w", key, err)
		}
	}
	return nil
}

func (t *identityTx) UpdateByKey(key string, fields models.NormalizedRecord, now time.Time) error {
	var existing models.IdentityRecord
	if err := t.store.TxGet(t.txn, key, &existing); err != nil {
		return fmt.Errorf("failed to load identity %s: %w", key, err)
	}
	existing.CUID = key
	existing.Overwrite(fields, now)
	if err := t.store.TxUpdate(t.txn, key, &existing); err != nil {
		return fmt.Errorf("failed to update identity %s: %w", key, err)
	}
	return nil
}

func (s *IdentityStorage) GetIdentity(ctx context.Context, cuid string) (*models.IdentityRecord, error) {
	var record models.IdentityRecord
	if err := s.db.Store().Get(cuid, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("identity %s: %w", cuid, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get identity: %w", interfaces.ErrStorage, err)
	}
	record.CUID = cuid
	return &record, nil
}

func (s *IdentityStorage) ListIdentities(ctx context.Context, offset, limit int) ([]*models.IdentityRecord, error) {
	query := badgerhold.Where("CUID").Ne("").SortBy("CUID")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Skip(offset)
	}

	var records []models.IdentityRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list identities: %w", interfaces.ErrStorage, err)
	}

	result := make([]*models.IdentityRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *IdentityStorage) CountIdentities(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.IdentityRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count identities: %w", interfaces.ErrStorage, err)
	}
	return int(count), nil
}

// DeleteIdentity removes one identity. Reconciliation never deletes.
func (s *IdentityStorage) DeleteIdentity(ctx context.Context, cuid string) error {
	if err := s.db.Store().Delete(cuid, &models.IdentityRecord{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("identity %s: %w", cuid, interfaces.ErrNotFound)
		}
		return fmt.Errorf("%w: failed to delete identity: %w", interfaces.ErrStorage, err)
	}
	s.logger.Info().Str("cuid", cuid).Msg("Identity deleted")
	return nil
}

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
	"github.com/codelie14/zillasec/internal/services/intake"
	"github.com/codelie14/zillasec/internal/storage/badger"
)

func newTestStorage(t *testing.T) interfaces.IdentityStorage {
	t.Helper()
	manager, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager.IdentityStorage()
}

func rec(fields map[string]string) models.NormalizedRecord {
	return models.NormalizedRecordFrom(fields)
}

func TestImportBatchPartitionsNewAndExisting(t *testing.T) {
	storage := newTestStorage(t)
	engine := NewEngine(storage, arbor.NewLogger())
	ctx := context.Background()

	_, err := engine.ImportBatch(ctx, []models.NormalizedRecord{
		rec(map[string]string{"cuid": "CD456", "nom": "Roe", "prenom": "John", "statut": "actif"}),
	})
	require.NoError(t, err)

	table := &intake.Table{
		Columns: []string{"CUID", "Nom", "Prenom", "Statut"},
		Rows: []map[string]string{
			{"CUID": "AB123", "Nom": "Doe", "Prenom": "Jane", "Statut": "actif"},
			{"CUID": " CD456 ", "Nom": " Roe-Smith ", "Prenom": "John", "Statut": "NaN"},
			{"CUID": "EF789", "Nom": "Poe", "Prenom": "Ed", "Statut": "desactive"},
		},
	}
	records := intake.MapRows(table)

	outcome, err := engine.ImportBatch(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Inserted)
	assert.Equal(t, 1, outcome.Updated)
	assert.Equal(t, 0, outcome.Skipped)

	got, err := storage.GetIdentity(ctx, "CD456")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"cuid":   "CD456",
		"nom":    "Roe-Smith",
		"prenom": "John",
	}, got.Fields().Present())

	count, err := storage.CountIdentities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestImportBatchCountsDistinctKeys(t *testing.T) {
	storage := newTestStorage(t)
	engine := NewEngine(storage, arbor.NewLogger())
	ctx := context.Background()

	_, err := engine.ImportBatch(ctx, []models.NormalizedRecord{rec(map[string]string{"cuid": "B"})})
	require.NoError(t, err)

	batch := []models.NormalizedRecord{
		rec(map[string]string{"cuid": "A", "nom": "first"}),
		rec(map[string]string{"cuid": "B"}),
		rec(map[string]string{"nom": "no key"}),
		rec(map[string]string{"cuid": "A", "nom": "last"}),
		rec(map[string]string{"cuid": "C"}),
	}

	outcome, err := engine.ImportBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Inserted+outcome.Updated)
	assert.Equal(t, 1, outcome.Updated)
	assert.Equal(t, 1, outcome.Skipped)

	got, err := storage.GetIdentity(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, got.Nom)
	assert.Equal(t, "last", *got.Nom)
}

func TestImportBatchLargeBatch(t *testing.T) {
	storage := newTestStorage(t)
	engine := NewEngine(storage, arbor.NewLogger())
	ctx := context.Background()

	const n = 5000
	batch := make([]models.NormalizedRecord, 0, n+1)
	for i := 0; i < n; i++ {
		batch = append(batch, rec(map[string]string{
			"cuid":      fmt.Sprintf("CU%05d", i),
			"nom":       "Doe",
			"prenom":    "Jane",
			"statut":    "actif",
			"telephone": "0600000000",
		}))
	}
	batch = append(batch, rec(map[string]string{"nom": "no key"}))

	outcome, err := engine.ImportBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, &models.ReconciliationOutcome{Inserted: n, Skipped: 1}, outcome)

	count, err := storage.CountIdentities(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)

	outcome, err = engine.ImportBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, &models.ReconciliationOutcome{Updated: n, Skipped: 1}, outcome)

	count, err = storage.CountIdentities(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestImportFile(t *testing.T) {
	storage := newTestStorage(t)
	engine := NewEngine(storage, arbor.NewLogger())
	ctx := context.Background()

	outcome, err := engine.ImportFile(ctx, "gnoc.csv", []byte("CUID,Nom,Téléphone\nAB123,Doe,0600000000\n,Ghost,\n"))
	require.NoError(t, err)
	assert.Equal(t, &models.ReconciliationOutcome{Inserted: 1, Skipped: 1}, outcome)

	got, err := storage.GetIdentity(ctx, "AB123")
	require.NoError(t, err)
	require.NotNil(t, got.Telephone)
	assert.Equal(t, "0600000000", *got.Telephone)

	_, err = engine.ImportFile(ctx, "nokey.csv", []byte("Nom,Prenom\nDoe,Jane\n"))
	assert.ErrorIs(t, err, interfaces.ErrMissingKeyColumn)
}

type failingStorage struct {
	interfaces.IdentityStorage
	updateErr error
	committed bool
}

func (f *failingStorage) Reconcile(ctx context.Context, fn func(tx interfaces.IdentityTx) error) error {
	if err := fn(&failingTx{updateErr: f.updateErr}); err != nil {
		return errors.Join(interfaces.ErrStorage, err)
	}
	f.committed = true
	return nil
}

type failingTx struct {
	updateErr error
}

func (t *failingTx) AllKeys() (map[string]struct{}, error) {
	return map[string]struct{}{"A": {}}, nil
}

func (t *failingTx) BulkInsert(records []models.NormalizedRecord, now time.Time) error {
	return nil
}

func (t *failingTx) UpdateByKey(key string, fields models.NormalizedRecord, now time.Time) error {
	return t.updateErr
}

func TestImportBatchFailureReturnsNoOutcome(t *testing.T) {
	storage := &failingStorage{updateErr: errors.New("disk full")}
	engine := NewEngine(storage, arbor.NewLogger())

	outcome, err := engine.ImportBatch(context.Background(), []models.NormalizedRecord{
		rec(map[string]string{"cuid": "A"}),
		rec(map[string]string{"cuid": "B"}),
	})
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, interfaces.ErrStorage)
	assert.False(t, storage.committed)
}

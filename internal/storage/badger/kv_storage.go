package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/codelie14/zillasec/internal/interfaces"
)

// KVStorage holds provider API keys and other local settings.
// Names are folded to lower case; values are never logged.
type KVStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewKVStorage creates the settings store
func NewKVStorage(db *BadgerDB, logger arbor.ILogger) interfaces.KeyValueStorage {
	return &KVStorage{
		db:     db,
		logger: logger,
	}
}

func settingName(key string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(key))
	if name == "" {
		return "", fmt.Errorf("%w: setting name cannot be empty", interfaces.ErrStorage)
	}
	return name, nil
}

func (s *KVStorage) Get(ctx context.Context, key string) (string, error) {
	name, err := settingName(key)
	if err != nil {
		return "", err
	}

	var setting interfaces.KeyValuePair
	switch err := s.db.Store().Get(name, &setting); {
	case errors.Is(err, badgerhold.ErrNotFound):
		return "", interfaces.ErrKeyNotFound
	case err != nil:
		return "", fmt.Errorf("%w: failed to read setting %s: %w", interfaces.ErrStorage, name, err)
	}
	return setting.Value, nil
}

// Set writes the setting in one transaction so CreatedAt survives a concurrent rewrite
func (s *KVStorage) Set(ctx context.Context, key string, value string, description string) error {
	name, err := settingName(key)
	if err != nil {
		return err
	}

	now := time.Now()
	store := s.db.Store()
	err = store.Badger().Update(func(txn *badger.Txn) error {
		setting := interfaces.KeyValuePair{
			Key:         name,
			Value:       value,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		var previous interfaces.KeyValuePair
		switch err := store.TxGet(txn, name, &previous); {
		case err == nil:
			setting.CreatedAt = previous.CreatedAt
		case !errors.Is(err, badgerhold.ErrNotFound):
			return err
		}
		return store.TxUpsert(txn, name, &setting)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to write setting %s: %w", interfaces.ErrStorage, name, err)
	}

	s.logger.Debug().Str("key", name).Msg("Setting written")
	return nil
}

func (s *KVStorage) Delete(ctx context.Context, key string) error {
	name, err := settingName(key)
	if err != nil {
		return err
	}

	switch err := s.db.Store().Delete(name, &interfaces.KeyValuePair{}); {
	case errors.Is(err, badgerhold.ErrNotFound):
		return interfaces.ErrKeyNotFound
	case err != nil:
		return fmt.Errorf("%w: failed to delete setting %s: %w", interfaces.ErrStorage, name, err)
	}

	s.logger.Debug().Str("key", name).Msg("Setting deleted")
	return nil
}

// List returns every setting, most recently written first
func (s *KVStorage) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	var settings []interfaces.KeyValuePair
	if err := s.db.Store().Find(&settings, badgerhold.Where("Key").Ne("").SortBy("UpdatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("%w: failed to list settings: %w", interfaces.ErrStorage, err)
	}
	return settings, nil
}

package badger

import (
	"errors"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/codelie14/zillasec/internal/common"
)

// BadgerDB owns the badgerhold store shared by the identity, analysis and settings stores
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	path   string
}

// NewBadgerDB opens the ZillaSec database directory, wiping it first when ResetOnStartup is set
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	if config.Path == "" {
		return nil, errors.New("badger path is not configured")
	}

	if config.ResetOnStartup {
		if err := resetDatabase(logger, config.Path); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", config.Path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		logger.Error().Err(err).Str("path", config.Path).Msg("Identity database could not be opened")
		return nil, fmt.Errorf("failed to open badger database at %s: %w", config.Path, err)
	}

	logger.Debug().
		Str("path", config.Path).
		Bool("reset", config.ResetOnStartup).
		Msg("Identity database opened")

	return &BadgerDB{store: store, logger: logger, path: config.Path}, nil
}

func resetDatabase(logger arbor.ILogger, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	logger.Warn().Str("path", path).Msg("Discarding identities and analyses (reset_on_startup)")
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to reset database %s: %w", path, err)
	}
	return nil
}

func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Path is the directory the database was opened from
func (b *BadgerDB) Path() string {
	return b.path
}

func (b *BadgerDB) Close() error {
	if b.store == nil {
		return nil
	}
	b.logger.Debug().Str("path", b.path).Msg("Closing identity database")
	return b.store.Close()
}

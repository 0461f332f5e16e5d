package storage

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/storage/badger"
)

// BackendBadger is the only storage backend; an empty type selects it
const BackendBadger = "badger"

// NewStorageManager opens the backend named by config.Storage.Type
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	backend := strings.ToLower(strings.TrimSpace(config.Storage.Type))
	if backend == "" {
		backend = BackendBadger
	}

	switch backend {
	case BackendBadger:
		logger.Debug().Str("backend", backend).Str("path", config.Storage.Badger.Path).Msg("Opening storage backend")
		return badger.NewManager(logger, &config.Storage.Badger)
	default:
		return nil, fmt.Errorf("%w: unsupported storage type %q, expected %q", interfaces.ErrStorage, config.Storage.Type, BackendBadger)
	}
}

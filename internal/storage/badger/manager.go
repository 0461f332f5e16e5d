package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db           *BadgerDB
	identity     interfaces.IdentityStorage
	analysis     interfaces.AnalysisStorage
	template     interfaces.TemplateStorage
	conversation interfaces.ConversationStorage
	audit        interfaces.CompletionAuditStorage
	kv           interfaces.KeyValueStorage
	logger       arbor.ILogger
}

// NewManager opens the database and builds every store on top of it
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := newManager(db, logger)
	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")
	return manager, nil
}

func newManager(db *BadgerDB, logger arbor.ILogger) *Manager {
	return &Manager{
		db:           db,
		identity:     NewIdentityStorage(db, logger),
		analysis:     NewAnalysisStorage(db, logger),
		template:     NewTemplateStorage(db, logger),
		conversation: NewConversationStorage(db, logger),
		audit:        NewAuditStorage(db, logger),
		kv:           NewKVStorage(db, logger),
		logger:       logger,
	}
}

func (m *Manager) IdentityStorage() interfaces.IdentityStorage {
	return m.identity
}

func (m *Manager) AnalysisStorage() interfaces.AnalysisStorage {
	return m.analysis
}

func (m *Manager) TemplateStorage() interfaces.TemplateStorage {
	return m.template
}

func (m *Manager) ConversationStorage() interfaces.ConversationStorage {
	return m.conversation
}

func (m *Manager) CompletionAuditStorage() interfaces.CompletionAuditStorage {
	return m.audit
}

func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

// ConversationStorage implements interfaces.ConversationStorage for Badger
type ConversationStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewConversationStorage creates a new ConversationStorage instance
func NewConversationStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ConversationStorage {
	return &ConversationStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ConversationStorage) SaveConversation(ctx context.Context, conversation *models.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = common.NewConversationID()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	if err := s.db.Store().Insert(conversation.ID, conversation); err != nil {
		return fmt.Errorf("%w: failed to save conversation: %w", interfaces.ErrStorage, err)
	}
	return nil
}

func (s *ConversationStorage) ListConversations(ctx context.Context, offset, limit int) ([]*models.Conversation, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Skip(offset)
	}

	var conversations []models.Conversation
	if err := s.db.Store().Find(&conversations, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list conversations: %w", interfaces.ErrStorage, err)
	}

	result := make([]*models.Conversation, len(conversations))
	for i := range conversations {
		result[i] = &conversations[i]
	}
	return result, nil
}

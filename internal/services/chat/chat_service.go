// Package chat answers free-form questions about stored analyses.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

const (
	databaseInstruction = "En vous basant sur ces données d'analyse de la base de données, répondez à la question suivante : %s"
	fileInstruction     = "En vous basant sur les données de ce fichier d'analyse, répondez à la question suivante : %s"

	defaultContextLimit = 10
)

// ChatService sends a question plus analysis context to the completion service
type ChatService struct {
	completion    interfaces.CompletionService
	analyses      interfaces.AnalysisStorage
	conversations interfaces.ConversationStorage
	logger        arbor.ILogger
	contextLimit  int
	now           func() time.Time
}

// NewChatService creates a new chat service. contextLimit <= 0 uses 10 analyses.
func NewChatService(
	completion interfaces.CompletionService,
	analyses interfaces.AnalysisStorage,
	conversations interfaces.ConversationStorage,
	logger arbor.ILogger,
	contextLimit int,
) *ChatService {
	if contextLimit <= 0 {
		contextLimit = defaultContextLimit
	}
	return &ChatService{
		completion:    completion,
		analyses:      analyses,
		conversations: conversations,
		logger:        logger,
		contextLimit:  contextLimit,
		now:           time.Now,
	}
}

// Ask answers question against the latest analyses (database) or one analysis (file)
// and stores the exchange.
func (s *ChatService) Ask(ctx context.Context, question string, kind models.ChatContext, analysisID string) (*models.Conversation, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	var (
		contextData any
		instruction string
	)
	switch kind {
	case models.ChatContextDatabase:
		records, err := s.analyses.ListAnalyses(ctx, 0, s.contextLimit)
		if err != nil {
			return nil, err
		}
		contextData = records
		instruction = fmt.Sprintf(databaseInstruction, question)
		analysisID = ""
	case models.ChatContextFile:
		if analysisID == "" {
			return nil, fmt.Errorf("%w: file context needs an analysis id", interfaces.ErrInvalidChatContext)
		}
		record, err := s.analyses.GetAnalysis(ctx, analysisID)
		if err != nil {
			return nil, err
		}
		contextData = record
		instruction = fmt.Sprintf(fileInstruction, question)
	default:
		return nil, fmt.Errorf("%w: %q", interfaces.ErrInvalidChatContext, kind)
	}

	payload, err := json.Marshal(contextData)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize chat context: %w", err)
	}

	s.logger.Debug().
		Str("context", string(kind)).
		Str("analysis_id", analysisID).
		Int("context_chars", len(payload)).
		Msg("Processing chat question")

	completion, err := s.completion.Complete(ctx, instruction, string(payload))
	if err != nil {
		return nil, err
	}

	conversation := &models.Conversation{
		Question:   question,
		Answer:     completion.Text,
		Context:    kind,
		AnalysisID: analysisID,
		CreatedAt:  s.now(),
	}
	if err := s.conversations.SaveConversation(ctx, conversation); err != nil {
		s.logger.Error().Err(err).Msg("Failed to store conversation")
		return nil, err
	}

	s.logger.Info().
		Str("conversation_id", conversation.ID).
		Str("context", string(kind)).
		Msg("Chat question answered")
	return conversation, nil
}

// History returns stored conversations newest first
func (s *ChatService) History(ctx context.Context, offset, limit int) ([]*models.Conversation, error) {
	return s.conversations.ListConversations(ctx, offset, limit)
}

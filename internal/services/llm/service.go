package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

// Generator produces content for a request. ProviderFactory is the production implementation.
type Generator interface {
	GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error)
}

// CompletionService implements interfaces.CompletionService with one attempt per call,
// bounded by timeout, and an audit entry per call.
type CompletionService struct {
	generator Generator
	audit     AuditLogger
	timeout   time.Duration
	model     string
	operation string
	logger    arbor.ILogger
}

// NewCompletionService creates a completion service. timeout <= 0 leaves the caller's deadline in place.
func NewCompletionService(generator Generator, audit AuditLogger, timeout time.Duration, logger arbor.ILogger) *CompletionService {
	if audit == nil {
		audit = NewNullAuditLogger()
	}
	return &CompletionService{
		generator: generator,
		audit:     audit,
		timeout:   timeout,
		operation: "completion",
		logger:    logger,
	}
}

// WithModel returns a copy that requests model instead of the provider default
func (s *CompletionService) WithModel(model string) *CompletionService {
	c := *s
	c.model = model
	return &c
}

// WithOperation returns a copy whose audit entries carry operation
func (s *CompletionService) WithOperation(operation string) *CompletionService {
	c := *s
	c.operation = operation
	return &c
}

// Complete sends one instruction and one payload.
// Failures, empty replies and deadlines wrap ErrExternalServiceUnavailable.
func (s *CompletionService) Complete(ctx context.Context, systemInstruction, userContent string) (*interfaces.Completion, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.generator.GenerateContent(ctx, &ContentRequest{
		SystemInstruction: systemInstruction,
		UserContent:       userContent,
		Model:             s.model,
	})
	if err == nil && (resp == nil || resp.Text == "") {
		err = fmt.Errorf("empty reply")
	}
	duration := time.Since(start)

	entry := &models.CompletionAudit{
		Timestamp:   start,
		Model:       s.model,
		Operation:   s.operation,
		Success:     err == nil,
		DurationMs:  duration.Milliseconds(),
		PromptChars: len(systemInstruction) + len(userContent),
	}
	if resp != nil {
		entry.Provider = string(resp.Provider)
		entry.Model = resp.Model
		entry.ResponseChars = len(resp.Text)
	}
	if err != nil {
		entry.Error = err.Error()
	}
	// a fresh context so an expired deadline does not also drop the audit entry
	if auditErr := s.audit.LogCompletion(context.WithoutCancel(ctx), entry); auditErr != nil {
		s.logger.Warn().Err(auditErr).Msg("Failed to record completion audit entry")
	}

	if err != nil {
		s.logger.Error().Err(err).Int64("duration_ms", duration.Milliseconds()).Msg("Completion call failed")
		return nil, fmt.Errorf("%w: %w", interfaces.ErrExternalServiceUnavailable, err)
	}

	s.logger.Debug().
		Str("provider", string(resp.Provider)).
		Str("model", resp.Model).
		Int("response_chars", len(resp.Text)).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("Completion received")

	return &interfaces.Completion{
		Text:     resp.Text,
		Provider: string(resp.Provider),
		Model:    resp.Model,
	}, nil
}

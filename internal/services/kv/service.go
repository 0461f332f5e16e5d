// Package kv stores provider API keys in the local database.
package kv

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/interfaces"
)

// Names of the stored provider keys, as looked up by common.ResolveAPIKey
const (
	KeyGemini     = "gemini_api_key"
	KeyClaude     = "anthropic_api_key"
	KeyOpenRouter = "openrouter_api_key"
)

var knownKeys = map[string]string{
	KeyGemini:     "Google Gemini API key",
	KeyClaude:     "Anthropic Claude API key",
	KeyOpenRouter: "OpenRouter API key",
}

// KnownKeys returns the accepted key names in sorted order
func KnownKeys() []string {
	names := make([]string, 0, len(knownKeys))
	for name := range knownKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Service manages stored API keys
type Service struct {
	storage interfaces.KeyValueStorage
	logger  arbor.ILogger
}

// NewService creates a new key service
func NewService(storage interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Set stores an API key. Only known provider key names are accepted.
func (s *Service) Set(ctx context.Context, key string, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	description, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("unknown key %q, expected one of %s", key, strings.Join(KnownKeys(), ", "))
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value for %s cannot be empty", key)
	}

	if err := s.storage.Set(ctx, key, strings.TrimSpace(value), description); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to store API key")
		return err
	}

	s.logger.Info().Str("key", key).Msg("Stored API key")
	return nil
}

// Delete removes a stored API key
func (s *Service) Delete(ctx context.Context, key string) error {
	err := s.storage.Delete(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to delete API key")
		return err
	}

	s.logger.Info().Str("key", key).Msg("Deleted API key")
	return nil
}

// List returns stored keys with their values masked
func (s *Service) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	pairs, err := s.storage.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list API keys")
		return nil, err
	}

	for i := range pairs {
		pairs[i].Value = Mask(pairs[i].Value)
	}
	return pairs, nil
}

// Mask hides all but the last four characters of value
func Mask(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

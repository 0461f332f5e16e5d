// Package templates manages reusable analysis instructions.
package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

// Service provides business logic for instruction templates
type Service struct {
	storage      interfaces.TemplateStorage
	templatesDir string
	logger       arbor.ILogger
	now          func() time.Time
}

// NewService creates a new template service.
// templatesDir holds optional overrides of the built-in templates.
func NewService(storage interfaces.TemplateStorage, templatesDir string, logger arbor.ILogger) *Service {
	return &Service{
		storage:      storage,
		templatesDir: templatesDir,
		logger:       logger,
		now:          time.Now,
	}
}

// Create validates and stores a new template.
// A default template replaces any existing default in its category.
func (s *Service) Create(ctx context.Context, template *models.InstructionTemplate) error {
	if err := s.prepare(template); err != nil {
		return err
	}
	template.ID = ""
	template.UsageCount = 0
	template.LastUsed = nil
	template.CreatedAt = s.now()

	if template.IsDefault {
		if err := s.clearDefault(ctx, template.Category, ""); err != nil {
			return err
		}
	}

	if err := s.storage.SaveTemplate(ctx, template); err != nil {
		s.logger.Error().Err(err).Str("name", template.Name).Msg("Failed to create template")
		return err
	}

	s.logger.Info().
		Str("template_id", template.ID).
		Str("name", template.Name).
		Str("category", string(template.Category)).
		Msg("Template created")
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.InstructionTemplate, error) {
	return s.storage.GetTemplate(ctx, id)
}

// List returns templates in category, or every template when category is empty
func (s *Service) List(ctx context.Context, category models.TemplateCategory) ([]*models.InstructionTemplate, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("unknown template category %q", category)
	}
	return s.storage.ListTemplates(ctx, category)
}

// Update replaces the editable fields of an existing template.
// Usage statistics and creation time are kept.
func (s *Service) Update(ctx context.Context, template *models.InstructionTemplate) error {
	existing, err := s.storage.GetTemplate(ctx, template.ID)
	if err != nil {
		return err
	}
	if err := s.prepare(template); err != nil {
		return err
	}

	if template.IsDefault && (!existing.IsDefault || existing.Category != template.Category) {
		if err := s.clearDefault(ctx, template.Category, template.ID); err != nil {
			return err
		}
	}

	template.UsageCount = existing.UsageCount
	template.LastUsed = existing.LastUsed
	template.CreatedAt = existing.CreatedAt

	if err := s.storage.SaveTemplate(ctx, template); err != nil {
		s.logger.Error().Err(err).Str("template_id", template.ID).Msg("Failed to update template")
		return err
	}
	s.logger.Info().Str("template_id", template.ID).Msg("Template updated")
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("template_id", id).Msg("Template deleted")
	return nil
}

// Default returns the default template of category
func (s *Service) Default(ctx context.Context, category models.TemplateCategory) (*models.InstructionTemplate, error) {
	list, err := s.storage.ListTemplates(ctx, category)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		if t.IsDefault {
			return t, nil
		}
	}
	return nil, fmt.Errorf("default %s template: %w", category, interfaces.ErrNotFound)
}

// MarkUsed increments the usage counter of a template
func (s *Service) MarkUsed(ctx context.Context, id string) error {
	template, err := s.storage.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	template.UsageCount++
	template.LastUsed = &now
	return s.storage.SaveTemplate(ctx, template)
}

// SeedDefaults stores the built-in templates when no template exists yet
func (s *Service) SeedDefaults(ctx context.Context) error {
	count, err := s.storage.CountTemplates(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Debug().Int("count", count).Msg("Templates present, skipping seed")
		return nil
	}

	seed, err := builtinTemplates(s.templatesDir)
	if err != nil {
		return err
	}
	for _, t := range seed {
		if err := s.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to seed template %s: %w", t.Name, err)
		}
	}
	s.logger.Info().Int("count", len(seed)).Str("overrides", s.templatesDir).Msg("Built-in templates seeded")
	return nil
}

func (s *Service) prepare(template *models.InstructionTemplate) error {
	if template == nil {
		return errors.New("template is nil")
	}
	template.Name = strings.TrimSpace(template.Name)
	if template.Name == "" {
		return errors.New("template name is required")
	}
	if strings.TrimSpace(template.Content) == "" {
		return errors.New("template content is required")
	}
	if template.Category == "" {
		template.Category = models.TemplateCategoryAnalysis
	}
	if !template.Category.Valid() {
		return fmt.Errorf("unknown template category %q", template.Category)
	}
	if template.Type == "" {
		template.Type = models.SchemaRiskSummary
	}
	if !template.Type.Valid() {
		return fmt.Errorf("unknown schema variant %q", template.Type)
	}
	return nil
}

// clearDefault unsets the default flag of every template in category except keepID
func (s *Service) clearDefault(ctx context.Context, category models.TemplateCategory, keepID string) error {
	list, err := s.storage.ListTemplates(ctx, category)
	if err != nil {
		return err
	}
	for _, t := range list {
		if !t.IsDefault || t.ID == keepID {
			continue
		}
		t.IsDefault = false
		if err := s.storage.SaveTemplate(ctx, t); err != nil {
			return err
		}
		s.logger.Debug().Str("template_id", t.ID).Msg("Previous default template cleared")
	}
	return nil
}

package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

// TemplateStorage implements interfaces.TemplateStorage for Badger
type TemplateStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTemplateStorage creates a new TemplateStorage instance
func NewTemplateStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TemplateStorage {
	return &TemplateStorage{
		db:     db,
		logger: logger,
	}
}

// SaveTemplate inserts or replaces a template, assigning an id when missing
func (s *TemplateStorage) SaveTemplate(ctx context.Context, template *models.InstructionTemplate) error {
	if template.ID == "" {
		template.ID = common.NewTemplateID()
	}
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now()
	}
	if err := s.db.Store().Upsert(template.ID, template); err != nil {
		return fmt.Errorf("%w: failed to save template: %w", interfaces.ErrStorage, err)
	}
	return nil
}

func (s *TemplateStorage) GetTemplate(ctx context.Context, id string) (*models.InstructionTemplate, error) {
	var template models.InstructionTemplate
	if err := s.db.Store().Get(id, &template); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("template %s: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get template: %w", interfaces.ErrStorage, err)
	}
	template.ID = id
	return &template, nil
}

// ListTemplates returns templates ordered by name; an empty category lists all
func (s *TemplateStorage) ListTemplates(ctx context.Context, category models.TemplateCategory) ([]*models.InstructionTemplate, error) {
	query := badgerhold.Where("ID").Ne("")
	if category != "" {
		query = query.And("Category").Eq(category)
	}
	query = query.SortBy("Name")

	var templates []models.InstructionTemplate
	if err := s.db.Store().Find(&templates, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list templates: %w", interfaces.ErrStorage, err)
	}

	result := make([]*models.InstructionTemplate, len(templates))
	for i := range templates {
		result[i] = &templates[i]
	}
	return result, nil
}

func (s *TemplateStorage) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.InstructionTemplate{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("template %s: %w", id, interfaces.ErrNotFound)
		}
		return fmt.Errorf("%w: failed to delete template: %w", interfaces.ErrStorage, err)
	}
	return nil
}

func (s *TemplateStorage) CountTemplates(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.InstructionTemplate{}, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count templates: %w", interfaces.ErrStorage, err)
	}
	return int(count), nil
}

// Package analysis runs AI analyses over tabular personnel data and stores their results.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
	"github.com/codelie14/zillasec/internal/services/extraction"
	"github.com/codelie14/zillasec/internal/services/intake"
	"github.com/codelie14/zillasec/internal/services/llm"
	"github.com/codelie14/zillasec/internal/services/templates"
)

// Config controls request size and the default reply schema
type Config struct {
	MaxInputRows       int
	Variant            models.SchemaVariant
	DefaultInstruction string
}

// TemplateResolver looks up instruction templates. templates.Service implements it.
type TemplateResolver interface {
	Get(ctx context.Context, id string) (*models.InstructionTemplate, error)
	Default(ctx context.Context, category models.TemplateCategory) (*models.InstructionTemplate, error)
	MarkUsed(ctx context.Context, id string) error
}

// AnalyzeRequest is one analysis over already normalized rows.
// Instruction wins over TemplateID, then the configured default instruction,
// then the default analysis template, then the built-in instruction for the variant.
type AnalyzeRequest struct {
	File        models.FileMetadata
	Rows        []models.NormalizedRecord
	Instruction string
	TemplateID  string
	Variant     models.SchemaVariant
}

// Options select the instruction for AnalyzeFile
type Options struct {
	Instruction string
	TemplateID  string
	Variant     models.SchemaVariant
}

// Service orchestrates completion, extraction and two-phase persistence
type Service struct {
	config     Config
	storage    interfaces.AnalysisStorage
	completion interfaces.CompletionService
	templates  TemplateResolver
	pipeline   *extraction.Pipeline
	logger     arbor.ILogger
	now        func() time.Time
}

// NewService creates an analysis service. resolver may be nil.
func NewService(
	config Config,
	storage interfaces.AnalysisStorage,
	completion interfaces.CompletionService,
	resolver TemplateResolver,
	logger arbor.ILogger,
) (*Service, error) {
	if config.Variant == "" {
		config.Variant = models.SchemaRiskSummary
	}
	pipeline, err := extraction.NewPipeline(config.Variant)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:     config,
		storage:    storage,
		completion: completion,
		templates:  resolver,
		pipeline:   pipeline,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Analyze sends rows to the completion service, validates the reply and stores the result.
//
// Extraction failures return the *extraction.ExtractionError and persist nothing.
// When the analysis commits but its rows do not, the committed record is returned
// together with a *RowPersistenceError.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*models.AnalysisRecord, error) {
	instruction, variant, templateID, err := s.resolveInstruction(ctx, req)
	if err != nil {
		return nil, err
	}

	request, err := llm.BuildRequest(req.Rows, instruction, s.config.MaxInputRows)
	if err != nil {
		return nil, err
	}
	if request.Truncated {
		s.logger.Warn().
			Str("file", req.File.Name).
			Int("rows_sent", request.RowsSent).
			Int("rows_total", request.RowsTotal).
			Msg("Analysis payload truncated")
	}

	completion, err := s.completion.Complete(ctx, request.SystemInstruction, request.Payload)
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.ExtractAs(completion.Text, variant)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", req.File.Name).Str("variant", string(variant)).Msg("Completion reply rejected")
		return nil, err
	}

	record := &models.AnalysisRecord{
		File: req.File,
		Metadata: models.AnalysisMetadata{
			Provider:      completion.Provider,
			Model:         completion.Model,
			SchemaVariant: variant,
			RowsSent:      request.RowsSent,
			RowsTotal:     request.RowsTotal,
			Truncated:     request.Truncated,
			Instruction:   instruction,
			TemplateID:    templateID,
		},
		Result:    *result,
		CreatedAt: s.now(),
	}

	id, err := s.storage.InsertAnalysis(ctx, record)
	if err != nil {
		s.logger.Error().Err(err).Str("file", req.File.Name).Msg("Failed to store analysis")
		return nil, err
	}
	record.ID = id

	if err := s.storage.InsertRows(ctx, req.Rows, id); err != nil {
		s.logger.Error().Err(err).Str("analysis_id", id).Int("rows", len(req.Rows)).Msg("Analysis stored without its rows")
		return record, &RowPersistenceError{AnalysisID: id, Rows: len(req.Rows), Err: err}
	}

	s.logger.Info().
		Str("analysis_id", id).
		Str("file", req.File.Name).
		Str("variant", string(variant)).
		Int("rows", len(req.Rows)).
		Bool("truncated", request.Truncated).
		Msg("Analysis committed")

	return record, nil
}

// AnalyzeFile reads a spreadsheet and analyzes every row, unmapped columns included
func (s *Service) AnalyzeFile(ctx context.Context, name string, data []byte, opts Options) (*models.AnalysisRecord, error) {
	table, err := intake.ReadTable(name, data)
	if err != nil {
		return nil, err
	}
	for _, w := range table.Warnings {
		s.logger.Warn().Str("file", name).Int("row", w.Row).Msg(w.Message)
	}

	rows := intake.MapAllColumns(table)
	return s.Analyze(ctx, AnalyzeRequest{
		File: models.FileMetadata{
			Name:    name,
			Type:    table.Type,
			Size:    int64(len(data)),
			Columns: table.Columns,
			Rows:    len(rows),
		},
		Rows:        rows,
		Instruction: opts.Instruction,
		TemplateID:  opts.TemplateID,
		Variant:     opts.Variant,
	})
}

func (s *Service) Get(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	return s.storage.GetAnalysis(ctx, id)
}

// List returns analyses newest first
func (s *Service) List(ctx context.Context, offset, limit int) ([]*models.AnalysisRecord, error) {
	return s.storage.ListAnalyses(ctx, offset, limit)
}

// Rows returns the source rows stored with an analysis
func (s *Service) Rows(ctx context.Context, id string) ([]*models.RawAnalysisRow, error) {
	if _, err := s.storage.GetAnalysis(ctx, id); err != nil {
		return nil, err
	}
	return s.storage.ListRows(ctx, id)
}

// resolveInstruction picks the instruction text and the variant its reply is validated against
func (s *Service) resolveInstruction(ctx context.Context, req AnalyzeRequest) (string, models.SchemaVariant, string, error) {
	variant := req.Variant
	if variant != "" && !variant.Valid() {
		return "", "", "", fmt.Errorf("unknown schema variant %q", variant)
	}

	if strings.TrimSpace(req.Instruction) != "" {
		if variant == "" {
			variant = s.config.Variant
		}
		return req.Instruction, variant, "", nil
	}

	if req.TemplateID != "" {
		if s.templates == nil {
			return "", "", "", fmt.Errorf("template %s: %w", req.TemplateID, interfaces.ErrNotFound)
		}
		tpl, err := s.templates.Get(ctx, req.TemplateID)
		if err != nil {
			return "", "", "", err
		}
		if variant == "" {
			variant = tpl.Type
		}
		s.markUsed(ctx, tpl.ID)
		return tpl.Content, variant, tpl.ID, nil
	}

	if strings.TrimSpace(s.config.DefaultInstruction) != "" && (variant == "" || variant == s.config.Variant) {
		return s.config.DefaultInstruction, s.config.Variant, "", nil
	}

	if s.templates != nil {
		tpl, err := s.templates.Default(ctx, models.TemplateCategoryAnalysis)
		switch {
		case err == nil && (variant == "" || tpl.Type == variant):
			s.markUsed(ctx, tpl.ID)
			return tpl.Content, tpl.Type, tpl.ID, nil
		case err != nil && !errors.Is(err, interfaces.ErrNotFound):
			s.logger.Warn().Err(err).Msg("Default template lookup failed, using built-in instruction")
		}
	}

	if variant == "" {
		variant = s.config.Variant
	}
	return templates.BuiltinInstruction(variant), variant, "", nil
}

func (s *Service) markUsed(ctx context.Context, id string) {
	if err := s.templates.MarkUsed(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("template_id", id).Msg("Failed to record template usage")
	}
}

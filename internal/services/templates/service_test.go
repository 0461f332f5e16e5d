package templates

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
	"github.com/codelie14/zillasec/internal/storage/badger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	manager, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return NewService(manager.TemplateStorage(), "", arbor.NewLogger())
}

func TestCreateValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.Error(t, svc.Create(ctx, &models.InstructionTemplate{Content: "x"}))
	assert.Error(t, svc.Create(ctx, &models.InstructionTemplate{Name: "n"}))
	assert.Error(t, svc.Create(ctx, &models.InstructionTemplate{Name: "n", Content: "x", Category: "weekly"}))

	tpl := &models.InstructionTemplate{Name: "  Risk  ", Content: "analyse"}
	require.NoError(t, svc.Create(ctx, tpl))
	assert.Equal(t, "Risk", tpl.Name)
	assert.Equal(t, models.TemplateCategoryAnalysis, tpl.Category)
	assert.Equal(t, models.SchemaRiskSummary, tpl.Type)
	assert.Regexp(t, `^tpl_`, tpl.ID)
}

func TestSingleDefaultPerCategory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := &models.InstructionTemplate{Name: "A", Content: "a", IsDefault: true}
	require.NoError(t, svc.Create(ctx, first))
	second := &models.InstructionTemplate{Name: "B", Content: "b", IsDefault: true}
	require.NoError(t, svc.Create(ctx, second))
	alert := &models.InstructionTemplate{Name: "C", Content: "c", Category: models.TemplateCategoryAlert, IsDefault: true}
	require.NoError(t, svc.Create(ctx, alert))

	def, err := svc.Default(ctx, models.TemplateCategoryAnalysis)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	def, err = svc.Default(ctx, models.TemplateCategoryAlert)
	require.NoError(t, err)
	assert.Equal(t, alert.ID, def.ID)

	_, err = svc.Default(ctx, models.TemplateCategoryReport)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestMarkUsedAndUpdateKeepsUsage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tpl := &models.InstructionTemplate{Name: "Risk", Content: "analyse"}
	require.NoError(t, svc.Create(ctx, tpl))

	require.NoError(t, svc.MarkUsed(ctx, tpl.ID))
	require.NoError(t, svc.MarkUsed(ctx, tpl.ID))

	got, err := svc.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsageCount)
	require.NotNil(t, got.LastUsed)

	require.NoError(t, svc.Update(ctx, &models.InstructionTemplate{ID: tpl.ID, Name: "Risk v2", Content: "analyse v2"}))
	got, err = svc.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Risk v2", got.Name)
	assert.Equal(t, 2, got.UsageCount)

	assert.ErrorIs(t, svc.MarkUsed(ctx, "tpl_missing"), interfaces.ErrNotFound)
	assert.ErrorIs(t, svc.Update(ctx, &models.InstructionTemplate{ID: "tpl_missing", Name: "x", Content: "y"}), interfaces.ErrNotFound)
}

func TestSeedDefaultsOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedDefaults(ctx))
	require.NoError(t, svc.SeedDefaults(ctx))

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	analysis, err := svc.List(ctx, models.TemplateCategoryAnalysis)
	require.NoError(t, err)
	require.Len(t, analysis, 2)

	def, err := svc.Default(ctx, models.TemplateCategoryAnalysis)
	require.NoError(t, err)
	assert.Equal(t, models.SchemaRiskSummary, def.Type)
	assert.Contains(t, def.Content, "score_risque")

	require.NoError(t, svc.Delete(ctx, def.ID))
	assert.ErrorIs(t, svc.Delete(ctx, def.ID), interfaces.ErrNotFound)

	_, err = svc.List(ctx, "weekly")
	assert.Error(t, err)
}

func TestBuiltinInstruction(t *testing.T) {
	assert.Contains(t, BuiltinInstruction(models.SchemaRiskSummary), "metriques")
	assert.Contains(t, BuiltinInstruction(models.SchemaAccessReview), "details_comptes")
	assert.NotEmpty(t, BuiltinInstruction(models.SchemaOpen))
}

package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelie14/zillasec/internal/models"
)

func TestEmbeddedTemplates(t *testing.T) {
	names, err := ListEmbeddedTemplates()
	require.NoError(t, err)
	assert.Equal(t, []string{"access_review", "open", "risk_summary"}, names)

	for _, name := range names {
		tpl, err := GetTemplate(name, "")
		require.NoError(t, err, name)
		assert.Equal(t, models.SchemaVariant(name), tpl.Type)
		assert.NotContains(t, tpl.Content, "\n")
	}

	risk, err := GetTemplate("risk_summary", "")
	require.NoError(t, err)
	assert.True(t, risk.IsDefault)
	assert.Equal(t, models.TemplateCategoryAnalysis, risk.Category)
	assert.Contains(t, risk.Content, `"metriques"`)
	assert.Contains(t, risk.Content, "d'accès")
}

func TestUserOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "risk_summary.toml"), []byte(`
name = "Risques maison"
type = "risk_summary"
content = "consigne maison"
`), 0644))

	tpl, err := GetTemplate("risk_summary", dir)
	require.NoError(t, err)
	assert.Equal(t, "Risques maison", tpl.Name)
	assert.Equal(t, "consigne maison", tpl.Content)
	assert.Equal(t, models.TemplateCategoryAnalysis, tpl.Category)

	tpl, err = GetTemplate("open", dir)
	require.NoError(t, err)
	assert.Equal(t, models.SchemaOpen, tpl.Type)

	_, err = GetTemplate("weekly", dir)
	assert.Error(t, err)
}

func TestInstruction(t *testing.T) {
	text, err := Instruction(models.SchemaAccessReview)
	require.NoError(t, err)
	assert.Contains(t, text, "details_comptes")
}

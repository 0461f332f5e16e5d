package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

const validRiskSummary = `{
	"synthese": "Deux comptes admin désactivés",
	"anomalies": ["CUID en double"],
	"risques": [],
	"recommandations": ["Revoir les accès"],
	"metriques": {"score_risque": 0, "confiance_analyse": 85.5}
}`

func newPipeline(t *testing.T, variant models.SchemaVariant) *Pipeline {
	t.Helper()
	p, err := NewPipeline(variant)
	require.NoError(t, err)
	return p
}

func TestExtractFencedObject(t *testing.T) {
	p := newPipeline(t, models.SchemaOpen)

	result, err := p.Extract("```json\n{\"a\":1}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(result.Document))
	assert.Equal(t, models.SchemaOpen, result.Variant)
}

func TestExtractObjectInProse(t *testing.T) {
	p := newPipeline(t, models.SchemaOpen)

	result, err := p.Extract(`Sure, here it is: {"a":1} hope that helps`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(result.Document))
}

func TestExtractNoBraces(t *testing.T) {
	p := newPipeline(t, models.SchemaOpen)
	raw := "I cannot analyse this file."

	_, err := p.Extract(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrNoJSONObjectFound)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, KindNoJSONObject, extractionErr.Kind)
	assert.Equal(t, raw, extractionErr.Raw)
}

func TestExtractClosingBeforeOpening(t *testing.T) {
	p := newPipeline(t, models.SchemaOpen)

	_, err := p.Extract("} backwards {")
	assert.ErrorIs(t, err, interfaces.ErrNoJSONObjectFound)
}

func TestExtractMalformed(t *testing.T) {
	p := newPipeline(t, models.SchemaOpen)

	_, err := p.Extract(`{"a": }`)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrMalformedJSON)
	assert.NotErrorIs(t, err, interfaces.ErrSchemaMismatch)
}

func TestRiskSummaryValid(t *testing.T) {
	p := newPipeline(t, models.SchemaRiskSummary)

	result, err := p.Extract("Voici l'analyse:\n" + validRiskSummary)
	require.NoError(t, err)

	var decoded RiskSummary
	require.NoError(t, result.Decode(&decoded))
	require.NotNil(t, decoded.Metriques.ScoreRisque)
	assert.Equal(t, 0.0, *decoded.Metriques.ScoreRisque)
}

func TestRiskSummaryMissingMetric(t *testing.T) {
	p := newPipeline(t, models.SchemaRiskSummary)
	raw := `{"synthese":"s","anomalies":[],"risques":[],"recommandations":[],"metriques":{"score_risque":40}}`

	_, err := p.Extract(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrSchemaMismatch)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Contains(t, extractionErr.Error(), "confiance_analyse")
}

func TestRiskSummaryExtraFieldsPreserved(t *testing.T) {
	p := newPipeline(t, models.SchemaRiskSummary)
	raw := `{"synthese":"s","anomalies":[],"risques":["r"],"recommandations":[],
		"metriques":{"score_risque":40,"confiance_analyse":90,"tendance":"hausse"},
		"commentaire":"extra"}`

	result, err := p.Extract(raw)
	require.NoError(t, err)

	fields, err := result.Fields()
	require.NoError(t, err)
	assert.Equal(t, "extra", fields["commentaire"])
	metriques := fields["metriques"].(map[string]any)
	assert.Equal(t, "hausse", metriques["tendance"])
}

func TestRiskSummaryTypeMismatchAndBounds(t *testing.T) {
	p := newPipeline(t, models.SchemaRiskSummary)

	_, err := p.Extract(`{"synthese":"s","anomalies":"none","risques":[],"recommandations":[],"metriques":{"score_risque":1,"confiance_analyse":1}}`)
	assert.ErrorIs(t, err, interfaces.ErrSchemaMismatch)

	_, err = p.Extract(`{"synthese":"s","anomalies":[],"risques":[],"recommandations":[],"metriques":{"score_risque":140,"confiance_analyse":1}}`)
	assert.ErrorIs(t, err, interfaces.ErrSchemaMismatch)

	_, err = p.Extract(`{"synthese":null,"anomalies":[],"risques":[],"recommandations":[],"metriques":{"score_risque":1,"confiance_analyse":1}}`)
	assert.ErrorIs(t, err, interfaces.ErrSchemaMismatch)
}

func TestAccessReview(t *testing.T) {
	p := newPipeline(t, models.SchemaAccessReview)
	raw := `{
		"metadata": {"fichier": "gnoc.xlsx", "date_analyse": "2025-06-01"},
		"statistiques": {"total_comptes": 2, "comptes_actifs": 1, "comptes_desactives": 1,
			"comptes_admin": 0, "comptes_filiale": 0, "comptes_support": 0},
		"verification_bd": {"comptes_presents": 1, "comptes_absents": 1,
			"incoherences_statut": [{"prenom": "Jane", "nom": "Doe", "statut_fichier": "actif", "statut_bd": "desactive"}]},
		"alertes": {"admin_desactives": 0, "acces_sensibles_desactives": 0, "doublons_cuid": []},
		"details_comptes": [
			{"prenom": "Jane", "nom": "Doe", "id_huawei": null, "cuid": "AB123", "statut": "actif", "present_en_bd": true, "statut_bd": "desactive"},
			{"prenom": "John", "nom": "Roe", "id_huawei": "h1", "cuid": "CD456", "statut": "desactive", "present_en_bd": false, "statut_bd": null}
		]
	}`

	_, err := p.Extract(raw)
	require.NoError(t, err)

	_, err = p.Extract(`{"metadata": {"fichier": "f", "date_analyse": "d"}}`)
	assert.ErrorIs(t, err, interfaces.ErrSchemaMismatch)
}

func TestExtractAsOverridesVariant(t *testing.T) {
	p := newPipeline(t, models.SchemaRiskSummary)

	result, err := p.ExtractAs(`{"anything": true}`, models.SchemaOpen)
	require.NoError(t, err)
	assert.Equal(t, models.SchemaOpen, result.Variant)

	_, err = NewPipeline("bogus")
	assert.Error(t, err)
}

func TestBraceInsideStringTruncates(t *testing.T) {
	p := newPipeline(t, models.SchemaOpen)

	// the last '}' sits inside trailing prose, so the span over-runs the object
	_, err := p.Extract(`{"a":"x"} trailing note with a } brace`)
	assert.ErrorIs(t, err, interfaces.ErrMalformedJSON)
}

package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
)

func TestResolveColumns(t *testing.T) {
	mapping := ResolveColumns([]string{"CUID", "Prénom", "Numero de Telephone", "Mail_Huawei", "Commentaire", "cuid"})

	assert.Equal(t, models.FieldCUID, mapping["CUID"])
	assert.Equal(t, models.FieldPrenom, mapping["Prénom"])
	assert.Equal(t, models.FieldTelephone, mapping["Numero de Telephone"])
	assert.Equal(t, models.FieldMailHuawei, mapping["Mail_Huawei"])
	assert.NotContains(t, mapping, "Commentaire")
	assert.NotContains(t, mapping, "cuid", "second column for the same field is dropped")
}

func TestCleanValue(t *testing.T) {
	for _, v := range []string{"", "  ", "nan", "NaN", "null", "None", "n/a", "#N/A"} {
		assert.Nil(t, CleanValue(v), v)
	}
	got := CleanValue("  Doe ")
	require.NotNil(t, got)
	assert.Equal(t, "Doe", *got)
}

func TestMapRowsKeepsKeylessRows(t *testing.T) {
	table := &Table{
		Columns: []string{"CUID", "Nom", "Ignored"},
		Rows: []map[string]string{
			{"CUID": "AB123", "Nom": "Doe", "Ignored": "x"},
			{"CUID": " ", "Nom": "Nobody", "Ignored": "y"},
		},
	}

	records := MapRows(table)
	require.Len(t, records, 2)
	assert.Equal(t, "AB123", records[0].Key())
	assert.Equal(t, "", records[1].Key())
	assert.NotContains(t, records[0], "Ignored")
}

func TestNormalizeRequiresKeyColumn(t *testing.T) {
	table := &Table{Columns: []string{"Nom"}, Rows: []map[string]string{{"Nom": "Doe"}}}

	_, err := Normalize(table)
	assert.ErrorIs(t, err, interfaces.ErrMissingKeyColumn)
}

func TestNormalizeLastOccurrenceWins(t *testing.T) {
	table := &Table{
		Columns: []string{"CUID", "Nom", "Statut"},
		Rows: []map[string]string{
			{"CUID": "AB123", "Nom": "Doe", "Statut": "actif"},
			{"CUID": "CD456", "Nom": "Roe", "Statut": "actif"},
			{"CUID": " AB123 ", "Nom": "Doe-Smith", "Statut": "nan"},
			{"CUID": "", "Nom": "Keyless", "Statut": "actif"},
		},
	}

	records, err := Normalize(table)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "AB123", records[0].Key(), "first appearance order")
	nom, ok := records[0].Value(models.FieldNom)
	assert.True(t, ok)
	assert.Equal(t, "Doe-Smith", nom)
	_, ok = records[0].Value(models.FieldStatut)
	assert.False(t, ok)
	assert.Equal(t, "CD456", records[1].Key())
}

func TestDeduplicateIdempotent(t *testing.T) {
	in := []models.NormalizedRecord{
		models.NormalizedRecordFrom(map[string]string{"cuid": "A", "nom": "1"}),
		models.NormalizedRecordFrom(map[string]string{"cuid": "B", "nom": "2"}),
		models.NormalizedRecordFrom(map[string]string{"cuid": "A", "nom": "3"}),
		models.NormalizedRecordFrom(map[string]string{"nom": "4"}),
	}

	once, skipped := Deduplicate(in)
	assert.Equal(t, 1, skipped)
	twice, skippedAgain := Deduplicate(once)
	assert.Equal(t, 0, skippedAgain)
	assert.Equal(t, once, twice)
}

func TestMapAllColumnsKeepsUnmapped(t *testing.T) {
	table := &Table{
		Columns: []string{"CUID", "Commentaire", ""},
		Rows: []map[string]string{
			{"CUID": "AB123", "Commentaire": " à revoir ", "": "x"},
		},
	}

	records := MapAllColumns(table)
	require.Len(t, records, 1)
	assert.Equal(t, "AB123", records[0].Key())
	comment, ok := records[0].Value("Commentaire")
	assert.True(t, ok)
	assert.Equal(t, "à revoir", comment)
	assert.Len(t, records[0], 2)
}

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelie14/zillasec/internal/models"
)

func TestBuildRequestSerializesAbsentAsNull(t *testing.T) {
	row := models.NormalizedRecord{"nom": nil}
	row.Set("cuid", "AB123")

	req, err := BuildRequest([]models.NormalizedRecord{row}, "analyse", 200)
	require.NoError(t, err)

	assert.JSONEq(t, `[{"cuid":"AB123","nom":null}]`, req.Payload)
	assert.Equal(t, "analyse", req.SystemInstruction)
	assert.False(t, req.Truncated)
	assert.Equal(t, 1, req.RowsSent)
	assert.Equal(t, 1, req.RowsTotal)
}

func TestBuildRequestTruncates(t *testing.T) {
	rows := make([]models.NormalizedRecord, 5)
	for i := range rows {
		rows[i] = models.NormalizedRecordFrom(map[string]string{"cuid": string(rune('A' + i))})
	}

	req, err := BuildRequest(rows, "analyse", 2)
	require.NoError(t, err)
	assert.True(t, req.Truncated)
	assert.Equal(t, 2, req.RowsSent)
	assert.Equal(t, 5, req.RowsTotal)
	assert.JSONEq(t, `[{"cuid":"A"},{"cuid":"B"}]`, req.Payload)

	all, err := BuildRequest(rows, "analyse", 0)
	require.NoError(t, err)
	assert.False(t, all.Truncated)
	assert.Equal(t, 5, all.RowsSent)
}

func TestBuildRequestRequiresInstruction(t *testing.T) {
	_, err := BuildRequest(nil, "  ", 10)
	assert.Error(t, err)
}

func TestBuildRequestEmptyRows(t *testing.T) {
	req, err := BuildRequest(nil, "analyse", 10)
	require.NoError(t, err)
	assert.Equal(t, "[]", req.Payload)
}

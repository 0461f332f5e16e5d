package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/storage/badger"
)

func TestServiceSetListDelete(t *testing.T) {
	manager, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)
	defer manager.Close()
	ctx := context.Background()

	svc := NewService(manager.KeyValueStorage(), arbor.NewLogger())

	assert.Error(t, svc.Set(ctx, "github_token", "abc"))
	assert.Error(t, svc.Set(ctx, KeyOpenRouter, "  "))
	require.NoError(t, svc.Set(ctx, " OpenRouter_API_Key ", "sk-or-123456"))

	pairs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, KeyOpenRouter, pairs[0].Key)
	assert.Equal(t, "********3456", pairs[0].Value)

	raw, err := manager.KeyValueStorage().Get(ctx, KeyOpenRouter)
	require.NoError(t, err)
	assert.Equal(t, "sk-or-123456", raw)

	require.NoError(t, svc.Delete(ctx, KeyOpenRouter))
	assert.ErrorIs(t, svc.Delete(ctx, KeyOpenRouter), interfaces.ErrKeyNotFound)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "**cdef", Mask("abcdef"))
	assert.Equal(t, []string{KeyClaude, KeyGemini, KeyOpenRouter}, KnownKeys())
}

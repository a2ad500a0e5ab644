package activity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/twiced-technology-gmbh/tasknest/internal/store"
)

func TestAttach_RecordsMutations(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := store.New()
	detach := Attach(s, zap.New(core))

	parent, err := s.Create(store.Input{Title: "Buy milk"})
	require.NoError(t, err)
	_, err = s.CreateSubtask(parent.ID, store.Input{Title: "Buy oat milk"})
	require.NoError(t, err)
	s.AddTag("errand")
	s.Delete(parent.ID)

	entries := logs.All()
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.Equal(t, "activity", e.LoggerName)
		assert.Equal(t, "task mutation", e.Message)
	}

	first := entries[0].ContextMap()
	assert.Equal(t, "create", first["action"])
	assert.Equal(t, parent.ID, first["task_id"])
	assert.Equal(t, "Buy milk", first["detail"])

	assert.Equal(t, "errand", entries[2].ContextMap()["tag"])

	deleted := entries[3].ContextMap()
	assert.Equal(t, "delete", deleted["action"])
	assert.Len(t, deleted["task_ids"], 2)

	detach()
	s.AddTag("later")
	assert.Equal(t, 4, logs.Len())
}

func TestTrim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "{\"n\":%d}\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	require.NoError(t, Trim(path, 3))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":3}\n{\"n\":4}\n{\"n\":5}\n", string(data))

	require.NoError(t, Trim(path, 10))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, after)
}

func TestTrim_MissingFile(t *testing.T) {
	assert.NoError(t, Trim(filepath.Join(t.TempDir(), "nope.log"), 3))
}

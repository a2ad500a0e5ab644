package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, New(TaskNotFound, "x").ExitCode())
	assert.Equal(t, 2, New(InternalError, "x").ExitCode())
}

func TestCodeOf(t *testing.T) {
	err := Newf(AmbiguousID, "task id %q is ambiguous", "ab").WithDetails(map[string]any{"input": "ab"})
	wrapped := fmt.Errorf("script.tn:3: %w", err)

	assert.Equal(t, AmbiguousID, CodeOf(wrapped))
	assert.Equal(t, `script.tn:3: task id "ab" is ambiguous`, wrapped.Error())
	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.Empty(t, CodeOf(nil))
}

func TestSilentError(t *testing.T) {
	var err error = &SilentError{Code: 1}
	var silent *SilentError
	assert.True(t, errors.As(fmt.Errorf("batch: %w", err), &silent))
	assert.Equal(t, "exit 1", err.Error())
}

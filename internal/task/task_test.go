package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
)

func TestClone_IsDeep(t *testing.T) {
	r := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := &Task{ID: "abc", Title: "x", Tags: []string{"a", "b"}, Reminder: &r}

	c := orig.Clone()
	c.Tags[0] = "changed"
	*c.Reminder = r.Add(time.Hour)

	assert.Equal(t, []string{"a", "b"}, orig.Tags)
	assert.Equal(t, r, *orig.Reminder)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", ShortID("0123abcd-ffff-4fff-8fff-000000000000"))
	assert.Equal(t, "short", ShortID("short"))
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "default", want: ""},
		{in: " Red ", want: "red"},
		{in: "teal", want: "teal"},
		{in: "magenta", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeColor(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, clierr.InvalidColor, clierr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	got, err := NormalizeTitle("  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got)

	_, err = NormalizeTitle("   ")
	assert.Equal(t, clierr.InvalidInput, clierr.CodeOf(err))
}

func TestNormalizeTags(t *testing.T) {
	assert.Nil(t, NormalizeTags(nil))
	assert.Nil(t, NormalizeTags([]string{" ", ""}))
	assert.Equal(t, []string{"home", "work"}, NormalizeTags([]string{"home", " work", "home", ""}))
}

func TestValidatePriority(t *testing.T) {
	for _, p := range Priorities {
		assert.NoError(t, ValidatePriority(p))
	}
	err := ValidatePriority("critical")
	assert.Equal(t, clierr.InvalidPriority, clierr.CodeOf(err))
	assert.Equal(t, 3, PriorityIndex(PriorityUrgent))
}

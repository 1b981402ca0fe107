package dirsize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		opt     Options
		wantErr bool
	}{
		{"zero_value", Options{}, false},
		{"sort_size", Options{SortBy: SortSize}, false},
		{"unknown_sort", Options{SortBy: "mtime"}, true},
		{"unknown_policy", Options{OversizePolicy: "truncate"}, true},
		{"negative_file_size", Options{MaxFileSize: -1}, true},
		{"negative_total_size", Options{MaxTotalSize: -1}, true},
		{"reversed_dates", Options{StartDate: now, EndDate: now.Add(-time.Hour)}, true},
		{"bad_ratio", Options{Ratios: Ratios{".txt": 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opt.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOptions)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	for input, want := range map[string]SortKey{"": SortNone, "none": SortNone, "SIZE": SortSize, " name ": SortName} {
		got, err := ParseSortKey(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseSortKey("date")
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestParseOversizePolicy(t *testing.T) {
	got, err := ParseOversizePolicy("")
	require.NoError(t, err)
	assert.Equal(t, OversizeDrop, got)

	got, err = ParseOversizePolicy("Clamp")
	require.NoError(t, err)
	assert.Equal(t, OversizeClamp, got)

	_, err = ParseOversizePolicy("cut")
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "cap_breached", CapBreached.String())
	assert.Equal(t, "State(9)", State(9).String())

	text, err := Reported.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "reported", string(text))
}

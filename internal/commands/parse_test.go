package commands

import (
	"testing"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLines(t *testing.T) {
	tests := []struct {
		in         string
		start, end int
		wantErr    bool
	}{
		{in: "7", start: 7, end: 7},
		{in: "3:9", start: 3, end: 9},
		{in: "3-9", start: 3, end: 9},
		{in: " 9:3 ", start: 3, end: 9},
		{in: "", wantErr: true},
		{in: "0", wantErr: true},
		{in: "a:b", wantErr: true},
		{in: "4:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			start, end, err := parseLines(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestParseSide(t *testing.T) {
	for in, want := range map[string]review.DiffSide{
		"":      review.SideRight,
		"right": review.SideRight,
		"NEW":   review.SideRight,
		"Left":  review.SideLeft,
		"old":   review.SideLeft,
	} {
		got, err := parseSide(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseSide("middle")
	assert.Error(t, err)
}

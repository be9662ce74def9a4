package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		in    string
		want  bool
		valid bool
	}{
		{"true", true, true},
		{"TRUE", true, true},
		{" False ", false, true},
		{"enabled", true, true},
		{"Disabled", false, true},
		{"1", false, false},
		{"yes", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseBool(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	assert.NoError(t, err)
	assert.Nil(t, lvl)

	lvl, err = ParseLevel(" 7 ")
	require.NoError(t, err)
	require.NotNil(t, lvl)
	assert.Equal(t, 7, *lvl)

	_, err = ParseLevel("seven")
	assert.Error(t, err)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, SplitCSV("1,2,3"))
	assert.Equal(t, []string{"swords", "axes"}, SplitCSV(" swords , ,axes,swords"))
	assert.Empty(t, SplitCSV(""))
	assert.Empty(t, SplitCSV(" , "))
	assert.Equal(t, "a,b", JoinCSV(SplitCSV("a, b")))
}

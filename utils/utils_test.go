package utils

import (
	"strings"
	"testing"

	"imagepad/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		command string
		flags   map[string]string
		paths   []string
	}{
		{
			name:    "flags with equals",
			argv:    []string{"process", "--scale=0.5", "--pad", "a.png", "dir"},
			command: "process",
			flags:   map[string]string{"scale": "0.5", "pad": "true"},
			paths:   []string{"a.png", "dir"},
		},
		{
			name:    "flag value as next argument",
			argv:    []string{"process", "--workers", "4", "photos"},
			command: "process",
			flags:   map[string]string{"workers": "4"},
			paths:   []string{"photos"},
		},
		{
			name:    "boolean flag does not eat the path",
			argv:    []string{"process", "--pad", "photos", "--debug", "more"},
			command: "process",
			flags:   map[string]string{"pad": "true", "debug": "true"},
			paths:   []string{"photos", "more"},
		},
		{
			name:    "flags before command",
			argv:    []string{"--debug", "watch", "inbox"},
			command: "watch",
			flags:   map[string]string{"debug": "true"},
			paths:   []string{"inbox"},
		},
		{
			name:    "double dash ends flags",
			argv:    []string{"scan", "--", "--odd.png"},
			command: "scan",
			flags:   map[string]string{},
			paths:   []string{"--odd.png"},
		},
		{
			name:    "trailing value flag",
			argv:    []string{"history", "--journal"},
			command: "history",
			flags:   map[string]string{"journal": "true"},
		},
		{
			name:  "unknown command",
			argv:  []string{"resize", "x.png"},
			flags: map[string]string{},
			paths: []string{"resize", "x.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := ParseArguments(tt.argv)
			assert.Equal(t, tt.command, args.Command)
			assert.Equal(t, tt.flags, args.Flags)
			assert.Equal(t, tt.paths, args.Paths)
		})
	}
}

func TestParseScale(t *testing.T) {
	scale, err := ParseScale(" 0.25 ")
	require.NoError(t, err)
	assert.Equal(t, 0.25, scale)

	scale, err = ParseScale("1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, scale)

	for _, bad := range []string{"", "abc", "0", "-0.5", "1.5", "NaN", "Inf"} {
		_, err := ParseScale(bad)
		assert.True(t, types.IsValidationError(err), "%q", bad)
	}
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 5, ParseLimit("5", 10))
	assert.Equal(t, 10, ParseLimit("0", 10))
	assert.Equal(t, 10, ParseLimit("many", 10))
}

func TestGetDefaultJournalPath(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetDefaultJournalPath(), "imagepad.db"))
}

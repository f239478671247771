package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "asthma", expected: "asthma"},
		{input: " Asthma", expected: "asthma"},
		{input: "ASTHMA\t\n", expected: "asthma"},
		{input: " Asthma ", expected: "asthma"},
		{input: "Low SDI", expected: "low sdi"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, NormalizeLabel(row.input))
	}

	require.True(t, EqualLabel("  asthma ", "ASTHMA"))
	require.False(t, EqualLabel("asthma", "copd"))
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "397 (363 to 439)", CollapseWhitespace("  397\n  (363 to\t439) "))
	require.Equal(t, "397 (363 to 439)", CollapseWhitespace("397 (363 to 439)"))
}

func TestReplaceAlternateSpaces(t *testing.T) {
	require.Equal(t, "1 2 3 4", ReplaceAlternateSpaces("1\u00a02\u20073\u202f4"))
}

func TestStripSpaces(t *testing.T) {
	require.Equal(t, "358198", StripSpaces("358 198"))
	require.Equal(t, "358198", StripSpaces("\u00a0358\u202f198 "))
	require.Equal(t, "", StripSpaces("   "))
}

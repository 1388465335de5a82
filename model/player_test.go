package model

import "testing"

func TestTrimNameSuffix(t *testing.T) {
	tests := map[string]string{
		"Deebo Samuel Sr.":    "Deebo Samuel",
		"Marvin Harrison Jr.": "Marvin Harrison",
		"Jeff Wilson III":     "Jeff Wilson",
		"Patrick Mahomes":     "Patrick Mahomes",
	}

	for input, expected := range tests {
		if got := TrimNameSuffix(input); got != expected {
			t.Errorf("TrimNameSuffix(%q) = %q, expected %q", input, got, expected)
		}
	}
}

package textnorm_test

import (
	"testing"

	"github.com/rozpoctar/boq-classifier/internal/textnorm"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"ascii lowercased", "Beton C25/30", "beton c25/30"},
		{"czech diacritics", "Vrtané piloty průměr 900mm", "vrtane piloty prumer 900mm"},
		{"section heading", "Díl: Zemní práce", "dil: zemni prace"},
		{"trims whitespace", "  výztuž \t", "vyztuz"},
		{"mixed caron and acute", "ŽELEZOBETONOVÁ KONSTRUKCE", "zelezobetonova konstrukce"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textnorm.Normalize(tc.input); got != tc.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeUnit(t *testing.T) {
	if got := textnorm.NormalizeUnit(" M3 "); got != "m3" {
		t.Errorf("NormalizeUnit(\" M3 \") = %q, want %q", got, "m3")
	}
	if got := textnorm.NormalizeUnit(""); got != "" {
		t.Errorf("NormalizeUnit(\"\") = %q, want empty", got)
	}
}

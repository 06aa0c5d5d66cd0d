package fixtures

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fenerbahçe", "fenerbahce"},
		{"Paris Saint-Germain", "parissaintgermain"},
		{"  Atlético   Madrid ", "atleticomadrid"},
		{"FC Barcelona", "barcelona"},
		{"Barcelona", "barcelona"},
		{"AC Milan", "milan"},
		{"Iga Świątek", "igaswiatek"},
		{"FC", "fc"},
		{"76ers", "76ers"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

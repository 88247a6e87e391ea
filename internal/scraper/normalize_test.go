package scraper

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"plain", "plain"},
		{"  leading and trailing  ", "leading and trailing"},
		{"collapse    runs", "collapse runs"},
		{"tabs\tand\nnewlines\r\nmixed", "tabs and newlines mixed"},
		{"AED  85,000 \n / year", "AED 85,000 / year"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

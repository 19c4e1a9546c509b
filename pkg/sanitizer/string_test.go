package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Dana Levi  ", "Dana Levi"},
		{"multiple spaces between words", "Dana    Levi", "Dana Levi"},
		{"tabs and newlines", "Dana\t\nLevi", "Dana Levi"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Café & Spa™ ", "Café & Spa™"},
		{"hebrew characters", " תספורת יוסי ", "תספורת יוסי"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("TrimAndNormalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeTimeZone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Asia/Jerusalem", "Asia/Jerusalem"},
		{"  Europe//Berlin ", "Europe/Berlin"},
		{"/UTC/", "UTC"},
		{"America/Argentina/Buenos_Aires", "America/Argentina/Buenos_Aires"},
		{"Etc/GMT+3", "Etc/GMT+3"},
		{"Not A Zone", "Not A Zone"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeTimeZone(tt.input); got != tt.want {
				t.Errorf("NormalizeTimeZone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

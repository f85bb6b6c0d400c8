package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Artist - Title (Piano)", "Artist - Title (Piano)"},
		{"AC/DC - Back in Black", "AC-DC - Back in Black"},
		{"What? - \"Quoted\" <x>|", "What - Quoted x"},
		{"  ../etc  ", "-etc"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

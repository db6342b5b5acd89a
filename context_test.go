package classAuth

import (
	"strings"
	"testing"
)

func TestValidRequestID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"trace-abc", true},
		{"0f8fad5b-d9cb-469f-a165-70867728950e", true},
		{strings.Repeat("a", MaxRequestIDLen), true},
		{strings.Repeat("a", MaxRequestIDLen+1), false},
		{"", false},
		{"has space", false},
		{"tab\tinside", false},
		{"line\nbreak", false},
		{"café", false},
	}
	for _, tc := range cases {
		if got := ValidRequestID(tc.id); got != tc.want {
			t.Fatalf("ValidRequestID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

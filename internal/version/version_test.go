package version

import (
	"regexp"
	"strings"
	"testing"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestPrettyPlain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	tests := []struct {
		in, want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.0.0-rc.1", "1.0.0-rc.1"},
		{"nightly", "nightly"},
	}
	for _, tc := range tests {
		Version = tc.in
		if got := Pretty(false); got != tc.want {
			t.Errorf("Pretty(false) for %q = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPrettyColored(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	got := Pretty(true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("want ANSI escapes, got %q", got)
	}
	if plain := ansi.ReplaceAllString(got, ""); plain != "1.2.3" {
		t.Fatalf("stripped %q, want 1.2.3", plain)
	}
}

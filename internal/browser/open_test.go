package browser

import (
	"strings"
	"testing"
)

func TestURL(t *testing.T) {
	tests := []struct {
		base  string
		route string
		want  string
	}{
		{"http://localhost:3000", "/dashboard/developer", "http://localhost:3000/dashboard/developer"},
		{"https://app.arcitech.io/", "/auth/login?session=expired", "https://app.arcitech.io/auth/login?session=expired"},
		{"https://app.arcitech.io", "unauthorized", "https://app.arcitech.io/unauthorized"},
	}
	for _, tc := range tests {
		got, err := URL(tc.base, tc.route)
		if err != nil {
			t.Fatalf("URL(%q, %q) error: %v", tc.base, tc.route, err)
		}
		if got != tc.want {
			t.Errorf("URL(%q, %q) = %q, want %q", tc.base, tc.route, got, tc.want)
		}
	}
}

func TestURLRejectsBadBase(t *testing.T) {
	for _, base := range []string{"", "ftp://host", "localhost:3000", "http://"} {
		if _, err := URL(base, "/dashboard"); err == nil {
			t.Errorf("URL(%q) expected error", base)
		}
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		bin  string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
	}
	for _, tc := range tests {
		cmd, err := command(tc.goos, "http://localhost:3000")
		if err != nil {
			t.Fatalf("command(%q) error: %v", tc.goos, err)
		}
		if !strings.HasSuffix(cmd.Path, tc.bin) && cmd.Args[0] != tc.bin {
			t.Errorf("command(%q) runs %q, want %q", tc.goos, cmd.Args[0], tc.bin)
		}
		if last := cmd.Args[len(cmd.Args)-1]; last != "http://localhost:3000" {
			t.Errorf("command(%q) last arg = %q", tc.goos, last)
		}
	}
	if _, err := command("plan9", "http://x"); err == nil {
		t.Error("expected error for unsupported OS")
	}
}

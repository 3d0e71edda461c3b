// Package browser opens web dashboard pages in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Open opens the specified URL in the user's default browser.
func Open(u string) error {
	cmd, err := command(runtime.GOOS, u)
	if err != nil {
		return err
	}
	return cmd.Start()
}

func command(goos, u string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", u), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", u), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", u), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

// URL joins the web app's base URL and an app route such as
// "/dashboard/developer". Only http and https bases are accepted.
func URL(base, route string) (string, error) {
	b, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse web url: %w", err)
	}
	if b.Scheme != "http" && b.Scheme != "https" {
		return "", fmt.Errorf("web url %q: scheme must be http or https", base)
	}
	if b.Host == "" {
		return "", fmt.Errorf("web url %q: missing host", base)
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return b.String() + route, nil
}

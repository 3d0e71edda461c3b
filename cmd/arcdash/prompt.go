package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

var errNotInteractive = errors.New("stdin is not a terminal")

// isInteractive reports whether stdin is a terminal (not piped).
var isInteractive = func() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// promptLogin asks for whichever credentials are still empty.
func promptLogin(email, password *string) error {
	if *email != "" && *password != "" {
		return nil
	}
	if !isInteractive() {
		return fmt.Errorf("--email and --password are required: %w", errNotInteractive)
	}

	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@company.com").
			Validate(required("email")).
			Value(email))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(required("password")).
			Value(password))
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

type registerInput struct {
	fullName string
	email    string
	password string
	program  string
}

func (in registerInput) complete() bool {
	return in.fullName != "" && in.email != "" && in.password != ""
}

// promptRegister asks for the missing account fields. Program type is
// optional and only asked for alongside other missing fields.
func promptRegister(in *registerInput) error {
	if in.complete() {
		return nil
	}
	if !isInteractive() {
		return fmt.Errorf("--name, --email and --password are required: %w", errNotInteractive)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Full name").Validate(required("full name")).Value(&in.fullName),
			huh.NewInput().Title("Email").Placeholder("you@company.com").Validate(required("email")).Value(&in.email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Validate(required("password")).Value(&in.password),
			huh.NewInput().Title("Program").Placeholder("optional").Value(&in.program),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

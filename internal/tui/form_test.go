package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func formKey(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func fill(m formModel, keys ...string) (formModel, bool) {
	var submitted bool
	for _, k := range keys {
		m, submitted = m.Update(formKey(k))
	}
	return m, submitted
}

func TestFormFocusCycles(t *testing.T) {
	m := newLoginForm()
	m, _ = fill(m, "tab")
	if m.focus != 1 {
		t.Fatalf("focus = %d, want 1", m.focus)
	}
	m, _ = fill(m, "tab")
	if m.focus != 0 {
		t.Errorf("focus should wrap to 0, got %d", m.focus)
	}
	m, _ = fill(m, "shift+tab")
	if m.focus != 1 {
		t.Errorf("shift+tab should wrap to last, got %d", m.focus)
	}
}

func TestFormEnterAdvancesThenSubmits(t *testing.T) {
	m := newLoginForm()
	m, submitted := fill(m, "a", "enter")
	if submitted {
		t.Fatal("enter on first field should advance, not submit")
	}
	if m.focus != 1 {
		t.Fatalf("focus = %d, want 1", m.focus)
	}
	m, submitted = fill(m, "p", "enter")
	if !submitted {
		t.Fatal("enter on last field should submit")
	}
	if !m.submitting {
		t.Error("form should be submitting")
	}
}

func TestFormValidation(t *testing.T) {
	m := newLoginForm()
	m, submitted := fill(m, "a", "ctrl+s")
	if submitted {
		t.Fatal("missing password must not submit")
	}
	if m.err != "password is required" {
		t.Errorf("err = %q", m.err)
	}
	if m.focus != 1 {
		t.Errorf("focus should move to the missing field, got %d", m.focus)
	}

	// Whitespace is not a value.
	m = newLoginForm()
	m, _ = fill(m, " ", "tab", "p", "ctrl+s")
	if m.err != "email is required" {
		t.Errorf("err = %q", m.err)
	}
}

func TestRegisterFormProgramOptional(t *testing.T) {
	m := newRegisterForm()
	_, submitted := fill(m, "A", "tab", "a", "tab", "p", "ctrl+s")
	if !submitted {
		t.Error("program type is optional")
	}
}

func TestFormIgnoresKeysWhileSubmitting(t *testing.T) {
	m := newLoginForm()
	m, _ = fill(m, "a", "tab", "p", "ctrl+s")
	m, submitted := fill(m, "z", "ctrl+s")
	if submitted {
		t.Error("second submit while in flight")
	}
	if m.fields[1].value != "p" {
		t.Errorf("password changed while submitting: %q", m.fields[1].value)
	}
}

func TestFormBackspace(t *testing.T) {
	m := newLoginForm()
	m, _ = fill(m, "a", "b", "backspace")
	if m.fields[0].value != "a" {
		t.Errorf("value = %q, want a", m.fields[0].value)
	}
}

func TestFormViewStates(t *testing.T) {
	m := newLoginForm()
	v := m.View(80)
	if !strings.Contains(v, "you@company.com") {
		t.Error("empty field should show its placeholder")
	}

	m.notice = "Your session has expired. Please sign in again."
	m.err = "Invalid credentials"
	v = m.View(80)
	if !strings.Contains(v, "session has expired") || !strings.Contains(v, "Invalid credentials") {
		t.Errorf("view missing notice or error: %q", v)
	}

	m.submitting = true
	if v := m.View(80); !strings.Contains(v, "working...") || strings.Contains(v, "Invalid credentials") {
		t.Error("submitting view should replace the error with progress")
	}
}

func TestFormatRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-time.Second), "expired"},
		{now, "expired"},
		{now.Add(30 * time.Second), "in under a minute"},
		{now.Add(45 * time.Minute), "in 45m"},
		{now.Add(5 * time.Hour), "in 5h"},
		{now.Add(72 * time.Hour), "in 3d"},
	}
	for _, tc := range tests {
		if got := formatRemaining(tc.at, now); got != tc.want {
			t.Errorf("formatRemaining(%v) = %q, want %q", tc.at.Sub(now), got, tc.want)
		}
	}
}

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type formField struct {
	label       string
	placeholder string
	value       string
	secret      bool
	optional    bool
}

// formModel is a vertical list of single-line inputs. The last field's enter
// (or ctrl+s anywhere) submits.
type formModel struct {
	title      string
	fields     []formField
	focus      int
	submitting bool
	err        string
	notice     string
}

func newLoginForm() formModel {
	return formModel{
		title: "Sign in",
		fields: []formField{
			{label: "Email", placeholder: "you@company.com"},
			{label: "Password", placeholder: "password", secret: true},
		},
	}
}

func newRegisterForm() formModel {
	return formModel{
		title: "Create account",
		fields: []formField{
			{label: "Full name", placeholder: "Ada Lovelace"},
			{label: "Email", placeholder: "you@company.com"},
			{label: "Password", placeholder: "password", secret: true},
			{label: "Program", placeholder: "optional", optional: true},
		},
	}
}

func (m formModel) value(i int) string {
	return strings.TrimSpace(m.fields[i].value)
}

// Update handles a key and reports whether the form was submitted.
func (m formModel) Update(msg tea.KeyMsg) (formModel, bool) {
	if m.submitting {
		return m, false
	}
	m.err = ""

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % len(m.fields)
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + len(m.fields)) % len(m.fields)
	case "enter":
		if m.focus == len(m.fields)-1 {
			return m.submit()
		}
		m.focus++
	default:
		f := &m.fields[m.focus]
		f.value = editRune(f.value, msg.String())
	}
	return m, false
}

func (m formModel) submit() (formModel, bool) {
	for i, f := range m.fields {
		if !f.optional && m.value(i) == "" {
			m.err = strings.ToLower(f.label) + " is required"
			m.focus = i
			return m, false
		}
	}
	m.submitting = true
	m.notice = ""
	return m, true
}

func (m formModel) View(width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", sectionHeaderStyle.Render(m.title))
	if m.notice != "" {
		fmt.Fprintf(&b, "  %s\n\n", warnStyle.Render(m.notice))
	}

	inputWidth := width - 20
	if inputWidth < 10 {
		inputWidth = 10
	}
	for i, f := range m.fields {
		label := dimStyle.Render(fmt.Sprintf("%-10s", f.label))
		prompt := "  "
		if i == m.focus {
			label = selectedStyle.Render(fmt.Sprintf("%-10s", f.label))
			prompt = inputPromptStyle.Render("> ")
		}
		var val string
		switch {
		case f.value == "":
			val = inputPlaceholderStyle.Render(f.placeholder)
		case f.secret:
			val = normalStyle.Render(mask(f.value))
		default:
			val = normalStyle.Render(truncStr(f.value, inputWidth))
		}
		fmt.Fprintf(&b, "  %s%s  %s\n", prompt, label, val)
	}

	b.WriteString("\n")
	switch {
	case m.submitting:
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render("working..."))
	case m.err != "":
		fmt.Fprintf(&b, "  %s\n", errorStyle.Render(m.err))
	}
	return b.String()
}

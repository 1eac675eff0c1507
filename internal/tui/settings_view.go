package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/secureaware/internal/profile"
	"github.com/kingrea/secureaware/internal/training"
)

type settingsTab int

const (
	tabProfile settingsTab = iota
	tabPassword
	tabPreferences
)

var tabNames = []string{"Profile", "Password", "Notifications"}

var preferenceLabels = map[string]string{
	"moduleReminders":        "Module reminders",
	"newModules":             "New module announcements",
	"securityAlerts":         "Security alerts",
	"completionCertificates": "Completion certificates",
}

// Profile tab rows: two text inputs, then the role and department pickers.
const (
	rowName = iota
	rowEmail
	rowRole
	rowDepartment
	profileRows
)

type settingsView struct {
	svc *training.Service
	tab settingsTab
	row int

	name       textinput.Model
	email      textinput.Model
	role       string
	department string
	profileErr *profile.ValidationError

	passwords   []textinput.Model
	passwordErr *profile.ValidationError

	prefs profile.Preferences

	status string
}

func newSettingsView(svc *training.Service) *settingsView {
	v := &settingsView{
		svc:   svc,
		name:  newField("Full name", false),
		email: newField("Email address", false),
		passwords: []textinput.Model{
			newField("Current password", true),
			newField("New password", true),
			newField("Confirm new password", true),
		},
	}
	v.reset()
	return v
}

func newField(placeholder string, secret bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 128
	in.Width = 40
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

// reset reloads the form from the stored profile and drops pending edits.
func (v *settingsView) reset() {
	p := v.svc.Profile()
	v.tab = tabProfile
	v.row = rowName
	v.name.SetValue(p.Name)
	v.email.SetValue(p.Email)
	v.role = p.Role
	v.department = p.Department
	v.prefs = p.NotificationPreferences
	v.profileErr = nil
	v.passwordErr = nil
	v.status = ""
	for i := range v.passwords {
		v.passwords[i].SetValue("")
	}
	v.focus()
}

// typing reports whether a text input has the keyboard.
func (v *settingsView) typing() bool {
	if v.name.Focused() || v.email.Focused() {
		return true
	}
	for _, in := range v.passwords {
		if in.Focused() {
			return true
		}
	}
	return false
}

func (v *settingsView) rows() int {
	switch v.tab {
	case tabProfile:
		return profileRows
	case tabPassword:
		return len(v.passwords)
	}
	return len(profile.PreferenceKeys)
}

func (v *settingsView) focus() {
	v.name.Blur()
	v.email.Blur()
	for i := range v.passwords {
		v.passwords[i].Blur()
	}
	switch v.tab {
	case tabProfile:
		switch v.row {
		case rowName:
			v.name.Focus()
		case rowEmail:
			v.email.Focus()
		}
	case tabPassword:
		v.passwords[v.row].Focus()
	}
}

func (v *settingsView) switchTab(delta int) {
	v.tab = settingsTab((int(v.tab) + delta + len(tabNames)) % len(tabNames))
	v.row = 0
	v.status = ""
	v.focus()
}

func (v *settingsView) moveRow(delta int) {
	n := v.rows()
	v.row = (v.row + delta + n) % n
	v.focus()
}

func (v *settingsView) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch k.String() {
	case "ctrl+right", "ctrl+n":
		v.switchTab(1)
		return nil
	case "ctrl+left", "ctrl+p":
		v.switchTab(-1)
		return nil
	case "tab", "down":
		v.moveRow(1)
		return nil
	case "shift+tab", "up":
		v.moveRow(-1)
		return nil
	case "ctrl+s":
		v.save()
		return nil
	}
	if !v.typing() {
		switch k.String() {
		case "]":
			v.switchTab(1)
			return nil
		case "[":
			v.switchTab(-1)
			return nil
		}
	}

	switch v.tab {
	case tabProfile:
		return v.updateProfile(k)
	case tabPassword:
		if k.String() == "enter" {
			if v.row < len(v.passwords)-1 {
				v.moveRow(1)
				return nil
			}
			v.save()
			return nil
		}
		var cmd tea.Cmd
		v.passwords[v.row], cmd = v.passwords[v.row].Update(k)
		return cmd
	case tabPreferences:
		switch k.String() {
		case " ", "x":
			v.prefs.Toggle(profile.PreferenceKeys[v.row])
		case "enter":
			v.save()
		}
	}
	return nil
}

func (v *settingsView) updateProfile(k tea.KeyMsg) tea.Cmd {
	switch v.row {
	case rowRole:
		switch k.String() {
		case "left", "h":
			v.role = cycle(profile.Roles, v.role, -1)
		case "right", "l", " ":
			v.role = cycle(profile.Roles, v.role, 1)
		case "enter":
			v.save()
		}
		return nil
	case rowDepartment:
		switch k.String() {
		case "left", "h":
			v.department = cycle(profile.Departments, v.department, -1)
		case "right", "l", " ":
			v.department = cycle(profile.Departments, v.department, 1)
		case "enter":
			v.save()
		}
		return nil
	}
	if k.String() == "enter" {
		v.moveRow(1)
		return nil
	}
	var cmd tea.Cmd
	if v.row == rowName {
		v.name, cmd = v.name.Update(k)
	} else {
		v.email, cmd = v.email.Update(k)
	}
	return cmd
}

// cycle steps through options; a value outside the list starts from the
// first option.
func cycle(options []string, current string, delta int) string {
	i := slices.Index(options, current)
	if i < 0 {
		return options[0]
	}
	return options[(i+delta+len(options))%len(options)]
}

func (v *settingsView) save() {
	v.status = ""
	switch v.tab {
	case tabProfile:
		p := v.svc.Profile()
		p.Name = v.name.Value()
		p.Email = v.email.Value()
		p.Role = v.role
		p.Department = v.department
		v.profileErr = nil
		if err := v.svc.UpdateProfile(p); err != nil {
			v.profileErr = asValidation(err)
			return
		}
		v.status = "Profile saved."
	case tabPassword:
		req := profile.PasswordChange{
			CurrentPassword: v.passwords[0].Value(),
			NewPassword:     v.passwords[1].Value(),
			ConfirmPassword: v.passwords[2].Value(),
		}
		v.passwordErr = nil
		if err := v.svc.ChangePassword(req); err != nil {
			v.passwordErr = asValidation(err)
			return
		}
		for i := range v.passwords {
			v.passwords[i].SetValue("")
		}
		v.row = 0
		v.focus()
		v.status = "Password updated."
	case tabPreferences:
		p := v.svc.Profile()
		p.NotificationPreferences = v.prefs
		if err := v.svc.UpdateProfile(p); err != nil {
			v.status = err.Error()
			return
		}
		v.status = "Preferences saved."
	}
}

func asValidation(err error) *profile.ValidationError {
	var verr *profile.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return &profile.ValidationError{Fields: map[string]string{"": err.Error()}}
}

func (v *settingsView) View() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		style := lipgloss.NewStyle().Padding(0, 1).Foreground(mutedColor)
		if settingsTab(i) == v.tab {
			style = style.Bold(true).Foreground(accentColor).Underline(true)
		}
		tabs[i] = style.Render(name)
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, tabs...), ""}

	switch v.tab {
	case tabProfile:
		lines = append(lines, v.profileLines()...)
	case tabPassword:
		lines = append(lines, v.passwordLines()...)
	case tabPreferences:
		lines = append(lines, v.preferenceLines()...)
	}
	if v.status != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(goodColor).Render(v.status))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render("Tab → next field    ctrl+s → save    [ ] → switch tab"))
	return strings.Join(lines, "\n")
}

func (v *settingsView) renderRow(i int, label, value, errMsg string) []string {
	marker := "  "
	if v.row == i {
		marker = lipgloss.NewStyle().Foreground(accentColor).Render("› ")
	}
	out := []string{fmt.Sprintf("%s%-12s %s", marker, label, value)}
	if errMsg != "" {
		out = append(out, lipgloss.NewStyle().Foreground(badColor).Render("    "+errMsg))
	}
	return out
}

func (v *settingsView) profileLines() []string {
	var lines []string
	errFor := func(field string) string {
		if msg := v.profileErr.Field(field); msg != "" {
			return field + " " + msg
		}
		return ""
	}
	lines = append(lines, v.renderRow(rowName, "Name", v.name.View(), errFor("name"))...)
	lines = append(lines, v.renderRow(rowEmail, "Email", v.email.View(), errFor("email"))...)
	lines = append(lines, v.renderRow(rowRole, "Role", "‹ "+v.role+" ›", errFor("role"))...)
	lines = append(lines, v.renderRow(rowDepartment, "Department", "‹ "+v.department+" ›", errFor("department"))...)
	if msg := v.profileErr.Field(""); msg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(badColor).Render(msg))
	}
	return lines
}

func (v *settingsView) passwordLines() []string {
	fields := []string{profile.FieldCurrentPassword, profile.FieldNewPassword, profile.FieldConfirmPassword}
	labels := []string{"Current", "New", "Confirm"}
	var lines []string
	for i := range v.passwords {
		lines = append(lines, v.renderRow(i, labels[i], v.passwords[i].View(), v.passwordErr.Field(fields[i]))...)
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render(
		fmt.Sprintf("New passwords need at least %d characters.", profile.MinPasswordLength)))
	return lines
}

func (v *settingsView) preferenceLines() []string {
	var lines []string
	for i, key := range profile.PreferenceKeys {
		box := "[ ]"
		if v.prefs.Enabled(key) {
			box = "[x]"
		}
		lines = append(lines, v.renderRow(i, box, preferenceLabels[key], "")...)
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render("Space → toggle    Enter → save"))
	return lines
}

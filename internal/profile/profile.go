// Package profile holds the learner's identity and notification preferences.
package profile

import (
	"strings"
)

// StoreKey is the persisted record for the profile.
const StoreKey = "userProfile"

// Preferences toggles which notification kinds the learner wants. They are
// stored and displayed; nothing filters on them yet.
type Preferences struct {
	ModuleReminders        bool `json:"moduleReminders"`
	NewModules             bool `json:"newModules"`
	SecurityAlerts         bool `json:"securityAlerts"`
	CompletionCertificates bool `json:"completionCertificates"`
}

// Profile is the learner record shown in settings and on certificates.
type Profile struct {
	Name                    string      `json:"name" validate:"required"`
	Email                   string      `json:"email" validate:"required,email"`
	Role                    string      `json:"role" validate:"required"`
	Department              string      `json:"department" validate:"required,department"`
	NotificationPreferences Preferences `json:"notificationPreferences"`
}

// Roles lists the roles offered in settings.
var Roles = []string{"Employee", "Manager", "Administrator", "Executive"}

// Departments lists the departments offered in settings.
var Departments = []string{
	"Marketing",
	"Sales",
	"Engineering",
	"Human Resources",
	"Finance",
	"IT",
	"Customer Support",
}

// Default returns the profile a fresh installation starts with.
func Default() Profile {
	return Profile{
		Name:       "Samar",
		Email:      "Samar@company.com",
		Role:       "Project Manager",
		Department: "IT",
		NotificationPreferences: Preferences{
			ModuleReminders:        true,
			NewModules:             true,
			SecurityAlerts:         true,
			CompletionCertificates: true,
		},
	}
}

// Normalized returns a trimmed copy of p.
func (p Profile) Normalized() Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Role = strings.TrimSpace(p.Role)
	p.Department = strings.TrimSpace(p.Department)
	return p
}

// Toggle flips one preference by its JSON key and reports whether the key
// was known.
func (p *Preferences) Toggle(key string) bool {
	switch key {
	case "moduleReminders":
		p.ModuleReminders = !p.ModuleReminders
	case "newModules":
		p.NewModules = !p.NewModules
	case "securityAlerts":
		p.SecurityAlerts = !p.SecurityAlerts
	case "completionCertificates":
		p.CompletionCertificates = !p.CompletionCertificates
	default:
		return false
	}
	return true
}

// PreferenceKeys lists preference keys in display order.
var PreferenceKeys = []string{"moduleReminders", "newModules", "securityAlerts", "completionCertificates"}

// Enabled reports the value of one preference by its JSON key.
func (p Preferences) Enabled(key string) bool {
	switch key {
	case "moduleReminders":
		return p.ModuleReminders
	case "newModules":
		return p.NewModules
	case "securityAlerts":
		return p.SecurityAlerts
	case "completionCertificates":
		return p.CompletionCertificates
	}
	return false
}

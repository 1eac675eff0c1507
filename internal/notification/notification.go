// Package notification implements the learner's notification center: an
// ordered, newest-first log of event records with read/unread state.
//
// Lifecycle of a single notification:
//
//	emit -> unread --markAsRead/markAllAsRead--> read
//	unread|read --delete/clearAll--> gone (no undo)
package notification

import (
	"time"
)

// Type classifies a notification for display.
type Type string

const (
	TypeSuccess Type = "success"
	TypeAlert   Type = "alert"
	TypeInfo    Type = "info"
	TypeUpdate  Type = "update"
)

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeSuccess, TypeAlert, TypeInfo, TypeUpdate:
		return true
	}
	return false
}

// Notification is a user-facing event record.
type Notification struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Type    Type      `json:"type"`
	Read    bool      `json:"read"`
	Date    time.Time `json:"date"`
}

// Titles used by the notifications the application emits itself.
const (
	TitleModuleCompleted = "Module Completed"
	TitleProfileUpdated  = "Profile Updated"
	TitlePasswordUpdated = "Password Updated"
)

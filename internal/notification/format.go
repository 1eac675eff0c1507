package notification

import (
	"fmt"
	"time"
)

// RelativeTime renders how long ago date was, relative to now. Months are
// approximated as 30 days.
func RelativeTime(date, now time.Time) string {
	seconds := int64(now.Sub(date) / time.Second)
	if seconds < 60 {
		return "just now"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return plural(minutes, "minute")
	}
	hours := minutes / 60
	if hours < 24 {
		return plural(hours, "hour")
	}
	days := hours / 24
	if days < 30 {
		return plural(days, "day")
	}
	return plural(days/30, "month")
}

func plural(n int64, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

// Seed emits the welcome notifications a fresh session starts with. They are
// emitted oldest first so the list reads Welcome, New Module, Security Alert.
func Seed(c *Center, now time.Time) {
	seeds := []Notification{
		{
			Title:   "Security Alert",
			Message: "Recent phishing attempts reported. Stay vigilant!",
			Type:    TypeAlert,
			Date:    now.Add(-48 * time.Hour),
		},
		{
			Title:   "New Module Available",
			Message: `Check out the new "Mobile Device Security" module.`,
			Type:    TypeUpdate,
			Date:    now.Add(-24 * time.Hour),
		},
		{
			Title:   "Welcome to SecureAware",
			Message: "Start your security journey by completing your first module.",
			Type:    TypeInfo,
			Date:    now.Add(-time.Hour),
		},
	}
	for _, n := range seeds {
		n.Date = n.Date.UTC()
		c.Emit(n)
	}
}

// ModuleCompletedMessage is the body of the completion notification.
func ModuleCompletedMessage(moduleTitle string) string {
	return fmt.Sprintf("Congratulations! You've completed the \"%s\" module.", moduleTitle)
}

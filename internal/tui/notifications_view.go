package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/secureaware/internal/notification"
	"github.com/kingrea/secureaware/internal/training"
)

var typeGlyphs = map[notification.Type]string{
	notification.TypeSuccess: "✓",
	notification.TypeAlert:   "!",
	notification.TypeInfo:    "i",
	notification.TypeUpdate:  "↻",
}

type notificationItem struct {
	n   notification.Notification
	now time.Time
}

func (i notificationItem) Title() string {
	dot := "  "
	if !i.n.Read {
		dot = "● "
	}
	return fmt.Sprintf("%s[%s] %s", dot, typeGlyphs[i.n.Type], i.n.Title)
}

func (i notificationItem) Description() string {
	return fmt.Sprintf("%s · %s", notification.RelativeTime(i.n.Date, i.now), i.n.Message)
}

func (i notificationItem) FilterValue() string { return i.n.Title }

type notificationsView struct {
	svc   *training.Service
	clock func() time.Time
	list  list.Model
}

func newNotificationsView(svc *training.Service, clock func() time.Time) *notificationsView {
	v := &notificationsView{
		svc:   svc,
		clock: clock,
		list:  newList("Notifications", nil),
	}
	v.refresh()
	return v
}

func (v *notificationsView) setSize(w, h int) {
	v.list.SetSize(w, max(0, h-2))
}

func (v *notificationsView) refresh() {
	center := v.svc.Notifications()
	now := v.clock()
	all := center.List()
	items := make([]list.Item, len(all))
	for i, n := range all {
		items[i] = notificationItem{n: n, now: now}
	}
	v.list.SetItems(items)
	v.list.Title = fmt.Sprintf("Notifications · %d unread", center.UnreadCount())
}

func (v *notificationsView) selectedID() (string, bool) {
	item, ok := v.list.SelectedItem().(notificationItem)
	if !ok {
		return "", false
	}
	return item.n.ID, true
}

func (v *notificationsView) Update(msg tea.Msg) tea.Cmd {
	center := v.svc.Notifications()
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "r", "enter":
			if id, ok := v.selectedID(); ok {
				_ = center.MarkAsRead(id)
			}
			v.refresh()
			return nil
		case "a":
			center.MarkAllAsRead()
			v.refresh()
			return nil
		case "d", "delete":
			if id, ok := v.selectedID(); ok {
				_ = center.Delete(id)
			}
			v.refresh()
			return nil
		case "c":
			center.ClearAll()
			v.refresh()
			return nil
		}
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return cmd
}

func (v *notificationsView) View() string {
	hint := lipgloss.NewStyle().Foreground(mutedColor).Render("r → mark read    a → mark all read    d → delete    c → clear all")
	if len(v.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, v.list.Title, "", "No notifications.", hint)
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.list.View(), hint)
}

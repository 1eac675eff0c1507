package notification

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCenter(now time.Time) *Center {
	seq := 0
	return NewCenter(
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("n%d", seq)
		}),
	)
}

func titles(list []Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.Title
	}
	return out
}

func TestEmitPrependsNewestFirst(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	c := newTestCenter(now)
	c.Notify(TypeInfo, "A", "first")
	c.Notify(TypeInfo, "B", "second")
	c.Notify(TypeInfo, "C", "third")
	assert.Equal(t, []string{"C", "B", "A"}, titles(c.List()))
}

func TestEmitKeepsEmissionOrderOverDates(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	c := newTestCenter(now)
	c.Emit(Notification{Title: "recent", Date: now})
	c.Emit(Notification{Title: "old", Date: now.Add(-72 * time.Hour)})
	assert.Equal(t, []string{"old", "recent"}, titles(c.List()))
}

func TestEmitDefaults(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	c := newTestCenter(now)
	n := c.Emit(Notification{Title: " Hello ", Type: "bogus", Read: true})
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, "Hello", n.Title)
	assert.Equal(t, TypeInfo, n.Type)
	assert.False(t, n.Read)
	assert.Equal(t, now, n.Date)

	kept := c.Emit(Notification{ID: "custom", Title: "x", Type: TypeAlert})
	assert.Equal(t, "custom", kept.ID)
	assert.Equal(t, TypeAlert, kept.Type)
}

func TestEmitRemintsDuplicateID(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	c := newTestCenter(now)
	first := c.Emit(Notification{ID: "dup", Title: "first"})
	second := c.Emit(Notification{ID: "dup", Title: "second"})
	assert.Equal(t, "dup", first.ID)
	assert.Equal(t, "n1", second.ID)

	require.NoError(t, c.MarkAsRead("dup"))
	list := c.List()
	require.Len(t, list, 2)
	assert.False(t, list[0].Read)
	assert.True(t, list[1].Read)

	require.NoError(t, c.Delete(second.ID))
	assert.Equal(t, []string{"first"}, titles(c.List()))
}

func TestDefaultIDsAreUUIDs(t *testing.T) {
	c := NewCenter()
	a := c.Notify(TypeInfo, "a", "")
	b := c.Notify(TypeInfo, "b", "")
	assert.NotEqual(t, a.ID, b.ID)
	_, err := uuid.Parse(a.ID)
	assert.NoError(t, err)
}

func TestReadStateTransitions(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	c := newTestCenter(now)
	a := c.Notify(TypeInfo, "A", "")
	c.Notify(TypeAlert, "B", "")
	c.Notify(TypeUpdate, "C", "")
	assert.Equal(t, 3, c.UnreadCount())

	require.NoError(t, c.MarkAsRead(a.ID))
	require.NoError(t, c.MarkAsRead(a.ID))
	assert.Equal(t, 2, c.UnreadCount())
	got, err := c.Get(a.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)

	assert.ErrorIs(t, c.MarkAsRead("missing"), ErrNotFound)

	c.MarkAllAsRead()
	assert.Equal(t, 0, c.UnreadCount())
	for _, n := range c.List() {
		assert.True(t, n.Read)
	}
}

func TestDeleteAndClearAll(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	c := newTestCenter(now)
	a := c.Notify(TypeInfo, "A", "")
	b := c.Notify(TypeInfo, "B", "")
	c.Notify(TypeInfo, "C", "")

	require.NoError(t, c.Delete(b.ID))
	assert.Equal(t, []string{"C", "A"}, titles(c.List()))
	assert.ErrorIs(t, c.Delete(b.ID), ErrNotFound)
	_, err := c.Get(b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Delete(a.ID))
	assert.Equal(t, 1, c.Len())

	c.ClearAll()
	assert.Empty(t, c.List())
	assert.Equal(t, 0, c.UnreadCount())
}

func TestListIsACopy(t *testing.T) {
	c := newTestCenter(time.Now())
	c.Notify(TypeInfo, "A", "")
	list := c.List()
	list[0].Read = true
	assert.Equal(t, 1, c.UnreadCount())
}

func TestObserverSeesEmissions(t *testing.T) {
	var seen []string
	c := NewCenter(WithObserver(func(n Notification) { seen = append(seen, n.Title) }))
	c.Notify(TypeSuccess, "done", "")
	assert.Equal(t, []string{"done"}, seen)
}

func TestSeed(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	c := newTestCenter(now)
	Seed(c, now)
	list := c.List()
	assert.Equal(t, []string{"Welcome to SecureAware", "New Module Available", "Security Alert"}, titles(list))
	assert.Equal(t, TypeInfo, list[0].Type)
	assert.Equal(t, TypeUpdate, list[1].Type)
	assert.Equal(t, TypeAlert, list[2].Type)
	assert.Equal(t, now.Add(-time.Hour), list[0].Date)
	assert.Equal(t, 3, c.UnreadCount())
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{-5 * time.Minute, "just now"},
		{60 * time.Second, "1 minute ago"},
		{2 * time.Minute, "2 minutes ago"},
		{59 * time.Minute, "59 minutes ago"},
		{time.Hour, "1 hour ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{48 * time.Hour, "2 days ago"},
		{29 * 24 * time.Hour, "29 days ago"},
		{30 * 24 * time.Hour, "1 month ago"},
		{59 * 24 * time.Hour, "1 month ago"},
		{60 * 24 * time.Hour, "2 months ago"},
		{400 * 24 * time.Hour, "13 months ago"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now.Add(-tt.ago), now))
		})
	}
}

func TestModuleCompletedMessage(t *testing.T) {
	assert.Equal(t, `Congratulations! You've completed the "Password Security" module.`, ModuleCompletedMessage("Password Security"))
}

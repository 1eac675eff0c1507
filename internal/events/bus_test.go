package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversInOrderToMatchingSubscribers(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bus := NewBus(WithClock(func() time.Time { return fixed }))

	var got []string
	bus.Subscribe(ProcessorFunc(func(e Event) error {
		got = append(got, "first:"+e.ModuleID)
		assert.Equal(t, fixed, e.OccurredAt)
		return nil
	}), ModuleCompleted)
	bus.Subscribe(ProcessorFunc(func(e Event) error {
		got = append(got, "second:"+string(e.Type))
		return nil
	}), ModuleCompleted, ProfileUpdated)

	require.NoError(t, bus.Publish(Event{Type: ModuleCompleted, ModuleID: " wifi-security "}))
	require.NoError(t, bus.Publish(Event{Type: ProfileUpdated}))
	require.NoError(t, bus.Publish(Event{Type: PasswordUpdated}))

	assert.Equal(t, []string{
		"first:wifi-security",
		"second:module.completed",
		"second:profile.updated",
	}, got)
}

func TestBusRejectsInvalidEvents(t *testing.T) {
	bus := NewBus()
	called := false
	bus.Subscribe(ProcessorFunc(func(Event) error { called = true; return nil }), ModuleCompleted)

	assert.Error(t, bus.Publish(Event{}))
	assert.Error(t, bus.Publish(Event{Type: ModuleCompleted}))
	assert.Error(t, bus.Publish(Event{Type: "mystery"}))
	assert.False(t, called)
}

func TestBusJoinsSubscriberErrors(t *testing.T) {
	bus := NewBus()
	boom := errors.New("boom")
	ran := 0
	bus.Subscribe(ProcessorFunc(func(Event) error { ran++; return boom }), PasswordUpdated)
	bus.Subscribe(ProcessorFunc(func(Event) error { ran++; return nil }), PasswordUpdated)

	err := bus.Publish(Event{Type: PasswordUpdated})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, ran)
}

func TestNilProcessorFuncIsNoop(t *testing.T) {
	var f ProcessorFunc
	assert.NoError(t, f.HandleEvent(Event{Type: ProfileUpdated}))
}

package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_BoundedNewestFirst(t *testing.T) {
	s := New(3)
	for _, title := range []string{"a", "b", "c", "d"} {
		s.Info(title, "")
	}

	got := s.List()
	require.Len(t, got, 3)
	assert.Equal(t, "d", got[0].Title)
	assert.Equal(t, "b", got[2].Title)
}

func TestSubscribeDismiss(t *testing.T) {
	s := New(0)
	var events []Event
	unsub := s.Subscribe(func(e Event) { events = append(events, e) })

	n := s.Error("Call failed", "boom")
	assert.Equal(t, VariantDestructive, n.Variant)
	assert.True(t, s.Dismiss(n.ID))
	assert.False(t, s.Dismiss(n.ID))
	assert.Empty(t, s.List())

	unsub()
	unsub()
	s.Info("ignored", "")

	require.Len(t, events, 2)
	assert.Equal(t, EventPublished, events[0].Type)
	assert.Equal(t, EventDismissed, events[1].Type)
	assert.Equal(t, n.ID, events[1].Notification.ID)
}

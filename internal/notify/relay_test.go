package notify

import (
	"testing"
	"time"

	"github.com/gabapcia/pegvault/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForQueueLen polls the store until the notification queue reaches the
// expected length or the deadline passes.
func waitForQueueLen(t *testing.T, store *session.Store, want int) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(store.Snapshot().Notifications) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	require.Len(t, store.Snapshot().Notifications, want)
}

func TestRelay_Push(t *testing.T) {
	t.Run("queues the notification without arming a timer", func(t *testing.T) {
		store := session.NewStore()
		relay := New(store, WithTTL(10*time.Millisecond))
		defer relay.Stop()

		id := relay.Push(session.Notification{Kind: session.NotificationKindSuccess, Title: "done"})
		require.NotEmpty(t, id)

		time.Sleep(50 * time.Millisecond)

		notifications := store.Snapshot().Notifications
		require.Len(t, notifications, 1)
		assert.Equal(t, id, notifications[0].ID)
	})
}

func TestRelay_MarkObserved(t *testing.T) {
	t.Run("expires the notification after the TTL", func(t *testing.T) {
		store := session.NewStore()
		relay := New(store, WithTTL(10*time.Millisecond))
		defer relay.Stop()

		id := relay.Push(session.Notification{Kind: session.NotificationKindSuccess, Title: "done"})
		relay.MarkObserved(id)

		waitForQueueLen(t, store, 0)
	})

	t.Run("never expires pending notifications", func(t *testing.T) {
		store := session.NewStore()
		relay := New(store, WithTTL(10*time.Millisecond))
		defer relay.Stop()

		id := relay.Push(session.Notification{Kind: session.NotificationKindPending, Title: "waiting"})
		relay.MarkObserved(id)

		time.Sleep(50 * time.Millisecond)

		assert.Len(t, store.Snapshot().Notifications, 1)
	})

	t.Run("arming twice does not reset the timer", func(t *testing.T) {
		store := session.NewStore()
		relay := New(store, WithTTL(30*time.Millisecond))
		defer relay.Stop()

		id := relay.Push(session.Notification{Kind: session.NotificationKindInfo, Title: "hello"})
		relay.MarkObserved(id)
		time.Sleep(20 * time.Millisecond)
		relay.MarkObserved(id)

		waitForQueueLen(t, store, 0)
	})

	t.Run("ignores ids no longer in the queue", func(t *testing.T) {
		store := session.NewStore()
		relay := New(store)
		defer relay.Stop()

		relay.MarkObserved("missing")

		assert.Empty(t, store.Snapshot().Notifications)
	})
}

func TestRelay_Dismiss(t *testing.T) {
	t.Run("removes the notification immediately", func(t *testing.T) {
		store := session.NewStore()
		relay := New(store)
		defer relay.Stop()

		id := relay.Push(session.Notification{Kind: session.NotificationKindError, Title: "boom"})

		relay.Dismiss(id)

		assert.Empty(t, store.Snapshot().Notifications)
	})

	t.Run("cancels an armed expiry timer", func(t *testing.T) {
		store := session.NewStore()
		relay := New(store, WithTTL(20*time.Millisecond))
		defer relay.Stop()

		id := relay.Push(session.Notification{Kind: session.NotificationKindSuccess, Title: "done"})
		relay.MarkObserved(id)
		relay.Dismiss(id)

		// A stale timer firing later must not remove an unrelated entry.
		other := relay.Push(session.Notification{Kind: session.NotificationKindInfo, Title: "next"})
		time.Sleep(50 * time.Millisecond)

		notifications := store.Snapshot().Notifications
		require.Len(t, notifications, 1)
		assert.Equal(t, other, notifications[0].ID)
	})
}

func TestRelay_Stop(t *testing.T) {
	t.Run("cancels every armed timer and keeps the queue", func(t *testing.T) {
		store := session.NewStore()
		relay := New(store, WithTTL(10*time.Millisecond))

		first := relay.Push(session.Notification{Kind: session.NotificationKindSuccess, Title: "a"})
		second := relay.Push(session.Notification{Kind: session.NotificationKindInfo, Title: "b"})
		relay.MarkObserved(first)
		relay.MarkObserved(second)

		relay.Stop()
		time.Sleep(50 * time.Millisecond)

		assert.Len(t, store.Snapshot().Notifications, 2)
	})
}

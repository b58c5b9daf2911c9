// Package notify maps lifecycle events from the wallet session manager and
// the vault client into ephemeral, auto-expiring notifications in the
// session store.
package notify

import (
	"sync"
	"time"

	"github.com/gabapcia/pegvault/internal/session"
)

// defaultTTL is how long a non-pending notification stays visible once it
// has been observed.
const defaultTTL = 5 * time.Second

// Relay appends notifications to the session store and schedules their
// removal.
//
// Expiry counts from the moment a notification is first observed (rendered),
// not from its creation, so queued notifications do not expire unseen. Each
// timer is cancellable: a manual dismissal cancels the pending removal so a
// later reuse of the id cannot be removed by a stale timer. Pending-kind
// notifications never expire on their own; they represent an unresolved wait
// and persist until superseded or dismissed.
type Relay struct {
	store *session.Store
	ttl   time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// config holds optional settings for the relay.
type config struct {
	ttl time.Duration
}

// Option customizes relay construction.
type Option func(*config)

// WithTTL overrides the auto-expiry duration for non-pending notifications.
// Default: 5 seconds.
func WithTTL(d time.Duration) Option {
	return func(c *config) {
		c.ttl = d
	}
}

// New creates a relay writing into the given session store.
func New(store *session.Store, opts ...Option) *Relay {
	cfg := config{ttl: defaultTTL}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Relay{
		store:  store,
		ttl:    cfg.ttl,
		timers: make(map[string]*time.Timer),
	}
}

// Push appends a notification to the store and returns its generated id.
// No expiry timer is armed yet; that happens on MarkObserved.
func (r *Relay) Push(n session.Notification) string {
	return r.store.AddNotification(n)
}

// MarkObserved arms the auto-expiry timer for the notification with the
// given id. It is a no-op for pending-kind notifications, for ids already
// armed, and for ids no longer in the queue.
func (r *Relay) MarkObserved(id string) {
	var found *session.Notification
	for _, n := range r.store.Snapshot().Notifications {
		if n.ID == id {
			found = &n
			break
		}
	}
	if found == nil || found.Kind == session.NotificationKindPending {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, armed := r.timers[id]; armed {
		return
	}

	r.timers[id] = time.AfterFunc(r.ttl, func() {
		r.mu.Lock()
		delete(r.timers, id)
		r.mu.Unlock()

		r.store.RemoveNotification(id)
	})
}

// Dismiss removes the notification immediately, cancelling its expiry timer
// if one is armed.
func (r *Relay) Dismiss(id string) {
	r.mu.Lock()
	if timer, ok := r.timers[id]; ok {
		timer.Stop()
		delete(r.timers, id)
	}
	r.mu.Unlock()

	r.store.RemoveNotification(id)
}

// Stop cancels all armed expiry timers. Queued notifications are left in
// the store untouched.
func (r *Relay) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, timer := range r.timers {
		timer.Stop()
		delete(r.timers, id)
	}
}

package session

// NotificationKind classifies a user-facing notification.
//
// All kinds except pending are auto-expired by the notification relay after a
// fixed duration. Pending notifications represent an unresolved wait and
// persist until superseded by a terminal notification or dismissed manually.
type NotificationKind string

const (
	NotificationKindSuccess NotificationKind = "success"
	NotificationKindError   NotificationKind = "error"
	NotificationKindInfo    NotificationKind = "info"
	NotificationKindPending NotificationKind = "pending"
)

// Notification is an ephemeral user-facing event queued in the session store.
type Notification struct {
	ID        string           // unique id, assigned by the store on append
	Kind      NotificationKind // success, error, info or pending
	Title     string
	Message   string
	ChainHash string // optional transaction hash for explorer links
}

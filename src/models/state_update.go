package models

// -----------------------------------------------------------------------------
// UI push payloads (device websocket).
// -----------------------------------------------------------------------------

const (
	UpdateInitial  = "INITIAL"
	UpdateResource = "UPDATE"
	UpdateNotice   = "NOTICE"
)

// MStateUpdate is the message pushed to attached UI clients: either the
// initial "store is loaded" marker, a per-resource change notification, or
// a toast-style notice.
type MStateUpdate struct {
	Type      string   `json:"type"`
	Resource  Resource `json:"resource,omitempty"`
	Notice    *MNotice `json:"notice,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// MNotice is a user-visible, non-blocking message (auto-cancellation,
// rate-limit denial, connectivity problems).
type MNotice struct {
	Level   string `json:"level"` // "info", "warning" or "error"
	Message string `json:"message"`
}

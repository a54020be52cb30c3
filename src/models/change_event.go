package models

// -----------------------------------------------------------------------------
// Change feed event model.
// -----------------------------------------------------------------------------

// ChangeOperation is the backend's description of what happened to a row.
// Delivery metadata only: the router treats every operation the same way
// ("topic X changed, refetch X") and never branches on it.
type ChangeOperation string

const (
	OpInsert ChangeOperation = "insert"
	OpUpdate ChangeOperation = "update"
	OpDelete ChangeOperation = "delete"
)

// MChangeEvent is one notification on the shared change channel.
type MChangeEvent struct {
	Topic     Resource        `json:"topic"`
	Operation ChangeOperation `json:"operation"`
}

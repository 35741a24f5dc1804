package model

// Sync lifecycle for locally-created records.
// pending → synced | failed; failed → pending only via an officer edit or
// an explicit retry. There is no automatic backoff loop.
const (
	SyncPending = "pending"
	SyncFailed  = "failed"
	SyncSynced  = "synced"
)

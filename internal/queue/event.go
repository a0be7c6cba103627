// Package queue defines message payloads exchanged over the message broker.
package queue

// AccountPurgedEvent is published after an account purge finishes. It
// carries enough information for downstream consumers to log or trigger
// compliance reporting without querying the primary database, which no
// longer holds the user.
type AccountPurgedEvent struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	BlobsDeleted    int    `json:"blobs_deleted"`
	ActivityDeleted int64  `json:"activity_deleted"`
	Immediate       bool   `json:"immediate"`
	PurgedAt        string `json:"purged_at"`
}

package model

import "time"

// Deletion request statuses.
const (
	DeletionPending   = "pending"
	DeletionCompleted = "completed"
)

// DeletionRequest tracks a user's pending account deletion in the
// `deletion_requests` table. One row per user at most.
type DeletionRequest struct {
	UserID      string     // deletion_requests.user_id (PK)
	Email       string     // deletion_requests.email
	Status      string     // deletion_requests.status: pending|completed
	RequestedAt time.Time  // deletion_requests.requested_at
	CompletedAt *time.Time // deletion_requests.completed_at (nullable)
}

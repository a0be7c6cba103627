package model

import "time"

// ActivityType enumerates the event kinds recorded in the activity log.
type ActivityType string

const (
	ActivityLogin                  ActivityType = "login"
	ActivityLogout                 ActivityType = "logout"
	ActivityRegistration           ActivityType = "registration"
	ActivityPasswordChange         ActivityType = "password_change"
	ActivityPasswordResetRequested ActivityType = "password_reset_requested"
	ActivityPasswordResetCompleted ActivityType = "password_reset_completed"
	ActivityProfileUpdate          ActivityType = "profile_update"
	ActivityEmailVerification      ActivityType = "email_verification"
	ActivitySettingsChange         ActivityType = "settings_change"
	ActivityDataExport             ActivityType = "data_export"
	ActivityDeletionRequest        ActivityType = "deletion_request"
	ActivityDeletionCompleted      ActivityType = "deletion_completed"
)

// Activity record statuses.
const (
	ActivitySuccess = "success"
	ActivityFailure = "failure"
	ActivityPending = "pending"
)

// Activity is one append-only row in `activity_logs`. Records are never
// updated; they are bulk-deleted only when an account is purged.
type Activity struct {
	ID          uint64            `json:"id"`                 // activity_logs.id
	UserID      string            `json:"user_id"`            // activity_logs.user_id (not FK-enforced)
	Type        ActivityType      `json:"type"`               // activity_logs.type
	Description string            `json:"description"`        // activity_logs.description
	Status      string            `json:"status"`             // activity_logs.status
	Metadata    map[string]string `json:"metadata,omitempty"` // activity_logs.metadata (JSON column)
	CreatedAt   time.Time         `json:"created_at"`         // activity_logs.created_at (server-assigned)
}

package activity

import "time"

// ActivityType represents the type of lifecycle event
type ActivityType string

const (
	TypeProjectCreated      ActivityType = "project_created"
	TypeProjectDeleted      ActivityType = "project_deleted"
	TypeProjectUpdated      ActivityType = "project_updated"
	TypeMessageSent         ActivityType = "message_sent"
	TypeReplyReceived       ActivityType = "reply_received"
	TypeReplyFailed         ActivityType = "reply_failed"
	TypeRequirementsUpdated ActivityType = "requirements_updated"
	TypeCodeGenerated       ActivityType = "code_generated"
	TypeGenerationFailed    ActivityType = "generation_failed"
	TypeFileUpdated         ActivityType = "file_updated"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"project_id"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}

// ListActivityOptions filters a listing. Zero values mean no filter.
type ListActivityOptions struct {
	ProjectID    string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}

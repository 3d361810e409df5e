package models

import (
	"time"
)

// Participant statuses. Deletion is logical; deleted participants are
// filtered out at read time, never removed from the backend.
const (
	ParticipantPending   = "pending"
	ParticipantCompleted = "completed"
	ParticipantDeleted   = "deleted"
)

// Participant is a survey invitee. Code is the unique participation
// token used as the external lookup key; the store does not enforce
// its uniqueness across backends, callers must.
type Participant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Organization string     `json:"organization,omitempty"`
	Position     string     `json:"position,omitempty"`
	Code         string     `json:"code"`
	Status       string     `json:"status"` // "pending", "completed", "deleted"
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	AdminID      string     `json:"adminId"`
}

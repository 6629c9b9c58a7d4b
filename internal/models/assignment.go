package models

import "time"

// Assignment links one event to one personnel record. The composite unique
// index is the real duplicate guard; the service-level existence check only
// buys a better error message.
type Assignment struct {
	BaseModel
	EventID     string           `gorm:"not null;uniqueIndex:idx_event_personnel"`
	PersonnelID string           `gorm:"not null;uniqueIndex:idx_event_personnel"`
	RoleType    PersonnelRole    `gorm:"type:varchar(20);not null"`
	Status      AssignmentStatus `gorm:"type:varchar(20);not null;default:'requested';index"`

	RequestType   AssignmentRequestType `gorm:"type:varchar(20);not null"`
	RequestedBy   *string
	RespondedAt   *time.Time
	DeclineReason string
	AdminNotes    string

	// Relations (non-owning)
	Event     Event     `gorm:"foreignKey:EventID"`
	Personnel Personnel `gorm:"foreignKey:PersonnelID"`
}

// Rateable reports whether the assignment state qualifies its personnel to
// be rated at the event.
func (a *Assignment) Rateable() bool {
	switch a.Status {
	case AssignmentStatusAccepted, AssignmentStatusConfirmed, AssignmentStatusCompleted:
		return true
	}
	return false
}

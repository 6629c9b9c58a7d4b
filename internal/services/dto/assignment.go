package dto

import "time"

type CreateAssignmentRequest struct {
	EventID     string `json:"event_id" validate:"required,uuid"`
	PersonnelID string `json:"personnel_id" validate:"required,uuid"`
	RequestType string `json:"request_type" validate:"required,oneof=admin self event_director"`
}

type RespondAssignmentRequest struct {
	Accept        bool   `json:"accept"`
	DeclineReason string `json:"decline_reason" validate:"max=1000"`
}

type UpdateAssignmentRequest struct {
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=requested accepted declined confirmed completed"`
	AdminNotes *string `json:"admin_notes,omitempty" validate:"omitempty,max=2000"`
}

type AssignmentResponse struct {
	ID            string     `json:"id"`
	EventID       string     `json:"event_id"`
	EventTitle    string     `json:"event_title,omitempty"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	PersonnelID   string     `json:"personnel_id"`
	PersonnelName string     `json:"personnel_name,omitempty"`
	RoleType      string     `json:"role_type"`
	Status        string     `json:"status"`
	RequestType   string     `json:"request_type"`
	RequestedBy   *string    `json:"requested_by,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	DeclineReason string     `json:"decline_reason,omitempty"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	Upcoming      bool       `json:"upcoming"`
	CreatedAt     time.Time  `json:"created_at"`
}

package dto

import "time"

type UpdatePersonnelRequest struct {
	IsActive  *bool   `json:"is_active,omitempty"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Specialty *string `json:"specialty,omitempty" validate:"omitempty,max=120"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=5000"`
	Regions   *string `json:"regions,omitempty" validate:"omitempty,max=250"`
}

type ChangeLevelRequest struct {
	NewLevel string `json:"new_level" validate:"required,oneof=provisional certified senior master"`
	Reason   string `json:"reason" validate:"required,max=1000"`
}

type PersonnelResponse struct {
	ID                 string    `json:"id"`
	ProfileID          string    `json:"profile_id"`
	RoleType           string    `json:"role_type"`
	Name               string    `json:"name"`
	Level              string    `json:"level,omitempty"`
	Specialty          string    `json:"specialty,omitempty"`
	Bio                string    `json:"bio,omitempty"`
	Regions            string    `json:"regions,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	IsActive           bool      `json:"is_active"`
	TotalEventsHandled int       `json:"total_events_handled"`
	AverageRating      float64   `json:"average_rating"`
	TotalRatings       int       `json:"total_ratings"`
	CreatedAt          time.Time `json:"created_at"`
}

type PersonnelListResponse struct {
	Personnel []*PersonnelResponse `json:"personnel"`
	Total     int64                `json:"total"`
	Page      int                  `json:"page"`
	PageSize  int                  `json:"page_size"`
}

// DirectoryEntry is the public listing shape: no contact info, no admin
// notes.
type DirectoryEntry struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Level         string  `json:"level,omitempty"`
	Specialty     string  `json:"specialty,omitempty"`
	City          string  `json:"city,omitempty"`
	State         string  `json:"state,omitempty"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

type LevelChangeResponse struct {
	ID            string    `json:"id"`
	PreviousLevel string    `json:"previous_level"`
	NewLevel      string    `json:"new_level"`
	Reason        string    `json:"reason"`
	ChangedBy     string    `json:"changed_by"`
	CreatedAt     time.Time `json:"created_at"`
}

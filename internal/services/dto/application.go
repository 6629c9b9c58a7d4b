package dto

import "time"

type ReferenceInput struct {
	Name         string `json:"name" validate:"required,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"max=30"`
	Relationship string `json:"relationship" validate:"max=120"`
}

type SubmitApplicationRequest struct {
	FirstName string `json:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" validate:"required,max=80"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"max=30"`
	City      string `json:"city" validate:"max=120"`
	State     string `json:"state" validate:"max=40"`
	Specialty string `json:"specialty" validate:"max=120"`

	ExperienceYears  int    `json:"experience_years" validate:"min=0,max=80"`
	ExperienceEssay  string `json:"experience_essay" validate:"required,max=5000"`
	MotivationEssay  string `json:"motivation_essay" validate:"required,max=5000"`
	AcknowledgedCode bool   `json:"acknowledged_code" validate:"required"`

	References []ReferenceInput `json:"references" validate:"required,min=2,max=5,dive"`
}

type ReviewApplicationRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Notes    string `json:"notes" validate:"max=2000"`
	// Level is required when approving a judge application.
	Level string `json:"level" validate:"omitempty,oneof=provisional certified senior master"`
}

type QuickCreateRequest struct {
	ProfileID string `json:"profile_id" validate:"required,uuid"`
	RoleType  string `json:"role_type" validate:"required,oneof=judge event_director"`
	Level     string `json:"level" validate:"omitempty,oneof=provisional certified senior master"`
}

type DirectCreateRequest struct {
	ProfileID  string `json:"profile_id" validate:"required,uuid"`
	RoleType   string `json:"role_type" validate:"required,oneof=judge event_director"`
	Level      string `json:"level" validate:"omitempty,oneof=provisional certified senior master"`
	Specialty  string `json:"specialty" validate:"max=120"`
	Regions    string `json:"regions" validate:"max=250"`
	EnableRole bool   `json:"enable_role"`
}

type ReferenceResponse struct {
	ID           string     `json:"id"`
	Position     int        `json:"position"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Relationship string     `json:"relationship,omitempty"`
	Checked      bool       `json:"checked"`
	CheckedAt    *time.Time `json:"checked_at,omitempty"`
}

type ApplicationResponse struct {
	ID          string     `json:"id"`
	ProfileID   string     `json:"profile_id"`
	RoleType    string     `json:"role_type"`
	Status      string     `json:"status"`
	EntryMethod string     `json:"entry_method"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	Specialty   string     `json:"specialty,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	References []ReferenceResponse `json:"references,omitempty"`
}

type ApplicationListResponse struct {
	Applications []*ApplicationResponse `json:"applications"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	PageSize     int                    `json:"page_size"`
}

package models

import "time"

// Application is a submitted request to become personnel (judge or event
// director). Created on submission, mutated only by review, never deleted.
type Application struct {
	BaseModel
	ProfileID   string            `gorm:"not null;index"`
	RoleType    PersonnelRole     `gorm:"type:varchar(20);not null;index"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	EntryMethod EntryMethod       `gorm:"type:varchar(30);not null;default:'self'"`

	// Snapshot of applicant fields at submission time.
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	Email     string `gorm:"not null"`
	Phone     string
	City      string
	State     string
	Specialty string

	ExperienceYears  int
	ExperienceEssay  string
	MotivationEssay  string
	AcknowledgedCode bool `gorm:"default:false"`

	ReviewerID  *string
	ReviewedAt  *time.Time
	ReviewNotes string

	// Relations: references are owned and cascade with the application.
	Profile    Profile     `gorm:"foreignKey:ProfileID"`
	References []Reference `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

// Active reports whether this application blocks a new submission for the
// same (profile, role) pair.
func (a *Application) Active() bool {
	switch a.Status {
	case ApplicationStatusPending, ApplicationStatusUnderReview, ApplicationStatusApproved:
		return true
	}
	return false
}

// Reference is a third party who attests to an applicant's suitability.
// The checked fields are written exactly once, by token verification.
type Reference struct {
	BaseModel
	ApplicationID string `gorm:"not null;index"`
	Position      int    `gorm:"not null"`
	Name          string `gorm:"not null"`
	Email         string `gorm:"not null;index"`
	Phone         string
	Relationship  string

	Checked    bool `gorm:"default:false"`
	CheckNotes string
	CheckedAt  *time.Time
}

package models

import "time"

type Event struct {
	BaseModel
	Title    string      `gorm:"not null"`
	City     string
	State    string
	Date     time.Time   `gorm:"not null;index"`
	SeasonID *string     `gorm:"index"`
	Status   EventStatus `gorm:"type:varchar(20);not null;default:'scheduled'"`

	Season *Season `gorm:"foreignKey:SeasonID"`
}

type Season struct {
	BaseModel
	Name      string    `gorm:"not null;uniqueIndex"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	IsCurrent bool      `gorm:"default:false;index"`
}

// SeasonQualification is the per-season eligibility record created
// automatically when personnel is approved.
type SeasonQualification struct {
	BaseModel
	PersonnelID string        `gorm:"not null;uniqueIndex:idx_personnel_season"`
	SeasonID    string        `gorm:"not null;uniqueIndex:idx_personnel_season"`
	RoleType    PersonnelRole `gorm:"type:varchar(20);not null"`
	QualifiedAt time.Time     `gorm:"not null"`
}

package models

// Personnel is an active certified role-holder (judge or event director),
// one-to-one with a member profile per role type. Created only by
// application approval or direct admin creation.
type Personnel struct {
	BaseModel
	ProfileID     string        `gorm:"not null;uniqueIndex:idx_profile_role"`
	RoleType      PersonnelRole `gorm:"type:varchar(20);not null;uniqueIndex:idx_profile_role"`
	ApplicationID *string       `gorm:"index"`

	Level     string `gorm:"type:varchar(20)"`
	Specialty string
	Bio       string
	Regions   string
	Notes     string
	IsActive  bool `gorm:"default:true;index"`

	// Aggregates. TotalEventsHandled is maintained by single-statement SQL
	// increments; AverageRating/TotalRatings by full recompute over ratings.
	TotalEventsHandled int     `gorm:"default:0"`
	AverageRating      float64 `gorm:"default:0"`
	TotalRatings       int     `gorm:"default:0"`

	// Relations
	Profile     Profile      `gorm:"foreignKey:ProfileID"`
	Application *Application `gorm:"foreignKey:ApplicationID"`
}

// LevelChange is an immutable audit row for judge level transitions.
// Append-only: rows record true transitions only.
type LevelChange struct {
	BaseModel
	PersonnelID   string `gorm:"not null;index"`
	PreviousLevel string `gorm:"type:varchar(20);not null"`
	NewLevel      string `gorm:"type:varchar(20);not null"`
	Reason        string
	ChangedBy     string `gorm:"not null"`
}

package models

// Membership links a profile to its MECA competitor number for a season.
// The rating engine only honors paid memberships.
type Membership struct {
	BaseModel
	ProfileID string  `gorm:"not null;index"`
	MecaID    string  `gorm:"not null;index"`
	SeasonID  *string `gorm:"index"`
	Paid      bool    `gorm:"default:false"`

	Profile Profile `gorm:"foreignKey:ProfileID"`
}

// CompetitionResult is read-only collaborator data: one scored entry per
// competitor per class at an event. The rating engine matches result
// meca_ids against paid memberships to gate rating creation.
type CompetitionResult struct {
	BaseModel
	EventID   string  `gorm:"not null;index"`
	MecaID    string  `gorm:"not null;index"`
	Class     string
	Score     float64
	Placement int

	Event Event `gorm:"foreignKey:EventID"`
}

package models

// Rating is a post-event peer score. One per (event, entity, rater) pair,
// enforced by the composite unique index.
type Rating struct {
	BaseModel
	EventID        string        `gorm:"not null;uniqueIndex:idx_event_entity_rater"`
	EntityType     PersonnelRole `gorm:"type:varchar(20);not null;uniqueIndex:idx_event_entity_rater"`
	EntityID       string        `gorm:"not null;uniqueIndex:idx_event_entity_rater;index"`
	RaterProfileID string        `gorm:"not null;uniqueIndex:idx_event_entity_rater"`

	Score     int    `gorm:"not null;check:score >= 1 AND score <= 5"`
	Comment   string
	Anonymous bool `gorm:"default:false"`

	// Relations (non-owning)
	Event Event `gorm:"foreignKey:EventID"`
}

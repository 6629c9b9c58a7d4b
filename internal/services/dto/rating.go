package dto

import "time"

type CreateRatingRequest struct {
	EventID    string `json:"event_id" validate:"required,uuid"`
	EntityType string `json:"entity_type" validate:"required,oneof=judge event_director"`
	EntityID   string `json:"entity_id" validate:"required,uuid"`
	Score      int    `json:"score" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
	Anonymous  bool   `json:"anonymous"`
}

type RatingResponse struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title,omitempty"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Score      int       `json:"score"`
	Comment    string    `json:"comment,omitempty"`
	Anonymous  bool      `json:"anonymous"`
	CreatedAt  time.Time `json:"created_at"`
}

type RatingListResponse struct {
	Ratings  []*RatingResponse `json:"ratings"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// RateableEntity is one personnel assignment the caller may rate at an
// event, annotated with whether they already have.
type RateableEntity struct {
	PersonnelID   string `json:"personnel_id"`
	Name          string `json:"name"`
	RoleType      string `json:"role_type"`
	Level         string `json:"level,omitempty"`
	AlreadyRated  bool   `json:"already_rated"`
	AssignmentID  string `json:"assignment_id"`
	AssignStatus  string `json:"assignment_status"`
}

type RateableEntitiesResponse struct {
	Judges         []*RateableEntity `json:"judges"`
	EventDirectors []*RateableEntity `json:"event_directors"`
}

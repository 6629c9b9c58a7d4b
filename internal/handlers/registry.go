package handlers

import (
	"meca_backend/internal/services"
	"meca_backend/internal/validator"
)

// AppHandlers holds every handler in the application.
type AppHandlers struct {
	ApplicationHandler  *ApplicationHandler
	VerificationHandler *VerificationHandler
	PersonnelHandler    *PersonnelHandler
	AssignmentHandler   *AssignmentHandler
	RatingHandler       *RatingHandler
}

func NewAppHandlers(container *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v)

	return &AppHandlers{
		ApplicationHandler:  NewApplicationHandler(base, container.Application),
		VerificationHandler: NewVerificationHandler(base, container.Verification),
		PersonnelHandler:    NewPersonnelHandler(base, container.Personnel),
		AssignmentHandler:   NewAssignmentHandler(base, container.Assignment),
		RatingHandler:       NewRatingHandler(base, container.Rating),
	}
}

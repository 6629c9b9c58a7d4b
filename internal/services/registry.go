package services

import (
	"meca_backend/internal/repositories"
	"meca_backend/internal/workers"
)

// ServiceContainer wires every service over a shared repository set. The
// database handle is not held here: it travels per request through the
// handlers.
type ServiceContainer struct {
	Application  ApplicationService
	Personnel    PersonnelService
	Assignment   AssignmentService
	Rating       RatingService
	Verification VerificationService
}

func NewServiceContainer(notifier workers.Notifier) *ServiceContainer {
	profileRepo := repositories.NewProfileRepository()
	eventRepo := repositories.NewEventRepository()
	seasonRepo := repositories.NewSeasonRepository()
	applicationRepo := repositories.NewApplicationRepository()
	tokenRepo := repositories.NewTokenRepository()
	personnelRepo := repositories.NewPersonnelRepository()
	assignmentRepo := repositories.NewAssignmentRepository()
	ratingRepo := repositories.NewRatingRepository()

	seasons := NewCurrentSeasonProvider(seasonRepo)
	verification := NewVerificationService(tokenRepo, applicationRepo, notifier)

	return &ServiceContainer{
		Application:  NewApplicationService(applicationRepo, personnelRepo, profileRepo, verification, seasons, notifier),
		Personnel:    NewPersonnelService(personnelRepo),
		Assignment:   NewAssignmentService(assignmentRepo, personnelRepo, profileRepo, eventRepo, notifier),
		Rating:       NewRatingService(ratingRepo, assignmentRepo, personnelRepo, profileRepo, eventRepo),
		Verification: verification,
	}
}

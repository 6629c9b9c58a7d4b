package services

import (
	"time"

	"gorm.io/gorm"

	"meca_backend/internal/logger"
	"meca_backend/internal/models"
	"meca_backend/internal/repositories"
	"meca_backend/internal/services/dto"
	"meca_backend/pkg/apperrors"
)

// ratingDeleteWindow is how long a rater may retract their own rating.
const ratingDeleteWindow = 24 * time.Hour

// RatingService is the peer rating engine. Eligibility is gated three
// ways before a rating lands: the event must be completed, the rater must
// have competed there under a paid membership, and the rated personnel
// must hold a rateable assignment at the event. Aggregates on the rated
// personnel are fully recomputed in the same transaction as every write.
type RatingService interface {
	Create(db *gorm.DB, userID string, req *dto.CreateRatingRequest) (*dto.RatingResponse, error)
	Delete(db *gorm.DB, ratingID, userID string, isAdmin bool) error
	ListOwn(db *gorm.DB, userID string) ([]*dto.RatingResponse, error)
	RateableEntities(db *gorm.DB, userID, eventID string) (*dto.RateableEntitiesResponse, error)

	// Admin surface
	ListAll(db *gorm.DB, page, pageSize int) (*dto.RatingListResponse, error)
	Analytics(db *gorm.DB) (*repositories.RatingAnalytics, error)
}

type ratingService struct {
	ratingRepo     repositories.RatingRepository
	assignmentRepo repositories.AssignmentRepository
	personnelRepo  repositories.PersonnelRepository
	profileRepo    repositories.ProfileRepository
	eventRepo      repositories.EventRepository
}

func NewRatingService(
	ratingRepo repositories.RatingRepository,
	assignmentRepo repositories.AssignmentRepository,
	personnelRepo repositories.PersonnelRepository,
	profileRepo repositories.ProfileRepository,
	eventRepo repositories.EventRepository,
) RatingService {
	return &ratingService{
		ratingRepo:     ratingRepo,
		assignmentRepo: assignmentRepo,
		personnelRepo:  personnelRepo,
		profileRepo:    profileRepo,
		eventRepo:      eventRepo,
	}
}

func (s *ratingService) Create(db *gorm.DB, userID string, req *dto.CreateRatingRequest) (*dto.RatingResponse, error) {
	var rating *models.Rating

	err := db.Transaction(func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByID(tx, req.EventID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrEventNotFound) {
				return apperrors.ErrNotFound("rating", "Event not found")
			}
			return err
		}
		if event.Status != models.EventStatusCompleted {
			return apperrors.NewBadRequestError("Ratings open only after the event is completed")
		}

		profile, err := s.profileRepo.FindByUserID(tx, userID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrProfileNotFound) {
				return apperrors.ErrNotFound("rating", "Member profile not found")
			}
			return err
		}

		competed, err := s.ratingRepo.HasCompeted(tx, event.ID, profile.ID)
		if err != nil {
			return err
		}
		if !competed {
			return apperrors.NewBadRequestError("Only competitors at this event may rate its personnel")
		}

		// Fast-path duplicate check for the nicer error; the unique index on
		// (event, entity, rater) remains the real guard at insert time.
		entityType := models.PersonnelRole(req.EntityType)
		exists, err := s.ratingRepo.Exists(tx, event.ID, entityType, req.EntityID, profile.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrConflict("rating", "You have already rated this personnel for this event")
		}

		assignment, err := s.assignmentRepo.FindByEventAndPersonnel(tx, event.ID, req.EntityID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrAssignmentNotFound) {
				return apperrors.NewBadRequestError("Personnel was not assigned to this event")
			}
			return err
		}
		if assignment.RoleType != entityType {
			return apperrors.NewBadRequestError("Entity type does not match the assignment")
		}
		if !assignment.Rateable() {
			return apperrors.NewBadRequestError("Personnel did not serve at this event")
		}

		rating = &models.Rating{
			EventID:        event.ID,
			EntityType:     entityType,
			EntityID:       req.EntityID,
			RaterProfileID: profile.ID,
			Score:          req.Score,
			Comment:        req.Comment,
			Anonymous:      req.Anonymous,
		}
		if err := s.ratingRepo.Create(tx, rating); err != nil {
			if apperrors.Is(err, repositories.ErrRatingAlreadyExists) {
				return apperrors.ErrConflict("rating", "You have already rated this personnel for this event")
			}
			return err
		}
		rating.Event = *event

		return s.personnelRepo.RecomputeRatingAggregates(tx, req.EntityID)
	})
	if err != nil {
		return nil, err
	}

	return buildRatingResponse(rating), nil
}

// Delete retracts a rating and recomputes the target's aggregates in the
// same transaction. Raters get a 24 hour window on their own ratings;
// admins are not time boxed.
func (s *ratingService) Delete(db *gorm.DB, ratingID, userID string, isAdmin bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		rating, err := s.ratingRepo.FindByID(tx, ratingID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrRatingNotFound) {
				return apperrors.ErrNotFound("rating", "Rating not found")
			}
			return err
		}

		if !isAdmin {
			profile, err := s.profileRepo.FindByUserID(tx, userID)
			if err != nil {
				if apperrors.Is(err, repositories.ErrProfileNotFound) {
					return apperrors.NewForbiddenError("Rating does not belong to you")
				}
				return err
			}
			if rating.RaterProfileID != profile.ID {
				return apperrors.NewForbiddenError("Rating does not belong to you")
			}
			if time.Since(rating.CreatedAt) > ratingDeleteWindow {
				return apperrors.NewForbiddenError("Ratings may only be retracted within 24 hours")
			}
		}

		if err := s.ratingRepo.Delete(tx, rating.ID); err != nil {
			return err
		}
		return s.personnelRepo.RecomputeRatingAggregates(tx, rating.EntityID)
	})
}

func (s *ratingService) ListOwn(db *gorm.DB, userID string) ([]*dto.RatingResponse, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound("rating", "Member profile not found")
		}
		return nil, err
	}

	ratings, err := s.ratingRepo.ListByRater(db, profile.ID)
	if err != nil {
		return nil, err
	}
	return buildRatingResponses(ratings), nil
}

// RateableEntities lists the personnel the caller may rate at an event.
// Non-competitors get empty lists, not an error: the page simply has
// nothing to offer them.
func (s *ratingService) RateableEntities(db *gorm.DB, userID, eventID string) (*dto.RateableEntitiesResponse, error) {
	resp := &dto.RateableEntitiesResponse{
		Judges:         []*dto.RateableEntity{},
		EventDirectors: []*dto.RateableEntity{},
	}

	event, err := s.eventRepo.FindByID(db, eventID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrEventNotFound) {
			return nil, apperrors.ErrNotFound("rating", "Event not found")
		}
		return nil, err
	}
	if event.Status != models.EventStatusCompleted {
		return resp, nil
	}

	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return resp, nil
		}
		return nil, err
	}

	competed, err := s.ratingRepo.HasCompeted(db, event.ID, profile.ID)
	if err != nil {
		return nil, err
	}
	if !competed {
		return resp, nil
	}

	assignments, err := s.assignmentRepo.ListRateableAtEvent(db, event.ID)
	if err != nil {
		return nil, err
	}
	rated, err := s.ratingRepo.ListRatedEntityIDs(db, event.ID, profile.ID)
	if err != nil {
		return nil, err
	}

	for i := range assignments {
		assignment := &assignments[i]
		entity := &dto.RateableEntity{
			PersonnelID:  assignment.PersonnelID,
			Name:         assignment.Personnel.Profile.FullName(),
			RoleType:     string(assignment.RoleType),
			Level:        assignment.Personnel.Level,
			AlreadyRated: rated[assignment.PersonnelID],
			AssignmentID: assignment.ID,
			AssignStatus: string(assignment.Status),
		}
		switch assignment.RoleType {
		case models.PersonnelRoleJudge:
			resp.Judges = append(resp.Judges, entity)
		case models.PersonnelRoleEventDirector:
			resp.EventDirectors = append(resp.EventDirectors, entity)
		}
	}
	return resp, nil
}

func (s *ratingService) ListAll(db *gorm.DB, page, pageSize int) (*dto.RatingListResponse, error) {
	offset := (page - 1) * pageSize
	ratings, total, err := s.ratingRepo.ListAll(db, pageSize, offset)
	if err != nil {
		return nil, err
	}

	return &dto.RatingListResponse{
		Ratings:  buildRatingResponses(ratings),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *ratingService) Analytics(db *gorm.DB) (*repositories.RatingAnalytics, error) {
	analytics, err := s.ratingRepo.GetAnalytics(db)
	if err != nil {
		logger.Error("rating analytics query failed", "error", err.Error())
		return nil, err
	}
	return analytics, nil
}

func buildRatingResponses(ratings []models.Rating) []*dto.RatingResponse {
	responses := make([]*dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		responses = append(responses, buildRatingResponse(&ratings[i]))
	}
	return responses
}

func buildRatingResponse(rating *models.Rating) *dto.RatingResponse {
	resp := &dto.RatingResponse{
		ID:         rating.ID,
		EventID:    rating.EventID,
		EntityType: string(rating.EntityType),
		EntityID:   rating.EntityID,
		Score:      rating.Score,
		Comment:    rating.Comment,
		Anonymous:  rating.Anonymous,
		CreatedAt:  rating.CreatedAt,
	}
	if rating.Event.ID != "" {
		resp.EventTitle = rating.Event.Title
	}
	return resp
}

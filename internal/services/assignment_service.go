package services

import (
	"time"

	"gorm.io/gorm"

	"meca_backend/internal/email"
	"meca_backend/internal/logger"
	"meca_backend/internal/models"
	"meca_backend/internal/repositories"
	"meca_backend/internal/services/dto"
	"meca_backend/internal/workers"
	"meca_backend/pkg/apperrors"
)

// AssignmentService drives the event assignment state machine. The
// requested -> accepted/declined transition belongs to the personnel
// holder; everything else is an admin move. TotalEventsHandled tracks
// completed assignments and moves with the transitions into and out of
// the completed state.
type AssignmentService interface {
	Create(db *gorm.DB, requesterID string, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	Respond(db *gorm.DB, assignmentID, userID string, req *dto.RespondAssignmentRequest) (*dto.AssignmentResponse, error)
	Update(db *gorm.DB, assignmentID string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error)
	Delete(db *gorm.DB, assignmentID string) error

	Get(db *gorm.DB, assignmentID string) (*dto.AssignmentResponse, error)
	List(db *gorm.DB, eventID, personnelID string) ([]*dto.AssignmentResponse, error)
	ListByEvent(db *gorm.DB, eventID string) ([]*dto.AssignmentResponse, error)
	ListOwn(db *gorm.DB, userID string, upcomingOnly bool) ([]*dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignmentRepo repositories.AssignmentRepository
	personnelRepo  repositories.PersonnelRepository
	profileRepo    repositories.ProfileRepository
	eventRepo      repositories.EventRepository
	notifier       workers.Notifier
}

func NewAssignmentService(
	assignmentRepo repositories.AssignmentRepository,
	personnelRepo repositories.PersonnelRepository,
	profileRepo repositories.ProfileRepository,
	eventRepo repositories.EventRepository,
	notifier workers.Notifier,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		personnelRepo:  personnelRepo,
		profileRepo:    profileRepo,
		eventRepo:      eventRepo,
		notifier:       notifier,
	}
}

// ---------------- Mutations ----------------

func (s *assignmentService) Create(db *gorm.DB, requesterID string, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	event, err := s.eventRepo.FindByID(db, req.EventID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrEventNotFound) {
			return nil, apperrors.ErrNotFound("assignment", "Event not found")
		}
		return nil, err
	}

	personnel, err := s.personnelRepo.FindByID(db, req.PersonnelID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPersonnelNotFound) {
			return nil, apperrors.ErrNotFound("assignment", "Personnel not found")
		}
		return nil, err
	}
	if !personnel.IsActive {
		return nil, apperrors.NewBadRequestError("Personnel record is not active")
	}
	if !personnel.Profile.RoleEnabled(personnel.RoleType) {
		return nil, apperrors.NewBadRequestError("Member is not enabled for this role")
	}

	assignment := &models.Assignment{
		EventID:     event.ID,
		PersonnelID: personnel.ID,
		RoleType:    personnel.RoleType,
		Status:      models.AssignmentStatusRequested,
		RequestType: models.AssignmentRequestType(req.RequestType),
		RequestedBy: &requesterID,
	}
	if err := s.assignmentRepo.Create(db, assignment); err != nil {
		if apperrors.Is(err, repositories.ErrAssignmentAlreadyExists) {
			return nil, apperrors.ErrConflict("assignment", "Personnel is already assigned to this event")
		}
		return nil, err
	}

	assignment.Event = *event
	assignment.Personnel = *personnel
	s.notifyAssignment(assignment, "assignment_new", "New event assignment request")

	return buildAssignmentResponse(assignment, time.Now()), nil
}

// Respond records accept or decline. Only the personnel holder may act,
// and only while the assignment is still in requested state. The guarded
// repository update turns a lost race into a clean conflict.
func (s *assignmentService) Respond(db *gorm.DB, assignmentID, userID string, req *dto.RespondAssignmentRequest) (*dto.AssignmentResponse, error) {
	assignment, err := s.findAssignment(db, assignmentID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewForbiddenError("Assignment does not belong to you")
		}
		return nil, err
	}
	if assignment.Personnel.ProfileID != profile.ID {
		return nil, apperrors.NewForbiddenError("Assignment does not belong to you")
	}

	status := models.AssignmentStatusAccepted
	declineReason := ""
	if !req.Accept {
		status = models.AssignmentStatusDeclined
		declineReason = req.DeclineReason
	}

	now := time.Now()
	if err := s.assignmentRepo.Respond(db, assignment.ID, status, declineReason, now); err != nil {
		if apperrors.Is(err, repositories.ErrAssignmentNotRequested) {
			return nil, apperrors.ErrConflict("assignment", "Assignment has already been responded to")
		}
		return nil, err
	}
	assignment.Status = status
	assignment.DeclineReason = declineReason
	assignment.RespondedAt = &now

	s.notifyAssignment(assignment, "assignment_response", "Assignment response received")
	return buildAssignmentResponse(assignment, now), nil
}

// Update is the admin path for forcing status and notes. Exactly one
// notification goes out, and only when the status actually changed.
func (s *assignmentService) Update(db *gorm.DB, assignmentID string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error) {
	var assignment *models.Assignment
	statusChanged := false

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		assignment, err = s.findAssignment(tx, assignmentID)
		if err != nil {
			return err
		}
		oldStatus := assignment.Status

		fields := map[string]interface{}{}
		if req.AdminNotes != nil {
			fields["admin_notes"] = *req.AdminNotes
			assignment.AdminNotes = *req.AdminNotes
		}

		if req.Status != nil {
			newStatus := models.AssignmentStatus(*req.Status)
			if newStatus != oldStatus {
				fields["status"] = newStatus
				statusChanged = true

				// Counter follows the completed state in both directions.
				if newStatus == models.AssignmentStatusCompleted {
					if err := s.personnelRepo.IncrementEventsHandled(tx, assignment.PersonnelID); err != nil {
						return err
					}
				} else if oldStatus == models.AssignmentStatusCompleted {
					if err := s.personnelRepo.DecrementEventsHandled(tx, assignment.PersonnelID); err != nil {
						return err
					}
				}
				assignment.Status = newStatus
			}
		}

		if len(fields) == 0 {
			return apperrors.NewBadRequestError("No updatable fields provided")
		}
		if !statusChanged {
			return s.assignmentRepo.Update(tx, assignment.ID, fields)
		}

		// The status-guarded write makes the transition contingent on the
		// status read above. If a concurrent writer moved the row first the
		// whole transaction, counter movement included, rolls back.
		err = s.assignmentRepo.UpdateFromStatus(tx, assignment.ID, oldStatus, fields)
		if apperrors.Is(err, repositories.ErrAssignmentStatusChanged) {
			return apperrors.ErrConflict("assignment", "Assignment was modified concurrently")
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if statusChanged {
		s.notifyAssignment(assignment, "assignment_updated", "Assignment status updated")
	}
	return buildAssignmentResponse(assignment, time.Now()), nil
}

// Delete removes the assignment entirely. A completed assignment gives its
// counter contribution back before the row goes.
func (s *assignmentService) Delete(db *gorm.DB, assignmentID string) error {
	var assignment *models.Assignment

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		assignment, err = s.findAssignment(tx, assignmentID)
		if err != nil {
			return err
		}

		if assignment.Status == models.AssignmentStatusCompleted {
			if err := s.personnelRepo.DecrementEventsHandled(tx, assignment.PersonnelID); err != nil {
				return err
			}
		}
		return s.assignmentRepo.Delete(tx, assignment.ID)
	})
	if err != nil {
		return err
	}

	s.notifyAssignment(assignment, "assignment_cancelled", "Assignment cancelled")
	return nil
}

// ---------------- Queries ----------------

func (s *assignmentService) Get(db *gorm.DB, assignmentID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.findAssignment(db, assignmentID)
	if err != nil {
		return nil, err
	}
	return buildAssignmentResponse(assignment, time.Now()), nil
}

func (s *assignmentService) List(db *gorm.DB, eventID, personnelID string) ([]*dto.AssignmentResponse, error) {
	assignments, err := s.assignmentRepo.List(db, eventID, personnelID)
	if err != nil {
		return nil, err
	}
	return buildAssignmentResponses(assignments), nil
}

func (s *assignmentService) ListByEvent(db *gorm.DB, eventID string) ([]*dto.AssignmentResponse, error) {
	assignments, err := s.assignmentRepo.ListByEvent(db, eventID)
	if err != nil {
		return nil, err
	}
	return buildAssignmentResponses(assignments), nil
}

// ListOwn returns the caller's assignments across all of their personnel
// records, both role types included.
func (s *assignmentService) ListOwn(db *gorm.DB, userID string, upcomingOnly bool) ([]*dto.AssignmentResponse, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound("assignment", "Member profile not found")
		}
		return nil, err
	}

	assignments, err := s.assignmentRepo.ListByProfile(db, profile.ID)
	if err != nil {
		return nil, err
	}
	responses := buildAssignmentResponses(assignments)
	if !upcomingOnly {
		return responses, nil
	}
	upcoming := make([]*dto.AssignmentResponse, 0, len(responses))
	for _, resp := range responses {
		if resp.Upcoming {
			upcoming = append(upcoming, resp)
		}
	}
	return upcoming, nil
}

// ---------------- Helpers ----------------

func (s *assignmentService) findAssignment(db *gorm.DB, assignmentID string) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.FindByID(db, assignmentID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAssignmentNotFound) {
			return nil, apperrors.ErrNotFound("assignment", "Assignment not found")
		}
		return nil, err
	}
	return assignment, nil
}

// notifyAssignment mails the personnel holder about a lifecycle change.
// Always best effort: a render or queue failure is logged and dropped.
func (s *assignmentService) notifyAssignment(assignment *models.Assignment, template, subject string) {
	to := assignment.Personnel.Profile.Email
	if to == "" {
		logger.Warn("assignment notification skipped, no recipient email",
			"assignment_id", assignment.ID)
		return
	}

	html, err := email.Render(template, map[string]interface{}{
		"Name":       assignment.Personnel.Profile.FullName(),
		"EventTitle": assignment.Event.Title,
		"EventDate":  assignment.Event.Date.Format("January 2, 2006"),
		"RoleLabel":  roleLabel(assignment.RoleType),
		"Status":     string(assignment.Status),
		"Reason":     assignment.DeclineReason,
	})
	if err != nil {
		logger.Error("failed to render assignment mail",
			"template", template, "error", err.Error())
		return
	}
	s.notifier.Enqueue(&email.Message{To: to, Subject: subject, HTML: html})
}

func buildAssignmentResponses(assignments []models.Assignment) []*dto.AssignmentResponse {
	now := time.Now()
	responses := make([]*dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		responses = append(responses, buildAssignmentResponse(&assignments[i], now))
	}
	return responses
}

// buildAssignmentResponse computes the upcoming flag at read time rather
// than storing it: an event date in the future with a live status.
func buildAssignmentResponse(assignment *models.Assignment, now time.Time) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:            assignment.ID,
		EventID:       assignment.EventID,
		PersonnelID:   assignment.PersonnelID,
		RoleType:      string(assignment.RoleType),
		Status:        string(assignment.Status),
		RequestType:   string(assignment.RequestType),
		RequestedBy:   assignment.RequestedBy,
		RespondedAt:   assignment.RespondedAt,
		DeclineReason: assignment.DeclineReason,
		AdminNotes:    assignment.AdminNotes,
		CreatedAt:     assignment.CreatedAt,
	}
	if assignment.Event.ID != "" {
		resp.EventTitle = assignment.Event.Title
		eventDate := assignment.Event.Date
		resp.EventDate = &eventDate
		resp.Upcoming = eventDate.After(now) &&
			assignment.Status != models.AssignmentStatusDeclined &&
			assignment.Status != models.AssignmentStatusCompleted
	}
	if assignment.Personnel.ID != "" {
		resp.PersonnelName = assignment.Personnel.Profile.FullName()
	}
	return resp
}

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

// ApplicationService owns the application state machine:
// submission -> review -> approval/rejection, for both role types. Approval
// materializes the Personnel record, the season qualification and the
// profile role flag in one transaction.
type ApplicationService interface {
	Submit(db *gorm.DB, userID string, roleType models.PersonnelRole, req *dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error)
	Review(db *gorm.DB, applicationID, reviewerID string, req *dto.ReviewApplicationRequest) (*dto.ApplicationResponse, error)
	AdminQuickCreate(db *gorm.DB, adminID string, req *dto.QuickCreateRequest) (*dto.ApplicationResponse, error)
	AdminDirectCreate(db *gorm.DB, adminID string, req *dto.DirectCreateRequest) (*dto.PersonnelResponse, error)

	GetOwn(db *gorm.DB, userID string, roleType models.PersonnelRole) (*dto.ApplicationResponse, error)
	Get(db *gorm.DB, applicationID string) (*dto.ApplicationResponse, error)
	List(db *gorm.DB, roleType models.PersonnelRole, status models.ApplicationStatus, page, pageSize int) (*dto.ApplicationListResponse, error)
}

type applicationService struct {
	applicationRepo repositories.ApplicationRepository
	personnelRepo   repositories.PersonnelRepository
	profileRepo     repositories.ProfileRepository
	verification    VerificationService
	seasons         CurrentSeasonProvider
	notifier        workers.Notifier
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	personnelRepo repositories.PersonnelRepository,
	profileRepo repositories.ProfileRepository,
	verification VerificationService,
	seasons CurrentSeasonProvider,
	notifier workers.Notifier,
) ApplicationService {
	return &applicationService{
		applicationRepo: applicationRepo,
		personnelRepo:   personnelRepo,
		profileRepo:     profileRepo,
		verification:    verification,
		seasons:         seasons,
		notifier:        notifier,
	}
}

// ---------------- Submission ----------------

func (s *applicationService) Submit(db *gorm.DB, userID string, roleType models.PersonnelRole, req *dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound("application", "Member profile not found")
		}
		return nil, err
	}

	application := &models.Application{
		ProfileID:        profile.ID,
		RoleType:         roleType,
		Status:           models.ApplicationStatusPending,
		EntryMethod:      models.EntryMethodSelf,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		City:             req.City,
		State:            req.State,
		Specialty:        req.Specialty,
		ExperienceYears:  req.ExperienceYears,
		ExperienceEssay:  req.ExperienceEssay,
		MotivationEssay:  req.MotivationEssay,
		AcknowledgedCode: req.AcknowledgedCode,
	}
	for i, ref := range req.References {
		application.References = append(application.References, models.Reference{
			Position:     i + 1,
			Name:         ref.Name,
			Email:        ref.Email,
			Phone:        ref.Phone,
			Relationship: ref.Relationship,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.guardNoActiveRole(tx, profile.ID, roleType); err != nil {
			return err
		}
		return s.createApplication(tx, application)
	})
	if err != nil {
		return nil, err
	}

	// Token issuing and mailing are fire-and-forget: the submission already
	// committed and a contact failure must not surface to the applicant.
	s.verification.IssueReferenceTokens(db, application)

	return buildApplicationResponse(application), nil
}

// createApplication persists through the repository and turns a lost race on
// the live-application unique index into the same Conflict the fast-path
// check produces.
func (s *applicationService) createApplication(tx *gorm.DB, application *models.Application) error {
	err := s.applicationRepo.Create(tx, application)
	if apperrors.Is(err, repositories.ErrApplicationAlreadyExists) {
		return apperrors.ErrConflict("application", "An active application already exists for this role")
	}
	return err
}

// guardNoActiveRole fails with Conflict when an active application or an
// active personnel record already exists for (profile, role).
func (s *applicationService) guardNoActiveRole(tx *gorm.DB, profileID string, roleType models.PersonnelRole) error {
	_, err := s.applicationRepo.FindActiveByProfileAndRole(tx, profileID, roleType)
	if err == nil {
		return apperrors.ErrConflict("application", "An active application already exists for this role")
	}
	if !apperrors.Is(err, repositories.ErrApplicationNotFound) {
		return err
	}

	personnel, err := s.personnelRepo.FindByProfileAndRole(tx, profileID, roleType)
	if err == nil && personnel.IsActive {
		return apperrors.ErrConflict("application", "An active personnel record already exists for this role")
	}
	if err != nil && !apperrors.Is(err, repositories.ErrPersonnelNotFound) {
		return err
	}
	return nil
}

// ---------------- Review ----------------

func (s *applicationService) Review(db *gorm.DB, applicationID, reviewerID string, req *dto.ReviewApplicationRequest) (*dto.ApplicationResponse, error) {
	var application *models.Application

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		application, err = s.applicationRepo.FindByID(tx, applicationID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrApplicationNotFound) {
				return apperrors.ErrNotFound("application", "Application not found")
			}
			return err
		}

		// Idempotent-approval guard: once approved, a second review of
		// either kind is a conflict and must not create a second Personnel.
		if application.Status == models.ApplicationStatusApproved {
			return apperrors.ErrConflict("application", "Application has already been approved")
		}

		decision := models.ApplicationStatus(req.Decision)
		now := time.Now()

		if err := s.applicationRepo.SetReview(tx, application.ID, decision, reviewerID, req.Notes, now); err != nil {
			return err
		}
		application.Status = decision
		application.ReviewerID = &reviewerID
		application.ReviewedAt = &now
		application.ReviewNotes = req.Notes

		if decision != models.ApplicationStatusApproved {
			return nil
		}

		return s.materializePersonnel(tx, application, req.Level)
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(application)
	return buildApplicationResponse(application), nil
}

// materializePersonnel creates the active role record, the current-season
// qualification and the profile role flag. Runs inside the review
// transaction: everything commits or nothing does.
func (s *applicationService) materializePersonnel(tx *gorm.DB, application *models.Application, level string) error {
	if level == "" && application.RoleType == models.PersonnelRoleJudge {
		level = string(models.JudgeLevelProvisional)
	}

	personnel := &models.Personnel{
		ProfileID:     application.ProfileID,
		RoleType:      application.RoleType,
		ApplicationID: &application.ID,
		Level:         level,
		Specialty:     application.Specialty,
		Regions:       application.State,
		IsActive:      true,
	}
	if err := s.personnelRepo.Create(tx, personnel); err != nil {
		if apperrors.Is(err, repositories.ErrPersonnelAlreadyExists) {
			return apperrors.ErrConflict("application", "A personnel record already exists for this profile and role")
		}
		return err
	}

	season, err := s.seasons.Current(tx)
	if err != nil {
		return err
	}
	if season != nil {
		qualification := &models.SeasonQualification{
			PersonnelID: personnel.ID,
			SeasonID:    season.ID,
			RoleType:    application.RoleType,
			QualifiedAt: time.Now(),
		}
		if err := tx.Create(qualification).Error; err != nil {
			return err
		}
	}

	return s.profileRepo.SetRoleEnabled(tx, application.ProfileID, application.RoleType, true)
}

func (s *applicationService) notifyStatusChange(application *models.Application) {
	html, err := email.Render("application_status", map[string]interface{}{
		"Name":      application.FirstName,
		"RoleLabel": roleLabel(application.RoleType),
		"Status":    string(application.Status),
		"Notes":     application.ReviewNotes,
	})
	if err != nil {
		logger.Error("failed to render status mail", "error", err.Error())
		return
	}
	s.notifier.Enqueue(&email.Message{
		To:      application.Email,
		Subject: "Application status updated",
		HTML:    html,
	})
}

// ---------------- Admin creation paths ----------------

// AdminQuickCreate files and approves an application in one call, with
// placeholder essays. Same invariants as the self-service path.
func (s *applicationService) AdminQuickCreate(db *gorm.DB, adminID string, req *dto.QuickCreateRequest) (*dto.ApplicationResponse, error) {
	roleType := models.PersonnelRole(req.RoleType)

	profile, err := s.profileRepo.FindByID(db, req.ProfileID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound("application", "Member profile not found")
		}
		return nil, err
	}

	var application *models.Application
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.guardNoActiveRole(tx, profile.ID, roleType); err != nil {
			return err
		}

		now := time.Now()
		application = &models.Application{
			ProfileID:        profile.ID,
			RoleType:         roleType,
			Status:           models.ApplicationStatusApproved,
			EntryMethod:      models.EntryMethodAdminQuick,
			FirstName:        profile.FirstName,
			LastName:         profile.LastName,
			Email:            profile.Email,
			Phone:            profile.Phone,
			City:             profile.City,
			State:            profile.State,
			ExperienceEssay:  "Entered by administrator",
			MotivationEssay:  "Entered by administrator",
			AcknowledgedCode: true,
			ReviewerID:       &adminID,
			ReviewedAt:       &now,
		}
		if err := s.createApplication(tx, application); err != nil {
			return err
		}

		return s.materializePersonnel(tx, application, req.Level)
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(application)
	return buildApplicationResponse(application), nil
}

// AdminDirectCreate writes Personnel without an Application. The profile's
// role-enablement flag is only flipped when the admin explicitly asks.
func (s *applicationService) AdminDirectCreate(db *gorm.DB, adminID string, req *dto.DirectCreateRequest) (*dto.PersonnelResponse, error) {
	roleType := models.PersonnelRole(req.RoleType)

	profile, err := s.profileRepo.FindByID(db, req.ProfileID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound("personnel", "Member profile not found")
		}
		return nil, err
	}

	level := req.Level
	if level == "" && roleType == models.PersonnelRoleJudge {
		level = string(models.JudgeLevelProvisional)
	}

	personnel := &models.Personnel{
		ProfileID: profile.ID,
		RoleType:  roleType,
		Level:     level,
		Specialty: req.Specialty,
		Regions:   req.Regions,
		IsActive:  true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.personnelRepo.Create(tx, personnel); err != nil {
			if apperrors.Is(err, repositories.ErrPersonnelAlreadyExists) {
				return apperrors.ErrConflict("personnel", "A personnel record already exists for this profile and role")
			}
			return err
		}

		if req.EnableRole {
			return s.profileRepo.SetRoleEnabled(tx, profile.ID, roleType, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("personnel created directly by admin",
		"personnel_id", personnel.ID, "admin_id", adminID, "role_type", string(roleType))

	personnel.Profile = *profile
	return buildPersonnelResponse(personnel), nil
}

// ---------------- Queries ----------------

func (s *applicationService) GetOwn(db *gorm.DB, userID string, roleType models.PersonnelRole) (*dto.ApplicationResponse, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound("application", "Member profile not found")
		}
		return nil, err
	}

	application, err := s.applicationRepo.FindLatestByProfileAndRole(db, profile.ID, roleType)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrNotFound("application", "No application found for this role")
		}
		return nil, err
	}
	return buildApplicationResponse(application), nil
}

func (s *applicationService) Get(db *gorm.DB, applicationID string) (*dto.ApplicationResponse, error) {
	application, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrNotFound("application", "Application not found")
		}
		return nil, err
	}
	return buildApplicationResponse(application), nil
}

func (s *applicationService) List(db *gorm.DB, roleType models.PersonnelRole, status models.ApplicationStatus, page, pageSize int) (*dto.ApplicationListResponse, error) {
	offset := (page - 1) * pageSize
	applications, total, err := s.applicationRepo.List(db, roleType, status, pageSize, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ApplicationResponse, 0, len(applications))
	for i := range applications {
		responses = append(responses, buildApplicationResponse(&applications[i]))
	}

	return &dto.ApplicationListResponse{
		Applications: responses,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

// ---------------- Helpers ----------------

func buildApplicationResponse(application *models.Application) *dto.ApplicationResponse {
	resp := &dto.ApplicationResponse{
		ID:          application.ID,
		ProfileID:   application.ProfileID,
		RoleType:    string(application.RoleType),
		Status:      string(application.Status),
		EntryMethod: string(application.EntryMethod),
		FirstName:   application.FirstName,
		LastName:    application.LastName,
		Email:       application.Email,
		City:        application.City,
		State:       application.State,
		Specialty:   application.Specialty,
		ReviewedAt:  application.ReviewedAt,
		ReviewNotes: application.ReviewNotes,
		CreatedAt:   application.CreatedAt,
	}
	for _, ref := range application.References {
		resp.References = append(resp.References, dto.ReferenceResponse{
			ID:           ref.ID,
			Position:     ref.Position,
			Name:         ref.Name,
			Email:        ref.Email,
			Relationship: ref.Relationship,
			Checked:      ref.Checked,
			CheckedAt:    ref.CheckedAt,
		})
	}
	return resp
}

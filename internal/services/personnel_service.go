package services

import (
	"gorm.io/gorm"

	"meca_backend/internal/logger"
	"meca_backend/internal/models"
	"meca_backend/internal/repositories"
	"meca_backend/internal/services/dto"
	"meca_backend/pkg/apperrors"
)

// PersonnelService covers registry maintenance: admin field updates, the
// judge level ladder with its audit trail, and the public directory.
type PersonnelService interface {
	Get(db *gorm.DB, personnelID string) (*dto.PersonnelResponse, error)
	List(db *gorm.DB, roleType models.PersonnelRole, activeOnly bool, page, pageSize int) (*dto.PersonnelListResponse, error)
	Update(db *gorm.DB, personnelID string, req *dto.UpdatePersonnelRequest) (*dto.PersonnelResponse, error)
	ChangeLevel(db *gorm.DB, personnelID, adminID string, req *dto.ChangeLevelRequest) (*dto.PersonnelResponse, error)
	LevelHistory(db *gorm.DB, personnelID string) ([]dto.LevelChangeResponse, error)
	Directory(db *gorm.DB, roleType models.PersonnelRole) ([]dto.DirectoryEntry, error)
}

type personnelService struct {
	personnelRepo repositories.PersonnelRepository
}

func NewPersonnelService(personnelRepo repositories.PersonnelRepository) PersonnelService {
	return &personnelService{personnelRepo: personnelRepo}
}

func (s *personnelService) Get(db *gorm.DB, personnelID string) (*dto.PersonnelResponse, error) {
	personnel, err := s.findPersonnel(db, personnelID)
	if err != nil {
		return nil, err
	}
	return buildPersonnelResponse(personnel), nil
}

func (s *personnelService) List(db *gorm.DB, roleType models.PersonnelRole, activeOnly bool, page, pageSize int) (*dto.PersonnelListResponse, error) {
	offset := (page - 1) * pageSize
	personnel, total, err := s.personnelRepo.List(db, roleType, activeOnly, pageSize, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PersonnelResponse, 0, len(personnel))
	for i := range personnel {
		responses = append(responses, buildPersonnelResponse(&personnel[i]))
	}

	return &dto.PersonnelListResponse{
		Personnel: responses,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// Update writes only the admin-editable fields. Level, role type and the
// aggregate counters are never touched here.
func (s *personnelService) Update(db *gorm.DB, personnelID string, req *dto.UpdatePersonnelRequest) (*dto.PersonnelResponse, error) {
	if _, err := s.findPersonnel(db, personnelID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Specialty != nil {
		fields["specialty"] = *req.Specialty
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Regions != nil {
		fields["regions"] = *req.Regions
	}
	if len(fields) == 0 {
		return nil, apperrors.NewBadRequestError("No updatable fields provided")
	}

	if err := s.personnelRepo.UpdateFields(db, personnelID, fields); err != nil {
		return nil, err
	}

	personnel, err := s.findPersonnel(db, personnelID)
	if err != nil {
		return nil, err
	}
	return buildPersonnelResponse(personnel), nil
}

// ChangeLevel moves a judge along the level ladder and appends the audit
// row in the same transaction. A transition to the current level is
// rejected so the history only ever records real changes.
func (s *personnelService) ChangeLevel(db *gorm.DB, personnelID, adminID string, req *dto.ChangeLevelRequest) (*dto.PersonnelResponse, error) {
	var personnel *models.Personnel

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		personnel, err = s.findPersonnel(tx, personnelID)
		if err != nil {
			return err
		}

		if personnel.RoleType != models.PersonnelRoleJudge {
			return apperrors.ErrInvalidOperation("personnel", "Levels apply to judges only")
		}
		if !models.ValidJudgeLevel(req.NewLevel) {
			return apperrors.NewBadRequestError("Unknown judge level")
		}
		if personnel.Level == req.NewLevel {
			return apperrors.NewBadRequestError("Judge already holds this level")
		}

		change := &models.LevelChange{
			PersonnelID:   personnel.ID,
			PreviousLevel: personnel.Level,
			NewLevel:      req.NewLevel,
			Reason:        req.Reason,
			ChangedBy:     adminID,
		}
		if err := s.personnelRepo.AppendLevelChange(tx, change); err != nil {
			return err
		}
		if err := s.personnelRepo.UpdateLevel(tx, personnel.ID, req.NewLevel); err != nil {
			return err
		}
		personnel.Level = req.NewLevel
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("judge level changed",
		"personnel_id", personnel.ID, "new_level", personnel.Level, "changed_by", adminID)
	return buildPersonnelResponse(personnel), nil
}

func (s *personnelService) LevelHistory(db *gorm.DB, personnelID string) ([]dto.LevelChangeResponse, error) {
	if _, err := s.findPersonnel(db, personnelID); err != nil {
		return nil, err
	}

	changes, err := s.personnelRepo.ListLevelChanges(db, personnelID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.LevelChangeResponse, 0, len(changes))
	for _, change := range changes {
		responses = append(responses, dto.LevelChangeResponse{
			ID:            change.ID,
			PreviousLevel: change.PreviousLevel,
			NewLevel:      change.NewLevel,
			Reason:        change.Reason,
			ChangedBy:     change.ChangedBy,
			CreatedAt:     change.CreatedAt,
		})
	}
	return responses, nil
}

// Directory lists active personnel for the public site. Contact details
// and admin notes never leave this method.
func (s *personnelService) Directory(db *gorm.DB, roleType models.PersonnelRole) ([]dto.DirectoryEntry, error) {
	personnel, _, err := s.personnelRepo.List(db, roleType, true, 0, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.DirectoryEntry, 0, len(personnel))
	for i := range personnel {
		p := &personnel[i]
		entries = append(entries, dto.DirectoryEntry{
			ID:            p.ID,
			Name:          p.Profile.FullName(),
			Level:         p.Level,
			Specialty:     p.Specialty,
			City:          p.Profile.City,
			State:         p.Profile.State,
			AverageRating: p.AverageRating,
			TotalRatings:  p.TotalRatings,
		})
	}
	return entries, nil
}

func (s *personnelService) findPersonnel(db *gorm.DB, personnelID string) (*models.Personnel, error) {
	personnel, err := s.personnelRepo.FindByID(db, personnelID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPersonnelNotFound) {
			return nil, apperrors.ErrNotFound("personnel", "Personnel not found")
		}
		return nil, err
	}
	return personnel, nil
}

func buildPersonnelResponse(personnel *models.Personnel) *dto.PersonnelResponse {
	return &dto.PersonnelResponse{
		ID:                 personnel.ID,
		ProfileID:          personnel.ProfileID,
		RoleType:           string(personnel.RoleType),
		Name:               personnel.Profile.FullName(),
		Level:              personnel.Level,
		Specialty:          personnel.Specialty,
		Bio:                personnel.Bio,
		Regions:            personnel.Regions,
		Notes:              personnel.Notes,
		IsActive:           personnel.IsActive,
		TotalEventsHandled: personnel.TotalEventsHandled,
		AverageRating:      personnel.AverageRating,
		TotalRatings:       personnel.TotalRatings,
		CreatedAt:          personnel.CreatedAt,
	}
}

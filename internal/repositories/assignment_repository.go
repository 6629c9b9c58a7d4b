package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"meca_backend/internal/models"
)

var (
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrAssignmentAlreadyExists = errors.New("assignment already exists for this event and personnel")
	ErrAssignmentNotRequested  = errors.New("assignment is not awaiting a response")
	ErrAssignmentStatusChanged = errors.New("assignment status changed concurrently")
)

type AssignmentRepository interface {
	Create(db *gorm.DB, assignment *models.Assignment) error
	FindByID(db *gorm.DB, id string) (*models.Assignment, error)
	FindByEventAndPersonnel(db *gorm.DB, eventID, personnelID string) (*models.Assignment, error)
	List(db *gorm.DB, eventID, personnelID string) ([]models.Assignment, error)
	ListByEvent(db *gorm.DB, eventID string) ([]models.Assignment, error)
	ListByProfile(db *gorm.DB, profileID string) ([]models.Assignment, error)
	ListRateableAtEvent(db *gorm.DB, eventID string) ([]models.Assignment, error)
	Respond(db *gorm.DB, id string, status models.AssignmentStatus, declineReason string, respondedAt time.Time) error
	Update(db *gorm.DB, id string, fields map[string]interface{}) error
	UpdateFromStatus(db *gorm.DB, id string, from models.AssignmentStatus, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error
}

type AssignmentRepositoryImpl struct{}

func NewAssignmentRepository() AssignmentRepository {
	return &AssignmentRepositoryImpl{}
}

// Create relies on the (event_id, personnel_id) unique index as the real
// duplicate guard; duplicate-key errors surface as ErrAssignmentAlreadyExists.
func (r *AssignmentRepositoryImpl) Create(db *gorm.DB, assignment *models.Assignment) error {
	err := db.Create(assignment).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAssignmentAlreadyExists
	}
	return err
}

func (r *AssignmentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Assignment, error) {
	var assignment models.Assignment
	err := db.Preload("Event").Preload("Personnel").Preload("Personnel.Profile").
		First(&assignment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepositoryImpl) FindByEventAndPersonnel(db *gorm.DB, eventID, personnelID string) (*models.Assignment, error) {
	var assignment models.Assignment
	err := db.Where("event_id = ? AND personnel_id = ?", eventID, personnelID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// List returns all assignments, optionally narrowed by event and/or
// personnel. Empty filter values mean "any".
func (r *AssignmentRepositoryImpl) List(db *gorm.DB, eventID, personnelID string) ([]models.Assignment, error) {
	query := db.Preload("Event").Preload("Personnel").Preload("Personnel.Profile")
	if eventID != "" {
		query = query.Where("event_id = ?", eventID)
	}
	if personnelID != "" {
		query = query.Where("personnel_id = ?", personnelID)
	}
	var assignments []models.Assignment
	err := query.Order("created_at DESC").Find(&assignments).Error
	return assignments, err
}

func (r *AssignmentRepositoryImpl) ListByEvent(db *gorm.DB, eventID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := db.Preload("Personnel").Preload("Personnel.Profile").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

// ListByProfile returns assignments across all personnel records owned by
// the profile (a member can hold both roles).
func (r *AssignmentRepositoryImpl) ListByProfile(db *gorm.DB, profileID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := db.Preload("Event").Preload("Personnel").
		Joins("JOIN personnels ON personnels.id = assignments.personnel_id").
		Where("personnels.profile_id = ?", profileID).
		Order("assignments.created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *AssignmentRepositoryImpl) ListRateableAtEvent(db *gorm.DB, eventID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := db.Preload("Personnel").Preload("Personnel.Profile").
		Where("event_id = ? AND status IN ?", eventID, models.RateableAssignmentStatuses).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

// Respond transitions requested -> accepted|declined with a status guard,
// so concurrent responses cannot both win.
func (r *AssignmentRepositoryImpl) Respond(db *gorm.DB, id string, status models.AssignmentStatus, declineReason string, respondedAt time.Time) error {
	result := db.Model(&models.Assignment{}).
		Where("id = ? AND status = ?", id, models.AssignmentStatusRequested).
		Updates(map[string]interface{}{
			"status":         status,
			"decline_reason": declineReason,
			"responded_at":   respondedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotRequested
	}
	return nil
}

func (r *AssignmentRepositoryImpl) Update(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Assignment{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// UpdateFromStatus writes the fields only while the row still holds the
// status the caller observed. A zero rows-affected result means another
// writer transitioned the row first, so exactly one status change wins and
// the counter moves at most once per real transition.
func (r *AssignmentRepositoryImpl) UpdateFromStatus(db *gorm.DB, id string, from models.AssignmentStatus, fields map[string]interface{}) error {
	result := db.Model(&models.Assignment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentStatusChanged
	}
	return nil
}

func (r *AssignmentRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Assignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

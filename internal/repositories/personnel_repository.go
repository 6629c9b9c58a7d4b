package repositories

import (
	"errors"

	"gorm.io/gorm"

	"meca_backend/internal/models"
)

var (
	ErrPersonnelNotFound      = errors.New("personnel not found")
	ErrPersonnelAlreadyExists = errors.New("personnel record already exists for this profile and role")
)

// Whitelisted columns for partial personnel updates. Re-parenting columns
// (profile_id, application_id) are deliberately absent.
var personnelUpdatableFields = map[string]bool{
	"is_active": true,
	"notes":     true,
	"specialty": true,
	"bio":       true,
	"regions":   true,
}

type PersonnelRepository interface {
	Create(db *gorm.DB, personnel *models.Personnel) error
	FindByID(db *gorm.DB, id string) (*models.Personnel, error)
	FindByProfileAndRole(db *gorm.DB, profileID string, role models.PersonnelRole) (*models.Personnel, error)
	List(db *gorm.DB, role models.PersonnelRole, activeOnly bool, limit, offset int) ([]models.Personnel, int64, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	UpdateLevel(db *gorm.DB, id, level string) error

	// Level history
	AppendLevelChange(db *gorm.DB, change *models.LevelChange) error
	ListLevelChanges(db *gorm.DB, personnelID string) ([]models.LevelChange, error)

	// Counters and aggregates
	IncrementEventsHandled(db *gorm.DB, id string) error
	DecrementEventsHandled(db *gorm.DB, id string) error
	RecomputeRatingAggregates(db *gorm.DB, id string) error
}

type PersonnelRepositoryImpl struct{}

func NewPersonnelRepository() PersonnelRepository {
	return &PersonnelRepositoryImpl{}
}

func (r *PersonnelRepositoryImpl) Create(db *gorm.DB, personnel *models.Personnel) error {
	err := db.Create(personnel).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrPersonnelAlreadyExists
	}
	return err
}

func (r *PersonnelRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Personnel, error) {
	var personnel models.Personnel
	err := db.Preload("Profile").First(&personnel, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonnelNotFound
		}
		return nil, err
	}
	return &personnel, nil
}

func (r *PersonnelRepositoryImpl) FindByProfileAndRole(db *gorm.DB, profileID string, role models.PersonnelRole) (*models.Personnel, error) {
	var personnel models.Personnel
	err := db.Where("profile_id = ? AND role_type = ?", profileID, role).First(&personnel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonnelNotFound
		}
		return nil, err
	}
	return &personnel, nil
}

func (r *PersonnelRepositoryImpl) List(db *gorm.DB, role models.PersonnelRole, activeOnly bool, limit, offset int) ([]models.Personnel, int64, error) {
	query := db.Model(&models.Personnel{})
	if role != "" {
		query = query.Where("role_type = ?", role)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Profile").Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var personnel []models.Personnel
	err := query.Find(&personnel).Error
	return personnel, total, err
}

// UpdateFields applies a partial update, silently dropping any column not on
// the whitelist.
func (r *PersonnelRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	filtered := make(map[string]interface{}, len(fields))
	for column, value := range fields {
		if personnelUpdatableFields[column] {
			filtered[column] = value
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	result := db.Model(&models.Personnel{}).Where("id = ?", id).Updates(filtered)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPersonnelNotFound
	}
	return nil
}

func (r *PersonnelRepositoryImpl) UpdateLevel(db *gorm.DB, id, level string) error {
	result := db.Model(&models.Personnel{}).Where("id = ?", id).Update("level", level)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPersonnelNotFound
	}
	return nil
}

func (r *PersonnelRepositoryImpl) AppendLevelChange(db *gorm.DB, change *models.LevelChange) error {
	return db.Create(change).Error
}

func (r *PersonnelRepositoryImpl) ListLevelChanges(db *gorm.DB, personnelID string) ([]models.LevelChange, error) {
	var changes []models.LevelChange
	err := db.Where("personnel_id = ?", personnelID).
		Order("created_at DESC").
		Find(&changes).Error
	return changes, err
}

// IncrementEventsHandled bumps the counter in a single SQL statement, so
// concurrent transitions never clobber each other with a stale read.
func (r *PersonnelRepositoryImpl) IncrementEventsHandled(db *gorm.DB, id string) error {
	return db.Model(&models.Personnel{}).Where("id = ?", id).
		UpdateColumn("total_events_handled", gorm.Expr("total_events_handled + 1")).Error
}

// DecrementEventsHandled floors at zero regardless of transition history.
func (r *PersonnelRepositoryImpl) DecrementEventsHandled(db *gorm.DB, id string) error {
	return db.Model(&models.Personnel{}).Where("id = ?", id).
		UpdateColumn("total_events_handled",
			gorm.Expr("CASE WHEN total_events_handled > 0 THEN total_events_handled - 1 ELSE 0 END")).Error
}

// RecomputeRatingAggregates reloads all ratings for the personnel record and
// rewrites average/count from scratch. Linear, but self-correcting: the
// stored aggregate always equals a fresh recompute.
func (r *PersonnelRepositoryImpl) RecomputeRatingAggregates(db *gorm.DB, id string) error {
	var stats struct {
		Average float64
		Total   int64
	}
	err := db.Model(&models.Rating{}).
		Where("entity_id = ?", id).
		Select("COALESCE(AVG(score), 0) as average, COUNT(*) as total").
		Scan(&stats).Error
	if err != nil {
		return err
	}

	return db.Model(&models.Personnel{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"average_rating": stats.Average,
			"total_ratings":  stats.Total,
		}).Error
}

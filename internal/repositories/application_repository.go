package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"meca_backend/internal/models"
)

var (
	ErrApplicationNotFound      = errors.New("application not found")
	ErrApplicationAlreadyExists = errors.New("an active application already exists for this profile and role")
	ErrReferenceNotFound        = errors.New("reference not found")
)

type ApplicationRepository interface {
	Create(db *gorm.DB, application *models.Application) error
	FindByID(db *gorm.DB, id string) (*models.Application, error)
	FindActiveByProfileAndRole(db *gorm.DB, profileID string, role models.PersonnelRole) (*models.Application, error)
	FindLatestByProfileAndRole(db *gorm.DB, profileID string, role models.PersonnelRole) (*models.Application, error)
	List(db *gorm.DB, role models.PersonnelRole, status models.ApplicationStatus, limit, offset int) ([]models.Application, int64, error)
	SetReview(db *gorm.DB, id string, status models.ApplicationStatus, reviewerID, notes string, reviewedAt time.Time) error

	// Reference operations
	FindUncheckedReferenceByEmail(db *gorm.DB, email string, role models.PersonnelRole) (*models.Reference, error)
	MarkReferenceChecked(db *gorm.DB, referenceID, notes string, checkedAt time.Time) error
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

// Create persists the application together with its owned references. The
// partial unique index on (profile_id, role_type) over live statuses is the
// real duplicate guard; the service-level existence check only exists for
// the nicer error message.
func (r *ApplicationRepositoryImpl) Create(db *gorm.DB, application *models.Application) error {
	err := db.Create(application).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrApplicationAlreadyExists
	}
	return err
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	var application models.Application
	err := db.Preload("References", func(db *gorm.DB) *gorm.DB {
		return db.Order(`"references".position ASC`)
	}).First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindActiveByProfileAndRole(db *gorm.DB, profileID string, role models.PersonnelRole) (*models.Application, error) {
	var application models.Application
	err := db.Where("profile_id = ? AND role_type = ? AND status IN ?",
		profileID, role, models.ActiveApplicationStatuses).
		First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindLatestByProfileAndRole(db *gorm.DB, profileID string, role models.PersonnelRole) (*models.Application, error) {
	var application models.Application
	err := db.Preload("References", func(db *gorm.DB) *gorm.DB {
		return db.Order(`"references".position ASC`)
	}).Where("profile_id = ? AND role_type = ?", profileID, role).
		Order("created_at DESC").
		First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) List(db *gorm.DB, role models.PersonnelRole, status models.ApplicationStatus, limit, offset int) ([]models.Application, int64, error) {
	query := db.Model(&models.Application{})
	if role != "" {
		query = query.Where("role_type = ?", role)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var applications []models.Application
	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&applications).Error
	return applications, total, err
}

func (r *ApplicationRepositoryImpl) SetReview(db *gorm.DB, id string, status models.ApplicationStatus, reviewerID, notes string, reviewedAt time.Time) error {
	result := db.Model(&models.Application{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"reviewer_id":  reviewerID,
		"review_notes": notes,
		"reviewed_at":  reviewedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// FindUncheckedReferenceByEmail locates the reference a verification token
// should stamp: same e-mail, not yet checked, belonging to an application of
// the token's role type. Oldest application first, so a reference answering
// twice for two applicants checks them in submission order.
func (r *ApplicationRepositoryImpl) FindUncheckedReferenceByEmail(db *gorm.DB, email string, role models.PersonnelRole) (*models.Reference, error) {
	var reference models.Reference
	err := db.Joins(`JOIN applications ON applications.id = "references".application_id`).
		Where(`"references".email = ? AND "references".checked = ? AND applications.role_type = ?`,
			email, false, role).
		Order(`"references".created_at ASC`).
		First(&reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferenceNotFound
		}
		return nil, err
	}
	return &reference, nil
}

// MarkReferenceChecked stamps the reference exactly once; the checked=false
// guard makes a concurrent double-stamp lose with ErrReferenceNotFound.
func (r *ApplicationRepositoryImpl) MarkReferenceChecked(db *gorm.DB, referenceID, notes string, checkedAt time.Time) error {
	result := db.Model(&models.Reference{}).
		Where("id = ? AND checked = ?", referenceID, false).
		Updates(map[string]interface{}{
			"checked":     true,
			"check_notes": notes,
			"checked_at":  checkedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReferenceNotFound
	}
	return nil
}

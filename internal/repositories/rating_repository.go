package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"meca_backend/internal/models"
)

var (
	ErrRatingNotFound      = errors.New("rating not found")
	ErrRatingAlreadyExists = errors.New("rating already exists for this event, entity and rater")
)

// RatingAnalytics summarizes the rating table for the admin dashboard.
type RatingAnalytics struct {
	TotalRatings  int64         `json:"total_ratings"`
	AverageScore  float64       `json:"average_score"`
	ScoreCounts   map[int]int64 `json:"score_counts"`
	RecentRatings int64         `json:"recent_ratings"` // last 30 days
}

type RatingRepository interface {
	Create(db *gorm.DB, rating *models.Rating) error
	FindByID(db *gorm.DB, id string) (*models.Rating, error)
	Exists(db *gorm.DB, eventID string, entityType models.PersonnelRole, entityID, raterProfileID string) (bool, error)
	ListByRater(db *gorm.DB, raterProfileID string) ([]models.Rating, error)
	ListRatedEntityIDs(db *gorm.DB, eventID, raterProfileID string) (map[string]bool, error)
	ListAll(db *gorm.DB, limit, offset int) ([]models.Rating, int64, error)
	Delete(db *gorm.DB, id string) error
	GetAnalytics(db *gorm.DB) (*RatingAnalytics, error)

	// Eligibility
	HasCompeted(db *gorm.DB, eventID, profileID string) (bool, error)
}

type RatingRepositoryImpl struct{}

func NewRatingRepository() RatingRepository {
	return &RatingRepositoryImpl{}
}

// Create relies on the (event, entity_type, entity, rater) unique index to
// close the check-then-insert window.
func (r *RatingRepositoryImpl) Create(db *gorm.DB, rating *models.Rating) error {
	err := db.Create(rating).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrRatingAlreadyExists
	}
	return err
}

func (r *RatingRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Rating, error) {
	var rating models.Rating
	err := db.First(&rating, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepositoryImpl) Exists(db *gorm.DB, eventID string, entityType models.PersonnelRole, entityID, raterProfileID string) (bool, error) {
	var count int64
	err := db.Model(&models.Rating{}).
		Where("event_id = ? AND entity_type = ? AND entity_id = ? AND rater_profile_id = ?",
			eventID, entityType, entityID, raterProfileID).
		Count(&count).Error
	return count > 0, err
}

func (r *RatingRepositoryImpl) ListByRater(db *gorm.DB, raterProfileID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := db.Preload("Event").
		Where("rater_profile_id = ?", raterProfileID).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

// ListRatedEntityIDs returns the personnel IDs the rater has already rated
// at the event, for annotating the rateable-entities listing.
func (r *RatingRepositoryImpl) ListRatedEntityIDs(db *gorm.DB, eventID, raterProfileID string) (map[string]bool, error) {
	var entityIDs []string
	err := db.Model(&models.Rating{}).
		Where("event_id = ? AND rater_profile_id = ?", eventID, raterProfileID).
		Pluck("entity_id", &entityIDs).Error
	if err != nil {
		return nil, err
	}

	rated := make(map[string]bool, len(entityIDs))
	for _, id := range entityIDs {
		rated[id] = true
	}
	return rated, nil
}

func (r *RatingRepositoryImpl) ListAll(db *gorm.DB, limit, offset int) ([]models.Rating, int64, error) {
	var total int64
	if err := db.Model(&models.Rating{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ratings []models.Rating
	err := db.Preload("Event").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ratings).Error
	return ratings, total, err
}

func (r *RatingRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Rating{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRatingNotFound
	}
	return nil
}

func (r *RatingRepositoryImpl) GetAnalytics(db *gorm.DB) (*RatingAnalytics, error) {
	var analytics RatingAnalytics

	if err := db.Model(&models.Rating{}).
		Select("COUNT(*) as total_ratings, COALESCE(AVG(score), 0) as average_score").
		Scan(&analytics).Error; err != nil {
		return nil, err
	}

	analytics.ScoreCounts = make(map[int]int64)
	for score := 1; score <= 5; score++ {
		var count int64
		if err := db.Model(&models.Rating{}).Where("score = ?", score).Count(&count).Error; err != nil {
			return nil, err
		}
		analytics.ScoreCounts[score] = count
	}

	monthAgo := time.Now().AddDate(0, -1, 0)
	if err := db.Model(&models.Rating{}).Where("created_at >= ?", monthAgo).
		Count(&analytics.RecentRatings).Error; err != nil {
		return nil, err
	}

	return &analytics, nil
}

// HasCompeted is the sole gate that unlocks rating at an event: the profile
// must hold a paid membership whose MECA id matches a competition result
// recorded at that event.
func (r *RatingRepositoryImpl) HasCompeted(db *gorm.DB, eventID, profileID string) (bool, error) {
	var count int64
	err := db.Model(&models.CompetitionResult{}).
		Joins("JOIN memberships ON memberships.meca_id = competition_results.meca_id").
		Where("competition_results.event_id = ? AND memberships.profile_id = ? AND memberships.paid = ?",
			eventID, profileID, true).
		Count(&count).Error
	return count > 0, err
}

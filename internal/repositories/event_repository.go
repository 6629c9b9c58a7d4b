package repositories

import (
	"errors"

	"gorm.io/gorm"

	"meca_backend/internal/models"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrSeasonNotFound = errors.New("season not found")
)

type EventRepository interface {
	Create(db *gorm.DB, event *models.Event) error
	FindByID(db *gorm.DB, id string) (*models.Event, error)
}

type EventRepositoryImpl struct{}

func NewEventRepository() EventRepository {
	return &EventRepositoryImpl{}
}

func (r *EventRepositoryImpl) Create(db *gorm.DB, event *models.Event) error {
	return db.Create(event).Error
}

func (r *EventRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Event, error) {
	var event models.Event
	err := db.First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

type SeasonRepository interface {
	Create(db *gorm.DB, season *models.Season) error
	FindCurrent(db *gorm.DB) (*models.Season, error)
}

type SeasonRepositoryImpl struct{}

func NewSeasonRepository() SeasonRepository {
	return &SeasonRepositoryImpl{}
}

func (r *SeasonRepositoryImpl) Create(db *gorm.DB, season *models.Season) error {
	return db.Create(season).Error
}

// FindCurrent returns the season flagged current, or ErrSeasonNotFound when
// the organization is between seasons.
func (r *SeasonRepositoryImpl) FindCurrent(db *gorm.DB) (*models.Season, error) {
	var season models.Season
	err := db.First(&season, "is_current = ?", true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return &season, nil
}

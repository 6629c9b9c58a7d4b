package services

import (
	"errors"

	"gorm.io/gorm"

	"meca_backend/internal/models"
	"meca_backend/internal/repositories"
)

// CurrentSeasonProvider resolves the organization's current season. Passed
// into the application review engine as an explicit dependency so tests can
// substitute a fixed season; between seasons it returns (nil, nil) and
// approval simply skips the qualification record.
type CurrentSeasonProvider interface {
	Current(db *gorm.DB) (*models.Season, error)
}

type seasonProvider struct {
	seasonRepo repositories.SeasonRepository
}

func NewCurrentSeasonProvider(seasonRepo repositories.SeasonRepository) CurrentSeasonProvider {
	return &seasonProvider{seasonRepo: seasonRepo}
}

func (p *seasonProvider) Current(db *gorm.DB) (*models.Season, error) {
	season, err := p.seasonRepo.FindCurrent(db)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return season, nil
}

// FixedSeasonProvider always returns the same season (possibly nil).
// Test substitute.
type FixedSeasonProvider struct {
	Season *models.Season
}

func (p *FixedSeasonProvider) Current(db *gorm.DB) (*models.Season, error) {
	return p.Season, nil
}

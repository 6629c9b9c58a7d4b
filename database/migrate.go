package database

import (
	"gorm.io/gorm"

	"meca_backend/internal/models"
)

// Migrate runs the schema migration for every model in dependency order.
func Migrate(db *gorm.DB) error {
	if err := autoMigrate(db); err != nil {
		return err
	}

	// At most one live application per (profile, role). Rejected rows stay
	// out of the index so a member can reapply after a rejection, which a
	// plain composite unique index would forbid.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_active_role
		ON applications (profile_id, role_type)
		WHERE status IN ('pending', 'under_review', 'approved')`).Error
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Season{},
		&models.Event{},
		&models.Membership{},
		&models.CompetitionResult{},
		&models.Application{},
		&models.Reference{},
		&models.VerificationToken{},
		&models.Personnel{},
		&models.LevelChange{},
		&models.SeasonQualification{},
		&models.Assignment{},
		&models.Rating{},
	)
}

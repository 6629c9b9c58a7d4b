package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"meca_backend/internal/models"
)

var (
	ErrTokenNotFound = errors.New("verification token not found")
	ErrTokenUsed     = errors.New("verification token already used")
)

type TokenRepository interface {
	Create(db *gorm.DB, token *models.VerificationToken) error
	FindUnused(db *gorm.DB, token string) (*models.VerificationToken, error)
	MarkUsed(db *gorm.DB, id string, usedAt time.Time) error
}

type TokenRepositoryImpl struct{}

func NewTokenRepository() TokenRepository {
	return &TokenRepositoryImpl{}
}

func (r *TokenRepositoryImpl) Create(db *gorm.DB, token *models.VerificationToken) error {
	return db.Create(token).Error
}

// FindUnused returns the token row only while it has not been redeemed.
// Used tokens are indistinguishable from absent ones by design: a second
// submission must fail, not silently succeed.
func (r *TokenRepositoryImpl) FindUnused(db *gorm.DB, token string) (*models.VerificationToken, error) {
	var vt models.VerificationToken
	err := db.Where("token = ? AND used = ?", token, false).First(&vt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &vt, nil
}

// MarkUsed flips the used flag with a used=false guard, so exactly one of
// two concurrent redemptions wins. The loser gets ErrTokenUsed.
func (r *TokenRepositoryImpl) MarkUsed(db *gorm.DB, id string, usedAt time.Time) error {
	result := db.Model(&models.VerificationToken{}).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]interface{}{
			"used":    true,
			"used_at": usedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenUsed
	}
	return nil
}

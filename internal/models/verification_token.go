package models

import "time"

// VerificationToken is a single-use, time-limited token mailed to a
// third-party reference. It is bound to an e-mail address and a purpose, not
// to a reference row; verification re-finds the unchecked reference by
// e-mail at redemption time.
type VerificationToken struct {
	BaseModel
	Token     string       `gorm:"uniqueIndex;not null"`
	Email     string       `gorm:"not null;index"`
	Purpose   TokenPurpose `gorm:"type:varchar(40);not null"`
	ExpiresAt time.Time    `gorm:"not null"`
	Used      bool         `gorm:"default:false"`
	UsedAt    *time.Time
}

// Expired reports whether the token is past its expiry at the given time.
func (t *VerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

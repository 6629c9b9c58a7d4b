package models

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'member'"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'"`

	// Relations
	Profile *Profile `gorm:"foreignKey:UserID"`
}

// Profile is the member profile. Personnel, assignments and ratings all hang
// off the profile, not the account, so an account swap never re-parents
// certification history.
type Profile struct {
	BaseModel
	UserID    string `gorm:"uniqueIndex;not null"`
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	Email     string
	Phone     string
	City      string
	State     string

	// Role-enablement flags raised on approval (or explicit admin request).
	JudgeEnabled         bool `gorm:"default:false"`
	EventDirectorEnabled bool `gorm:"default:false"`
}

// RoleEnabled reports whether the profile holds the enablement flag for the
// given personnel role.
func (p *Profile) RoleEnabled(role PersonnelRole) bool {
	if role == PersonnelRoleEventDirector {
		return p.EventDirectorEnabled
	}
	return p.JudgeEnabled
}

func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Package user holds the principal record and its sqlite-backed store.
package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/studentms/internal/auth"
)

// User is the durable principal record.
//
// Email carries the store's uniqueness constraint; the constraint — not any
// application-level pre-check — is the authority on duplicates. Comparison
// is exact-string and case-sensitive. PasswordHash is only ever compared
// through the password hasher.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName       string    `gorm:"not null" json:"full_name"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone          string    `json:"phone,omitempty"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	Role           auth.Role `gorm:"not null;default:student" json:"role"`
	CourseOfStudy  string    `json:"course_of_study,omitempty"`
	EnrollmentYear int       `json:"enrollment_year,omitempty"`
	Status         string    `gorm:"default:active" json:"status"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName keeps the table name stable regardless of pluralization settings.
func (User) TableName() string { return "users" }

// BeforeCreate generates a UUID if not already set.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Identity returns the auth-facing view of the record.
func (u *User) Identity() auth.Identity {
	return auth.Identity{ID: u.ID.String(), Email: u.Email, Role: u.Role}
}

// Summary is the compact principal representation returned alongside tokens.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
}

// Summary returns the compact view of the record.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role}
}

// Update is the set of profile fields a record update replaces.
type Update struct {
	FullName       string
	Email          string
	Phone          string
	CourseOfStudy  string
	EnrollmentYear int
}

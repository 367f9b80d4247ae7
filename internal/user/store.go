package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/studentms/internal/auth"
	"github.com/kbukum/studentms/internal/database"
	apperrors "github.com/kbukum/studentms/internal/errors"
)

// Store is the gorm-backed credential and record store.
//
// Lookups return (nil, nil) when no record matches so callers can treat
// absence as a normal outcome rather than an error.
type Store struct {
	db *database.DB
}

// NewStore creates a Store on an open database.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new record. A concurrent insert losing the race on the
// unique email index surfaces as ALREADY_EXISTS, regardless of any earlier
// pre-check the caller did.
func (s *Store) Create(ctx context.Context, u *User) error {
	err := s.db.Gorm().WithContext(ctx).Create(u).Error
	if err != nil {
		if database.IsDuplicateKey(err) {
			return apperrors.AlreadyExists("user").WithDetail("field", "email")
		}
		return apperrors.DatabaseError(err)
	}
	return nil
}

// FindByEmail looks a record up by exact email match. No normalization and
// no case folding is applied.
func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.Gorm().WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.DatabaseError(err)
	}
	return &u, nil
}

// FindByID looks a record up by id.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.db.Gorm().WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.DatabaseError(err)
	}
	return &u, nil
}

// Update replaces the profile fields of a record and returns the updated row.
func (s *Store) Update(ctx context.Context, id uuid.UUID, upd Update) (*User, error) {
	err := s.db.Gorm().WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"full_name":       upd.FullName,
			"email":           upd.Email,
			"phone":           upd.Phone,
			"course_of_study": upd.CourseOfStudy,
			"enrollment_year": upd.EnrollmentYear,
		}).Error
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, apperrors.AlreadyExists("user").WithDetail("field", "email")
		}
		return nil, apperrors.DatabaseError(err)
	}
	return s.FindByID(ctx, id)
}

// UpdateRole changes a record's role and returns the updated row.
// Outstanding tokens keep their old role claim until they expire.
func (s *Store) UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) (*User, error) {
	err := s.db.Gorm().WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("role", role).Error
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return s.FindByID(ctx, id)
}

// UpdateStatus changes a record's status and returns the updated row.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*User, error) {
	err := s.db.Gorm().WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return s.FindByID(ctx, id)
}

// ListStudents returns all student records, newest first.
func (s *Store) ListStudents(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.Gorm().WithContext(ctx).
		Where("role = ?", auth.RoleStudent).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return users, nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.Gorm().WithContext(ctx).Delete(&User{}, "id = ?", id).Error
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

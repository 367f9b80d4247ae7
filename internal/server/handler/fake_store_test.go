package handler_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/studentms/internal/auth"
	apperrors "github.com/kbukum/studentms/internal/errors"
	"github.com/kbukum/studentms/internal/user"
)

// fakeStore is an in-memory RecordStore. Like the real store it enforces
// email uniqueness inside Create, so concurrent registrations racing past
// the handler's pre-check still produce exactly one winner.
type fakeStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
	seq   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uuid.UUID]*user.User)}
}

func (s *fakeStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperrors.AlreadyExists("user").WithDetail("field", "email")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.seq++
	u.CreatedAt = time.Unix(int64(s.seq), 0)
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) Update(_ context.Context, id uuid.UUID, upd user.Update) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	for other, ou := range s.users {
		if other != id && ou.Email == upd.Email {
			return nil, apperrors.AlreadyExists("user").WithDetail("field", "email")
		}
	}
	u.FullName = upd.FullName
	u.Email = upd.Email
	u.Phone = upd.Phone
	u.CourseOfStudy = upd.CourseOfStudy
	u.EnrollmentYear = upd.EnrollmentYear
	cp := *u
	return &cp, nil
}

func (s *fakeStore) UpdateRole(_ context.Context, id uuid.UUID, role auth.Role) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u.Status = status
	cp := *u
	return &cp, nil
}

func (s *fakeStore) ListStudents(_ context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []user.User
	for _, u := range s.users {
		if u.Role == auth.RoleStudent {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurawell/aurawell-api/internal/model"
)

// CreateUser registers a new user. Email uniqueness is case-insensitive;
// ErrEmailTaken is returned on a duplicate. Role defaults to customer.
func (s *Store) CreateUser(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmail(user.Email) != nil {
		return ErrEmailTaken
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	if user.Role == "" {
		user.Role = model.RoleCustomer
	}

	next := append(cloneSlice(s.users), *user)
	if err := s.persist(usersFile, next); err != nil {
		return fmt.Errorf("persist users: %w", err)
	}
	s.users = next
	return nil
}

func (s *Store) GetUserByID(id uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *Store) GetUserByEmail(email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.findUserByEmail(email); u != nil {
		out := *u
		return &out, nil
	}
	return nil, ErrUserNotFound
}

// Authenticate returns the user only when the email exists and the password
// matches exactly. The legacy data files store credentials in clear, so this
// is a plain string comparison; mismatch and unknown email are
// indistinguishable to the caller.
func (s *Store) Authenticate(email, password string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.findUserByEmail(email)
	if u == nil || u.Password != password {
		return nil, ErrInvalidCredentials
	}
	out := *u
	return &out, nil
}

// findUserByEmail requires the caller to hold at least the read lock.
func (s *Store) findUserByEmail(email string) *model.User {
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			return &s.users[i]
		}
	}
	return nil
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

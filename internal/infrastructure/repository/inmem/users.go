package inmem

import (
	"context"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) CreateWithProfile(_ context.Context, user *domain.User, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.usersByEmail[user.Email]; ok {
		return domain.ErrUserAlreadyExists
	}
	if _, ok := r.s.users[user.ID]; ok {
		return domain.ErrUserAlreadyExists
	}
	if profile.UserID != user.ID {
		return domain.ErrInvalidInput
	}

	u := *user
	p := *profile
	r.s.users[u.ID] = &u
	r.s.usersByEmail[u.Email] = u.ID
	r.s.profiles[p.UserID] = &p
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usersByEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *r.s.users[id]
	return &u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = r.s.now()
	return nil
}

type ProfileRepository struct {
	s *Store
}

func (r *ProfileRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProfileRepository) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *ProfileRepository) SetAdmin(_ context.Context, userID uuid.UUID, isAdmin bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	p.IsAdmin = isAdmin
	p.UpdatedAt = r.s.now()
	return nil
}

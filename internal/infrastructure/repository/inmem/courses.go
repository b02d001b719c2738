package inmem

import (
	"context"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
)

type CourseRepository struct {
	s *Store
}

func (r *CourseRepository) Create(_ context.Context, c *domain.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.courses[c.ID]; ok {
		return domain.ErrInvalidInput
	}
	if c.CreatedBy != nil {
		if _, ok := r.s.users[*c.CreatedBy]; !ok {
			return domain.ErrUserNotFound
		}
	}
	cp := *c
	r.s.courses[cp.ID] = &cp
	return nil
}

func (r *CourseRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CourseRepository) List(_ context.Context) ([]domain.Course, error) {
	r.s.mu.RLock()
	courses := make([]domain.Course, 0, len(r.s.courses))
	for _, c := range r.s.courses {
		courses = append(courses, *c)
	}
	r.s.mu.RUnlock()

	sortCourses(courses)
	return courses, nil
}

package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
)

var errNoCache = errors.New("cache disabled")

// The memory backend runs without redis; these stand in for the caches.

type nopProfileCache struct{}

func (nopProfileCache) Get(context.Context, uuid.UUID) (*domain.Profile, error) { return nil, errNoCache }
func (nopProfileCache) Set(context.Context, *domain.Profile) error              { return nil }
func (nopProfileCache) Delete(context.Context, uuid.UUID) error                 { return nil }

type nopCourseCache struct{}

func (nopCourseCache) GetCourse(context.Context, uuid.UUID) (*domain.Course, error) {
	return nil, errNoCache
}
func (nopCourseCache) SetCourse(context.Context, *domain.Course) error { return nil }
func (nopCourseCache) GetList(context.Context) ([]domain.Course, error) {
	return nil, errNoCache
}
func (nopCourseCache) SetList(context.Context, []domain.Course) error { return nil }
func (nopCourseCache) InvalidateLists(context.Context) error          { return nil }

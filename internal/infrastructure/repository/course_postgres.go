package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waste3d/codelearn/internal/domain"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	return r.db.WithContext(ctx).Create(toGormCourse(c)).Error
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var course CourseGorm
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}
	return toDomainCourse(&course), nil
}

// List returns every course, difficulty descending (lexicographic), newest first within a difficulty.
func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	var rows []CourseGorm
	err := r.db.WithContext(ctx).
		Order("difficulty DESC").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	courses := make([]domain.Course, 0, len(rows))
	for i := range rows {
		courses = append(courses, *toDomainCourse(&rows[i]))
	}
	return courses, nil
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/waste3d/codelearn/internal/domain"
)

const (
	courseTTL     = time.Hour
	courseListTTL = 10 * time.Minute

	courseListVersionKey = "courses:list:version"
)

// CourseCache stores course details and the full listing. Listings are
// keyed by a version counter so a create invalidates every cached list at once.
type CourseCache struct {
	client *redis.Client
}

func NewCourseCache(client *redis.Client) *CourseCache {
	return &CourseCache{client: client}
}

func courseKey(id uuid.UUID) string {
	return "course:" + id.String()
}

func (c *CourseCache) GetCourse(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	raw, err := c.client.Get(ctx, courseKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var course domain.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CourseCache) SetCourse(ctx context.Context, course *domain.Course) error {
	raw, err := json.Marshal(course)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, courseKey(course.ID), raw, courseTTL).Err()
}

func (c *CourseCache) listKey(ctx context.Context) (string, error) {
	v, err := c.client.Get(ctx, courseListVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("courses:list:v%d", v), nil
}

func (c *CourseCache) GetList(ctx context.Context) ([]domain.Course, error) {
	key, err := c.listKey(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var courses []domain.Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *CourseCache) SetList(ctx context.Context, courses []domain.Course) error {
	key, err := c.listKey(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(courses)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, courseListTTL).Err()
}

func (c *CourseCache) InvalidateLists(ctx context.Context) error {
	return c.client.Incr(ctx, courseListVersionKey).Err()
}

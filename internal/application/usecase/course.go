package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/metrics"
)

type CreateCourseInput struct {
	Title       string
	Description string
	Difficulty  string
	HTMLCode    string
	CSSCode     string
	JSCode      string
	ShowCSS     bool
	ShowJS      bool
}

type CourseUseCase struct {
	courses  CourseRepository
	progress ProgressRepository
	cache    CourseCache
	metrics  *metrics.Metrics
	log      logging.Logger
}

func NewCourseUseCase(courses CourseRepository, progress ProgressRepository, cache CourseCache, m *metrics.Metrics, log logging.Logger) *CourseUseCase {
	if cache == nil {
		cache = nopCourseCache{}
	}
	return &CourseUseCase{
		courses:  courses,
		progress: progress,
		cache:    cache,
		metrics:  m,
		log:      log.With("component", "courses"),
	}
}

// Create is admin-only. Courses are immutable once stored.
func (uc *CourseUseCase) Create(ctx context.Context, sess *domain.Session, in CreateCourseInput) (*domain.Course, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	difficulty := strings.TrimSpace(in.Difficulty)
	if difficulty == "" {
		difficulty = domain.DifficultyBeginner
	}
	if !domain.ValidDifficulty(difficulty) {
		return nil, fmt.Errorf("%w: difficulty must be one of %s", domain.ErrInvalidInput, strings.Join(domain.Difficulties, ", "))
	}

	author := sess.UserID
	course := &domain.Course{
		ID:          uuid.New(),
		Title:       title,
		Description: in.Description,
		Difficulty:  difficulty,
		HTMLCode:    in.HTMLCode,
		CSSCode:     in.CSSCode,
		JSCode:      in.JSCode,
		ShowCSS:     in.ShowCSS,
		ShowJS:      in.ShowJS,
		CreatedBy:   &author,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	if err := uc.cache.InvalidateLists(ctx); err != nil {
		uc.log.Warn(ctx, "course list invalidation failed", "error", err)
	}
	uc.metrics.CoursesCreated.Inc()
	uc.log.Info(ctx, "course created", "course_id", course.ID, "difficulty", difficulty, "created_by", author)
	return course, nil
}

func (uc *CourseUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	if c, err := uc.cache.GetCourse(ctx, id); err == nil {
		return c, nil
	}
	c, err := uc.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetCourse(ctx, c); err != nil {
		uc.log.Warn(ctx, "course cache set failed", "course_id", id, "error", err)
	}
	return c, nil
}

// List returns every course in listing order. For a signed-in learner the
// completed courses are left out unless includeCompleted is set.
func (uc *CourseUseCase) List(ctx context.Context, sess *domain.Session, includeCompleted bool) ([]domain.Course, error) {
	all, err := uc.all(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil || includeCompleted {
		return all, nil
	}

	done, err := uc.progress.CompletedCourseIDs(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("completed courses: %w", err)
	}
	if len(done) == 0 {
		return all, nil
	}
	skip := make(map[uuid.UUID]struct{}, len(done))
	for _, id := range done {
		skip[id] = struct{}{}
	}

	out := make([]domain.Course, 0, len(all))
	for _, c := range all {
		if _, ok := skip[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (uc *CourseUseCase) all(ctx context.Context) ([]domain.Course, error) {
	if list, err := uc.cache.GetList(ctx); err == nil {
		return list, nil
	}
	list, err := uc.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetList(ctx, list); err != nil {
		uc.log.Warn(ctx, "course list cache set failed", "error", err)
	}
	return list, nil
}

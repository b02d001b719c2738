package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/metrics"
)

// CourseView is what the exercise page needs. Code is the learner's last
// snapshot when one exists, otherwise the course's starter code.
type CourseView struct {
	Course    domain.Course
	Tabs      []string
	Code      domain.CodeSnapshot
	Progress  *domain.Progress
	Completed bool
}

type Dashboard struct {
	Completed  []domain.ProgressEntry
	InProgress []domain.ProgressEntry
}

type ProgressUseCase struct {
	courses  *CourseUseCase
	progress ProgressRepository
	metrics  *metrics.Metrics
	log      logging.Logger
}

func NewProgressUseCase(courses *CourseUseCase, progress ProgressRepository, m *metrics.Metrics, log logging.Logger) *ProgressUseCase {
	return &ProgressUseCase{
		courses:  courses,
		progress: progress,
		metrics:  m,
		log:      log.With("component", "progress"),
	}
}

// CourseView loads a course and, for a signed-in learner, their progress.
// A learner with no progress row gets the default state.
func (uc *ProgressUseCase) CourseView(ctx context.Context, courseID uuid.UUID, sess *domain.Session) (*CourseView, error) {
	course, err := uc.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	view := &CourseView{
		Course: *course,
		Tabs:   course.Tabs(),
		Code:   course.Code(),
	}
	if sess == nil {
		return view, nil
	}

	p, err := uc.progress.Get(ctx, sess.UserID, courseID)
	switch {
	case errors.Is(err, domain.ErrProgressNotFound):
		return view, nil
	case err != nil:
		return nil, err
	}
	view.Progress = p
	view.Completed = p.Completed
	if p.SubmittedCode != nil {
		view.Code = *p.SubmittedCode
	}
	return view, nil
}

// Submit marks the course completed with this snapshot. Resubmitting
// overwrites the previous row.
func (uc *ProgressUseCase) Submit(ctx context.Context, userID, courseID uuid.UUID, code domain.CodeSnapshot) (*domain.Progress, error) {
	if _, err := uc.courses.Get(ctx, courseID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Progress{
		UserID:        userID,
		CourseID:      courseID,
		Completed:     true,
		SubmittedCode: &code,
		CompletedAt:   &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.progress.Upsert(ctx, p); err != nil {
		return nil, err
	}
	uc.metrics.Submissions.Inc()
	uc.log.Info(ctx, "exercise submitted", "user_id", userID, "course_id", courseID)
	return p, nil
}

// SaveDraft stores the snapshot and leaves the completion state alone.
func (uc *ProgressUseCase) SaveDraft(ctx context.Context, userID, courseID uuid.UUID, code domain.CodeSnapshot) error {
	if _, err := uc.courses.Get(ctx, courseID); err != nil {
		return err
	}
	return uc.progress.SaveDraft(ctx, userID, courseID, code)
}

func (uc *ProgressUseCase) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	entries, err := uc.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		Completed:  []domain.ProgressEntry{},
		InProgress: []domain.ProgressEntry{},
	}
	for _, e := range entries {
		if e.Completed {
			d.Completed = append(d.Completed, e)
		} else {
			d.InProgress = append(d.InProgress, e)
		}
	}
	return d, nil
}

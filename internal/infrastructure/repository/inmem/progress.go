package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
)

type ProgressRepository struct {
	s *Store
}

// checkRefs mirrors the foreign keys on user_progress. Caller holds the lock.
func (r *ProgressRepository) checkRefs(userID, courseID uuid.UUID) error {
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	if _, ok := r.s.courses[courseID]; !ok {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *ProgressRepository) Upsert(_ context.Context, p *domain.Progress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkRefs(p.UserID, p.CourseID); err != nil {
		return err
	}

	key := progressKey{p.UserID, p.CourseID}
	row := cloneProgress(p)
	if existing, ok := r.s.progress[key]; ok {
		row.CreatedAt = existing.CreatedAt
	}
	r.s.progress[key] = row
	return nil
}

func (r *ProgressRepository) SaveDraft(_ context.Context, userID, courseID uuid.UUID, code domain.CodeSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkRefs(userID, courseID); err != nil {
		return err
	}

	now := r.s.now()
	key := progressKey{userID, courseID}
	if existing, ok := r.s.progress[key]; ok {
		existing.SubmittedCode = &code
		existing.UpdatedAt = now
		return nil
	}
	r.s.progress[key] = &domain.Progress{
		UserID:        userID,
		CourseID:      courseID,
		SubmittedCode: &code,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return nil
}

func (r *ProgressRepository) Get(_ context.Context, userID, courseID uuid.UUID) (*domain.Progress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.progress[progressKey{userID, courseID}]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	return cloneProgress(p), nil
}

func (r *ProgressRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.ProgressEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var entries []domain.ProgressEntry
	for key, p := range r.s.progress {
		if key.userID != userID {
			continue
		}
		course, ok := r.s.courses[key.courseID]
		if !ok {
			continue
		}
		entries = append(entries, domain.ProgressEntry{
			CourseID:    key.courseID,
			CourseTitle: course.Title,
			Completed:   p.Completed,
			CompletedAt: p.CompletedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

func (r *ProgressRepository) CompletedCourseIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []uuid.UUID
	for key, p := range r.s.progress {
		if key.userID == userID && p.Completed {
			ids = append(ids, key.courseID)
		}
	}
	return ids, nil
}

func cloneProgress(p *domain.Progress) *domain.Progress {
	cp := *p
	if p.SubmittedCode != nil {
		code := *p.SubmittedCode
		cp.SubmittedCode = &code
	}
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/waste3d/codelearn/internal/domain"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

var progressKey = []clause.Column{{Name: "user_id"}, {Name: "course_id"}}

// Upsert writes the whole row; an existing (user, course) row is overwritten.
func (r *ProgressRepository) Upsert(ctx context.Context, p *domain.Progress) error {
	m, err := toGormProgress(p)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   progressKey,
			DoUpdates: clause.AssignmentColumns([]string{"completed", "submitted_code", "completed_at", "updated_at"}),
		}).
		Create(m).Error
}

// SaveDraft stores the snapshot without touching the completion flag of an
// existing row. New rows start as not completed.
func (r *ProgressRepository) SaveDraft(ctx context.Context, userID, courseID uuid.UUID, code domain.CodeSnapshot) error {
	raw, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	now := time.Now()
	m := &ProgressGorm{
		UserID:        userID,
		CourseID:      courseID,
		SubmittedCode: datatypes.JSON(raw),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   progressKey,
			DoUpdates: clause.AssignmentColumns([]string{"submitted_code", "updated_at"}),
		}).
		Create(m).Error
}

func (r *ProgressRepository) Get(ctx context.Context, userID, courseID uuid.UUID) (*domain.Progress, error) {
	var m ProgressGorm
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, err
	}
	return toDomainProgress(&m)
}

// ListByUser joins progress rows with course titles, most recently touched first.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressEntry, error) {
	var rows []struct {
		CourseID    uuid.UUID
		CourseTitle string
		Completed   bool
		CompletedAt *time.Time
		UpdatedAt   time.Time
	}
	err := r.db.WithContext(ctx).
		Table("user_progress AS p").
		Select("p.course_id, c.title AS course_title, p.completed, p.completed_at, p.updated_at").
		Joins("JOIN courses c ON c.id = p.course_id").
		Where("p.user_id = ?", userID).
		Order("p.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ProgressEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.ProgressEntry{
			CourseID:    row.CourseID,
			CourseTitle: row.CourseTitle,
			Completed:   row.Completed,
			CompletedAt: row.CompletedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return entries, nil
}

func (r *ProgressRepository) CompletedCourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&ProgressGorm{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Pluck("course_id", &ids).Error
	return ids, err
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrProgressNotFound = errors.New("progress not found")

type CodeSnapshot struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// Progress is keyed by (UserID, CourseID); there is at most one per pair.
type Progress struct {
	UserID        uuid.UUID     `json:"user_id"`
	CourseID      uuid.UUID     `json:"course_id"`
	Completed     bool          `json:"completed"`
	SubmittedCode *CodeSnapshot `json:"submitted_code,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ProgressEntry is a progress row joined with its course title.
type ProgressEntry struct {
	CourseID    uuid.UUID  `json:"course_id"`
	CourseTitle string     `json:"course_title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

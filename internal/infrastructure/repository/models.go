package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/waste3d/codelearn/internal/domain"
)

// Column defaults live in the SQL migrations; the gorm models carry none so
// inserts never need RETURNING.

type UserGorm struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserGorm) TableName() string {
	return "users"
}

func toGormUser(u *domain.User) *UserGorm {
	return &UserGorm{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toDomainUser(u *UserGorm) *domain.User {
	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

type ProfileGorm struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName string    `gorm:"column:firstname"`
	LastName  string    `gorm:"column:lastname"`
	Email     string
	IsAdmin   bool `gorm:"column:is_admin"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProfileGorm) TableName() string {
	return "user_profiles"
}

func toGormProfile(p *domain.Profile) *ProfileGorm {
	return &ProfileGorm{
		UserID:    p.UserID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		IsAdmin:   p.IsAdmin,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toDomainProfile(p *ProfileGorm) *domain.Profile {
	return &domain.Profile{
		UserID:    p.UserID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		IsAdmin:   p.IsAdmin,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type CourseGorm struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Difficulty  string     `gorm:"index;not null"`
	HTMLCode    string     `gorm:"column:html_code"`
	CSSCode     string     `gorm:"column:css_code"`
	JSCode      string     `gorm:"column:js_code"`
	ShowCSS     bool       `gorm:"column:show_css"`
	ShowJS      bool       `gorm:"column:show_js"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}

func (CourseGorm) TableName() string {
	return "courses"
}

func toGormCourse(c *domain.Course) *CourseGorm {
	return &CourseGorm{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Difficulty:  c.Difficulty,
		HTMLCode:    c.HTMLCode,
		CSSCode:     c.CSSCode,
		JSCode:      c.JSCode,
		ShowCSS:     c.ShowCSS,
		ShowJS:      c.ShowJS,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}

func toDomainCourse(c *CourseGorm) *domain.Course {
	return &domain.Course{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Difficulty:  c.Difficulty,
		HTMLCode:    c.HTMLCode,
		CSSCode:     c.CSSCode,
		JSCode:      c.JSCode,
		ShowCSS:     c.ShowCSS,
		ShowJS:      c.ShowJS,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}

type ProgressGorm struct {
	UserID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CourseID      uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Completed     bool           `gorm:"not null"`
	SubmittedCode datatypes.JSON `gorm:"column:submitted_code;type:jsonb"`
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ProgressGorm) TableName() string {
	return "user_progress"
}

func toGormProgress(p *domain.Progress) (*ProgressGorm, error) {
	m := &ProgressGorm{
		UserID:      p.UserID,
		CourseID:    p.CourseID,
		Completed:   p.Completed,
		CompletedAt: p.CompletedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.SubmittedCode != nil {
		raw, err := json.Marshal(p.SubmittedCode)
		if err != nil {
			return nil, err
		}
		m.SubmittedCode = datatypes.JSON(raw)
	}
	return m, nil
}

func toDomainProgress(m *ProgressGorm) (*domain.Progress, error) {
	p := &domain.Progress{
		UserID:      m.UserID,
		CourseID:    m.CourseID,
		Completed:   m.Completed,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if len(m.SubmittedCode) > 0 && string(m.SubmittedCode) != "null" {
		var snap domain.CodeSnapshot
		if err := json.Unmarshal(m.SubmittedCode, &snap); err != nil {
			return nil, err
		}
		p.SubmittedCode = &snap
	}
	return p, nil
}

package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/infrastructure/events"
)

type UserRepository interface {
	CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	SetAdmin(ctx context.Context, userID uuid.UUID, isAdmin bool) error
}

type CourseRepository interface {
	Create(ctx context.Context, c *domain.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
}

type ProgressRepository interface {
	Upsert(ctx context.Context, p *domain.Progress) error
	SaveDraft(ctx context.Context, userID, courseID uuid.UUID, code domain.CodeSnapshot) error
	Get(ctx context.Context, userID, courseID uuid.UUID) (*domain.Progress, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProgressEntry, error)
	CompletedCourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// SessionStore tracks live sessions and the refresh token currently issued
// for each. Lookups of unknown or expired entries return domain.ErrSessionExpired.
//
// RotateRefresh atomically replaces token old with next and returns next.
// For grace after that, presenting old again returns the current token
// without rotating.
type SessionStore interface {
	SaveSession(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (uuid.UUID, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SaveRefresh(ctx context.Context, sessionID, token string, ttl time.Duration) error
	RotateRefresh(ctx context.Context, sessionID, old, next string, ttl, grace time.Duration) (string, error)
	DeleteRefresh(ctx context.Context, sessionID string) error
}

// CourseCache holds immutable course rows. Any error is treated as a miss.
type CourseCache interface {
	GetCourse(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	SetCourse(ctx context.Context, c *domain.Course) error
	GetList(ctx context.Context) ([]domain.Course, error)
	SetList(ctx context.Context, courses []domain.Course) error
	InvalidateLists(ctx context.Context) error
}

type ProfileCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	Set(ctx context.Context, p *domain.Profile) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context) (*events.Subscription, error)
}

type WelcomeSender interface {
	SendWelcome(ctx context.Context, to, name string) error
}

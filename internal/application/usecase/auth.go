package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
	"github.com/waste3d/codelearn/internal/infrastructure/events"
	"github.com/waste3d/codelearn/internal/infrastructure/security"
	"github.com/waste3d/codelearn/internal/logging"
	"github.com/waste3d/codelearn/internal/metrics"
)

const (
	minPasswordLen      = 6
	welcomeTimeout      = 10 * time.Second
	defaultRefreshGrace = 10 * time.Second
)

type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

type AuthUseCase struct {
	users        UserRepository
	profiles     ProfileRepository
	sessions     SessionStore
	profileCache ProfileCache
	hasher       *security.PasswordHasher
	tokenManager *security.TokenManager
	mailer       WelcomeSender
	publisher    EventPublisher
	metrics      *metrics.Metrics
	log          logging.Logger

	adminEmails  map[string]struct{}
	refreshGrace time.Duration

	bg sync.WaitGroup
}

func NewAuthUseCase(
	users UserRepository,
	profiles ProfileRepository,
	sessions SessionStore,
	profileCache ProfileCache,
	hasher *security.PasswordHasher,
	tokenManager *security.TokenManager,
	mailer WelcomeSender,
	publisher EventPublisher,
	m *metrics.Metrics,
	log logging.Logger,
) *AuthUseCase {
	if profileCache == nil {
		profileCache = nopProfileCache{}
	}
	return &AuthUseCase{
		users:        users,
		profiles:     profiles,
		sessions:     sessions,
		profileCache: profileCache,
		hasher:       hasher,
		tokenManager: tokenManager,
		mailer:       mailer,
		publisher:    publisher,
		metrics:      m,
		log:          log.With("component", "auth"),
		refreshGrace: defaultRefreshGrace,
	}
}

// GrantAdminOnRegister makes accounts registered with one of these emails
// course authors.
func (uc *AuthUseCase) GrantAdminOnRegister(emails ...string) {
	uc.adminEmails = make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			uc.adminEmails[e] = struct{}{}
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is not valid", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	return nil
}

// Register creates the account and its profile atomically and signs the new
// user in.
func (uc *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*domain.Profile, security.TokenPair, error) {
	email := normalizeEmail(in.Email)
	if err := validateCredentials(email, in.Password); err != nil {
		return nil, security.TokenPair{}, err
	}
	if in.Password != in.PasswordConfirm {
		return nil, security.TokenPair{}, domain.ErrPasswordMismatch
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, security.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &domain.Profile{
		UserID:    user.ID,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, ok := uc.adminEmails[email]; ok {
		profile.IsAdmin = true
	}

	if err := uc.users.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, security.TokenPair{}, err
	}
	uc.metrics.Registrations.Inc()
	uc.log.Info(ctx, "user registered", "user_id", user.ID, "is_admin", profile.IsAdmin)
	uc.publish(ctx, events.New(events.UserRegistered, user.ID, ""))
	uc.sendWelcome(email, profile.DisplayName())

	pair, err := uc.openSession(ctx, user.ID)
	if err != nil {
		return profile, security.TokenPair{}, err
	}
	return profile, pair, nil
}

// Login answers ErrInvalidCredentials for both an unknown email and a wrong password.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (security.TokenPair, error) {
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.metrics.Logins.WithLabelValues("invalid").Inc()
			return security.TokenPair{}, domain.ErrInvalidCredentials
		}
		return security.TokenPair{}, err
	}
	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		uc.metrics.Logins.WithLabelValues("invalid").Inc()
		return security.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := uc.openSession(ctx, user.ID)
	if err != nil {
		return security.TokenPair{}, err
	}
	uc.metrics.Logins.WithLabelValues("ok").Inc()
	return pair, nil
}

func (uc *AuthUseCase) openSession(ctx context.Context, userID uuid.UUID) (security.TokenPair, error) {
	sid := uuid.NewString()
	pair, err := uc.tokenManager.Generate(userID.String(), sid)
	if err != nil {
		return security.TokenPair{}, fmt.Errorf("generate tokens: %w", err)
	}
	if err := uc.sessions.SaveSession(ctx, sid, userID, pair.RefreshTTL); err != nil {
		return security.TokenPair{}, fmt.Errorf("save session: %w", err)
	}
	if err := uc.sessions.SaveRefresh(ctx, sid, pair.RefreshToken, pair.RefreshTTL); err != nil {
		return security.TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}
	uc.publish(ctx, events.New(events.SignedIn, userID, sid))
	return pair, nil
}

// Refresh rotates the refresh token. The presented token must be the one
// most recently issued for its session, or one replaced less than
// refreshGrace ago, in which case the current refresh token is handed out
// again.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (security.TokenPair, error) {
	claims, err := uc.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return security.TokenPair{}, fmt.Errorf("%w: %v", domain.ErrSessionExpired, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return security.TokenPair{}, domain.ErrUnauthorized
	}

	owner, err := uc.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		return security.TokenPair{}, err
	}
	if owner != userID {
		return security.TokenPair{}, domain.ErrUnauthorized
	}

	pair, err := uc.tokenManager.Generate(userID.String(), claims.SessionID)
	if err != nil {
		return security.TokenPair{}, fmt.Errorf("generate tokens: %w", err)
	}
	current, err := uc.sessions.RotateRefresh(ctx, claims.SessionID, refreshToken, pair.RefreshToken, pair.RefreshTTL, uc.refreshGrace)
	if err != nil {
		return security.TokenPair{}, err
	}
	if current != pair.RefreshToken {
		// a parallel request rotated first
		pair.RefreshToken = current
		return pair, nil
	}
	if err := uc.sessions.SaveSession(ctx, claims.SessionID, userID, pair.RefreshTTL); err != nil {
		return security.TokenPair{}, fmt.Errorf("save session: %w", err)
	}
	return pair, nil
}

// Logout ends the session. A nil session is a no-op.
func (uc *AuthUseCase) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	return uc.endSession(ctx, sess.UserID, sess.SessionID)
}

// LogoutToken ends the session a refresh token belongs to. Tokens that no
// longer parse are ignored.
func (uc *AuthUseCase) LogoutToken(ctx context.Context, refreshToken string) error {
	claims, err := uc.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil
	}
	return uc.endSession(ctx, userID, claims.SessionID)
}

func (uc *AuthUseCase) endSession(ctx context.Context, userID uuid.UUID, sid string) error {
	if _, err := uc.sessions.GetSession(ctx, sid); err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return nil
		}
		return err
	}
	if err := uc.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := uc.sessions.DeleteRefresh(ctx, sid); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	uc.publish(ctx, events.New(events.SignedOut, userID, sid))
	return nil
}

// Authenticate resolves an access token to the per-request session. An
// expired token yields domain.ErrSessionExpired so callers can try a refresh.
func (uc *AuthUseCase) Authenticate(ctx context.Context, accessToken string) (*domain.Session, error) {
	claims, err := uc.tokenManager.ValidateAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, domain.ErrSessionExpired
		}
		return nil, domain.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	owner, err := uc.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, domain.ErrUnauthorized
	}

	profile, err := uc.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Session{UserID: userID, SessionID: claims.SessionID, Profile: *profile}, nil
}

func (uc *AuthUseCase) Profile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	if p, err := uc.profileCache.Get(ctx, userID); err == nil {
		return p, nil
	}
	p, err := uc.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := uc.profileCache.Set(ctx, p); err != nil {
		uc.log.Warn(ctx, "profile cache set failed", "user_id", userID, "error", err)
	}
	return p, nil
}

func (uc *AuthUseCase) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = normalizeEmail(email)
	if err := validateCredentials(email, newPassword); err != nil {
		return err
	}
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := uc.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	uc.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// SetAdmin grants or revokes course authoring and tells running servers to
// drop the cached profile.
func (uc *AuthUseCase) SetAdmin(ctx context.Context, email string, isAdmin bool) (*domain.Profile, error) {
	p, err := uc.profiles.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := uc.profiles.SetAdmin(ctx, p.UserID, isAdmin); err != nil {
		return nil, err
	}
	p.IsAdmin = isAdmin
	if err := uc.profileCache.Delete(ctx, p.UserID); err != nil {
		uc.log.Warn(ctx, "profile cache delete failed", "user_id", p.UserID, "error", err)
	}
	uc.publish(ctx, events.New(events.ProfileChanged, p.UserID, ""))
	uc.log.Info(ctx, "admin flag changed", "user_id", p.UserID, "is_admin", isAdmin)
	return p, nil
}

func (uc *AuthUseCase) publish(ctx context.Context, e events.Event) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, e); err != nil {
		uc.log.Warn(ctx, "publish auth event failed", "kind", e.Kind, "error", err)
	}
}

func (uc *AuthUseCase) sendWelcome(to, name string) {
	if uc.mailer == nil {
		return
	}
	uc.bg.Add(1)
	go func() {
		defer uc.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), welcomeTimeout)
		defer cancel()
		if err := uc.mailer.SendWelcome(ctx, to, name); err != nil {
			uc.log.Error(ctx, "welcome email failed", "to", to, "error", err)
		}
	}()
}

// Wait blocks until background email sends have finished.
func (uc *AuthUseCase) Wait() {
	uc.bg.Wait()
}

package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waste3d/codelearn/internal/domain"
)

func seedUser(t *testing.T, s *Store, email string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := s.Users().CreateWithProfile(context.Background(),
		&domain.User{ID: id, Email: email, PasswordHash: "h"},
		&domain.Profile{UserID: id, Email: email})
	require.NoError(t, err)
	return id
}

func seedCourse(t *testing.T, s *Store, title, difficulty string, at time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, s.Courses().Create(context.Background(), &domain.Course{
		ID: id, Title: title, Difficulty: difficulty, CreatedAt: at,
	}))
	return id
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := New()
	seedUser(t, s, "ada@example.com")

	id := uuid.New()
	err := s.Users().CreateWithProfile(context.Background(),
		&domain.User{ID: id, Email: "ada@example.com"},
		&domain.Profile{UserID: id, Email: "ada@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestUsers_MismatchedProfileLeavesNothing(t *testing.T) {
	s := New()
	err := s.Users().CreateWithProfile(context.Background(),
		&domain.User{ID: uuid.New(), Email: "x@example.com"},
		&domain.Profile{UserID: uuid.New(), Email: "x@example.com"})
	require.Error(t, err)

	_, err = s.Users().GetByEmail(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestProfiles_SetAdmin(t *testing.T) {
	s := New()
	id := seedUser(t, s, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, s.Profiles().SetAdmin(ctx, id, true))
	p, err := s.Profiles().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)

	assert.ErrorIs(t, s.Profiles().SetAdmin(ctx, uuid.New(), true), domain.ErrUserNotFound)
}

func TestCourses_ListOrder(t *testing.T) {
	s := New()
	base := time.Now()
	seedCourse(t, s, "adv", domain.DifficultyAdvanced, base)
	seedCourse(t, s, "beg-old", domain.DifficultyBeginner, base)
	seedCourse(t, s, "beg-new", domain.DifficultyBeginner, base.Add(time.Minute))
	seedCourse(t, s, "int", domain.DifficultyIntermediate, base)

	courses, err := s.Courses().List(context.Background())
	require.NoError(t, err)

	var titles []string
	for _, c := range courses {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{"int", "beg-new", "beg-old", "adv"}, titles)
}

func TestProgress_UpsertKeepsOneRow(t *testing.T) {
	s := New()
	ctx := context.Background()
	userID := seedUser(t, s, "ada@example.com")
	courseID := seedCourse(t, s, "c", domain.DifficultyBeginner, time.Now())

	for _, html := range []string{"<p>1</p>", "<p>2</p>"} {
		require.NoError(t, s.Progress().Upsert(ctx, &domain.Progress{
			UserID: userID, CourseID: courseID, Completed: true,
			SubmittedCode: &domain.CodeSnapshot{HTML: html},
		}))
	}

	entries, err := s.Progress().ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	p, err := s.Progress().Get(ctx, userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, "<p>2</p>", p.SubmittedCode.HTML)
}

func TestProgress_DraftDoesNotDowngrade(t *testing.T) {
	s := New()
	ctx := context.Background()
	userID := seedUser(t, s, "ada@example.com")
	courseID := seedCourse(t, s, "c", domain.DifficultyBeginner, time.Now())

	require.NoError(t, s.Progress().Upsert(ctx, &domain.Progress{UserID: userID, CourseID: courseID, Completed: true}))
	require.NoError(t, s.Progress().SaveDraft(ctx, userID, courseID, domain.CodeSnapshot{JS: "x()"}))

	p, err := s.Progress().Get(ctx, userID, courseID)
	require.NoError(t, err)
	assert.True(t, p.Completed)
	assert.Equal(t, "x()", p.SubmittedCode.JS)

	ids, err := s.Progress().CompletedCourseIDs(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{courseID}, ids)
}

func TestProgress_ForeignKeys(t *testing.T) {
	s := New()
	ctx := context.Background()
	userID := seedUser(t, s, "ada@example.com")

	err := s.Progress().Upsert(ctx, &domain.Progress{UserID: userID, CourseID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)

	_, err = s.Progress().Get(ctx, userID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrProgressNotFound)
}

func TestSessions_Expiry(t *testing.T) {
	s := New()
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, s.Sessions().SaveSession(ctx, "sid", userID, time.Minute))
	require.NoError(t, s.Sessions().SaveRefresh(ctx, "sid", "rt", time.Minute))

	got, err := s.Sessions().GetSession(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	cur, err := s.Sessions().RotateRefresh(ctx, "sid", "rt", "rt-2", time.Minute, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "rt-2", cur)
	cur, err = s.Sessions().RotateRefresh(ctx, "sid", "rt", "rt-3", time.Minute, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "rt-2", cur)
	_, err = s.Sessions().RotateRefresh(ctx, "sid", "other", "rt-3", time.Minute, 10*time.Second)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	now = now.Add(20 * time.Second)
	_, err = s.Sessions().RotateRefresh(ctx, "sid", "rt", "rt-3", time.Minute, 10*time.Second)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	now = now.Add(2 * time.Minute)
	_, err = s.Sessions().GetSession(ctx, "sid")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestRateCounter(t *testing.T) {
	s := New()
	now := time.Now()
	s.now = func() time.Time { return now }
	rc := s.RateCounter()

	n, _, _ := rc.Hit(context.Background(), "k", time.Minute)
	assert.Equal(t, int64(1), n)
	n, ttl, _ := rc.Hit(context.Background(), "k", time.Minute)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, time.Minute, ttl)

	now = now.Add(time.Minute)
	n, _, _ = rc.Hit(context.Background(), "k", time.Minute)
	assert.Equal(t, int64(1), n)
}

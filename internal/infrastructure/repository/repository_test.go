package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/waste3d/codelearn/internal/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

var courseColumns = []string{
	"id", "title", "description", "difficulty", "html_code", "css_code", "js_code",
	"show_css", "show_js", "created_by", "created_at",
}

func TestCourseRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCourseRepository(db)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "courses" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(courseColumns).
			AddRow(id.String(), "Flexbox", "Lay it out", "Beginner", "<div></div>", "div{}", "", true, false, nil, now))

	c, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "Flexbox", c.Title)
	assert.True(t, c.ShowCSS)
	assert.False(t, c.ShowJS)
	assert.Nil(t, c.CreatedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "courses" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(courseColumns))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestCourseRepository_List_Order(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCourseRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "courses" ORDER BY difficulty DESC,created_at DESC`).
		WillReturnRows(sqlmock.NewRows(courseColumns).
			AddRow(uuid.NewString(), "B", "", "Intermediate", "", "", "", false, false, nil, now).
			AddRow(uuid.NewString(), "A", "", "Beginner", "", "", "", false, false, nil, now))

	courses, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "B", courses[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCourseRepository(db)

	mock.ExpectExec(`INSERT INTO "courses"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Course{
		ID:         uuid.New(),
		Title:      "Grid",
		Difficulty: domain.DifficultyAdvanced,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithProfile_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	user, profile := newUserFixture()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "user_profiles"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateWithProfile(context.Background(), user, profile))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithProfile_RollbackOnProfileFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	user, profile := newUserFixture()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "user_profiles"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.CreateWithProfile(context.Background(), user, profile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create profile")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateWithProfile_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	user, profile := newUserFixture()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.CreateWithProfile(context.Background(), user, profile)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at", "updated_at"}))

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UpdatePassword_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), uuid.New(), "hash")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestProfileRepository_SetAdmin(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec(`UPDATE "user_profiles" SET .*"is_admin"`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetAdmin(context.Background(), uuid.New(), true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProgressRepository(db)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO "user_progress" .+ ON CONFLICT \("user_id","course_id"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &domain.Progress{
		UserID:        uuid.New(),
		CourseID:      uuid.New(),
		Completed:     true,
		SubmittedCode: &domain.CodeSnapshot{HTML: "<p>hi</p>"},
		CompletedAt:   &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_SaveDraft_KeepsCompletion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProgressRepository(db)

	mock.ExpectExec(`ON CONFLICT \("user_id","course_id"\) DO UPDATE SET "submitted_code"="excluded"."submitted_code","updated_at"="excluded"."updated_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveDraft(context.Background(), uuid.New(), uuid.New(), domain.CodeSnapshot{CSS: "p{}"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProgressRepository(db)
	userID, courseID := uuid.New(), uuid.New()
	now := time.Now()
	cols := []string{"user_id", "course_id", "completed", "submitted_code", "completed_at", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT \* FROM "user_progress" WHERE user_id = \$1 AND course_id = \$2`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(userID.String(), courseID.String(), true, []byte(`{"html":"<b>x</b>","css":"","js":""}`), now, now, now))

	p, err := repo.Get(context.Background(), userID, courseID)
	require.NoError(t, err)
	assert.True(t, p.Completed)
	require.NotNil(t, p.SubmittedCode)
	assert.Equal(t, "<b>x</b>", p.SubmittedCode.HTML)
}

func TestProgressRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProgressRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "user_progress"`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "course_id"}))

	_, err := repo.Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrProgressNotFound)
}

func TestProgressRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProgressRepository(db)
	courseID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT p.course_id, c.title AS course_title.+FROM user_progress AS p JOIN courses c ON c.id = p.course_id WHERE p.user_id = \$1 ORDER BY p.updated_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "course_title", "completed", "completed_at", "updated_at"}).
			AddRow(courseID.String(), "Flexbox", true, now, now))

	entries, err := repo.ListByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, courseID, entries[0].CourseID)
	assert.Equal(t, "Flexbox", entries[0].CourseTitle)
	assert.True(t, entries[0].Completed)
}

func TestProgressRepository_CompletedCourseIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProgressRepository(db)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT "course_id" FROM "user_progress" WHERE user_id = \$1 AND completed = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}).AddRow(a.String()).AddRow(b.String()))

	ids, err := repo.CompletedCourseIDs(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)
}

func newUserFixture() (*domain.User, *domain.Profile) {
	now := time.Now()
	id := uuid.New()
	return &domain.User{ID: id, Email: "ada@example.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now},
		&domain.Profile{UserID: id, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", CreatedAt: now, UpdatedAt: now}
}

// Package inmem is a process-local backend with the same behaviour as the
// postgres repositories and the redis session store. It backs STORAGE=memory
// and the use case and handler tests.
package inmem

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/waste3d/codelearn/internal/domain"
)

type progressKey struct {
	userID   uuid.UUID
	courseID uuid.UUID
}

type expiring struct {
	value     string
	expiresAt time.Time
}

// Store holds every table behind one lock so multi-table writes are atomic.
type Store struct {
	mu sync.RWMutex

	users        map[uuid.UUID]*domain.User
	usersByEmail map[string]uuid.UUID
	profiles     map[uuid.UUID]*domain.Profile
	courses      map[uuid.UUID]*domain.Course
	progress     map[progressKey]*domain.Progress

	sessions map[string]expiring
	refresh  map[string]expiring
	rotated  map[string]expiring
	counters map[string]*counter

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:        make(map[uuid.UUID]*domain.User),
		usersByEmail: make(map[string]uuid.UUID),
		profiles:     make(map[uuid.UUID]*domain.Profile),
		courses:      make(map[uuid.UUID]*domain.Course),
		progress:     make(map[progressKey]*domain.Progress),
		sessions:     make(map[string]expiring),
		refresh:      make(map[string]expiring),
		rotated:      make(map[string]expiring),
		counters:     make(map[string]*counter),
		now:          time.Now,
	}
}

func (s *Store) Users() *UserRepository        { return &UserRepository{s: s} }
func (s *Store) Profiles() *ProfileRepository  { return &ProfileRepository{s: s} }
func (s *Store) Courses() *CourseRepository    { return &CourseRepository{s: s} }
func (s *Store) Progress() *ProgressRepository { return &ProgressRepository{s: s} }
func (s *Store) Sessions() *SessionStore       { return &SessionStore{s: s} }
func (s *Store) RateCounter() *RateCounter     { return &RateCounter{s: s} }

// sortCourses applies the listing order: difficulty descending as text,
// then newest first.
func sortCourses(courses []domain.Course) {
	sort.SliceStable(courses, func(i, j int) bool {
		if courses[i].Difficulty != courses[j].Difficulty {
			return courses[i].Difficulty > courses[j].Difficulty
		}
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
}

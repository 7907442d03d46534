package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"what-to-watch/internal/domain"
)

// NewMemory returns stores backed by process memory. Records are copied on the
// way in and out so callers never share state with the store.
func NewMemory(logger zerolog.Logger) *Stores {
	logger = logger.With().Str("store", "memory").Logger()
	return &Stores{
		Users:     NewMemoryUserStore(logger),
		Films:     NewMemoryFilmStore(logger),
		Comments:  NewMemoryCommentStore(logger),
		Favorites: NewMemoryFavoriteStore(logger),
	}
}

type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]string
	logger  zerolog.Logger
}

func NewMemoryUserStore(logger zerolog.Logger) *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
		logger:  logger,
	}
}

func (m *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := m.byEmail[email]; exists {
		return ErrUserAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt

	userCopy := *user
	m.users[user.ID] = &userCopy
	m.byEmail[email] = user.ID
	m.logger.Debug().Str("userID", user.ID).Msg("User created")
	return nil
}

func (m *MemoryUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (m *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *m.users[id]
	return &userCopy, nil
}

type MemoryFilmStore struct {
	mu     sync.RWMutex
	films  map[string]*domain.Film
	logger zerolog.Logger
}

func NewMemoryFilmStore(logger zerolog.Logger) *MemoryFilmStore {
	return &MemoryFilmStore{
		films:  make(map[string]*domain.Film),
		logger: logger,
	}
}

func copyFilm(f *domain.Film) *domain.Film {
	c := *f
	if f.Actors != nil {
		c.Actors = append(pq.StringArray(nil), f.Actors...)
	}
	return &c
}

func (m *MemoryFilmStore) Create(ctx context.Context, film *domain.Film) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if film.CreatedAt.IsZero() {
		film.CreatedAt = time.Now().UTC()
	}
	film.UpdatedAt = film.CreatedAt
	m.films[film.ID] = copyFilm(film)
	m.logger.Debug().Str("filmID", film.ID).Msg("Film created")
	return nil
}

func (m *MemoryFilmStore) GetByID(ctx context.Context, id string) (*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	film, ok := m.films[id]
	if !ok {
		return nil, ErrFilmNotFound
	}
	return copyFilm(film), nil
}

func (m *MemoryFilmStore) List(ctx context.Context, params FilmListParams) ([]*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var wanted map[string]struct{}
	if params.IDs != nil {
		wanted = make(map[string]struct{}, len(params.IDs))
		for _, id := range params.IDs {
			wanted[id] = struct{}{}
		}
	}

	films := make([]*domain.Film, 0, len(m.films))
	for _, film := range m.films {
		if params.Genre != "" && film.Genre != params.Genre {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[film.ID]; !ok {
				continue
			}
		}
		films = append(films, copyFilm(film))
	}

	sort.Slice(films, func(i, j int) bool {
		if films[i].CreatedAt.Equal(films[j].CreatedAt) {
			return films[i].ID > films[j].ID
		}
		return films[i].CreatedAt.After(films[j].CreatedAt)
	})
	if params.Limit > 0 && len(films) > params.Limit {
		films = films[:params.Limit]
	}
	return films, nil
}

func (m *MemoryFilmStore) Update(ctx context.Context, film *domain.Film) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.films[film.ID]
	if !ok {
		return ErrFilmNotFound
	}
	film.CreatedAt = current.CreatedAt
	film.UpdatedAt = time.Now().UTC()
	m.films[film.ID] = copyFilm(film)
	m.logger.Debug().Str("filmID", film.ID).Msg("Film updated")
	return nil
}

func (m *MemoryFilmStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.films[id]; !ok {
		return ErrFilmNotFound
	}
	delete(m.films, id)
	m.logger.Debug().Str("filmID", id).Msg("Film deleted")
	return nil
}

func (m *MemoryFilmStore) IncCommentCount(ctx context.Context, id string, rating int) (*domain.Film, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	film, ok := m.films[id]
	if !ok {
		return nil, ErrFilmNotFound
	}
	film.Rating = nextRating(film.Rating, film.CommentCount, rating)
	film.CommentCount++
	film.UpdatedAt = time.Now().UTC()
	return copyFilm(film), nil
}

type MemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[string][]*domain.Comment // by film ID, append order
	logger   zerolog.Logger
}

func NewMemoryCommentStore(logger zerolog.Logger) *MemoryCommentStore {
	return &MemoryCommentStore{
		comments: make(map[string][]*domain.Comment),
		logger:   logger,
	}
}

func (m *MemoryCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	commentCopy := *comment
	m.comments[comment.FilmID] = append(m.comments[comment.FilmID], &commentCopy)
	m.logger.Debug().Str("commentID", comment.ID).Str("filmID", comment.FilmID).Msg("Comment created")
	return nil
}

func (m *MemoryCommentStore) ListByFilmID(ctx context.Context, filmID string, limit int) ([]*domain.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.comments[filmID]
	out := make([]*domain.Comment, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		c := *stored[i]
		out = append(out, &c)
	}
	return out, nil
}

func (m *MemoryCommentStore) DeleteByFilmID(ctx context.Context, filmID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.comments[filmID]))
	delete(m.comments, filmID)
	return n, nil
}

type favoriteKey struct {
	userID string
	filmID string
}

type MemoryFavoriteStore struct {
	mu        sync.RWMutex
	favorites map[favoriteKey]time.Time
	logger    zerolog.Logger
}

func NewMemoryFavoriteStore(logger zerolog.Logger) *MemoryFavoriteStore {
	return &MemoryFavoriteStore{
		favorites: make(map[favoriteKey]time.Time),
		logger:    logger,
	}
}

func (m *MemoryFavoriteStore) Add(ctx context.Context, fav *domain.Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := favoriteKey{fav.UserID, fav.FilmID}
	if _, exists := m.favorites[key]; exists {
		return ErrFavoriteAlreadyExists
	}
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}
	m.favorites[key] = fav.CreatedAt
	return nil
}

func (m *MemoryFavoriteStore) Remove(ctx context.Context, userID, filmID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := favoriteKey{userID, filmID}
	if _, exists := m.favorites[key]; !exists {
		return ErrFavoriteNotFound
	}
	delete(m.favorites, key)
	return nil
}

func (m *MemoryFavoriteStore) Exists(ctx context.Context, userID, filmID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.favorites[favoriteKey{userID, filmID}]
	return ok, nil
}

// FilmIDsByUser returns the user's favorite film IDs, most recently added first.
func (m *MemoryFavoriteStore) FilmIDsByUser(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type entry struct {
		filmID string
		at     time.Time
	}
	var entries []entry
	for key, at := range m.favorites {
		if key.userID == userID {
			entries = append(entries, entry{key.filmID, at})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.After(entries[j].at) })

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.filmID
	}
	return ids, nil
}

func (m *MemoryFavoriteStore) DeleteByFilmID(ctx context.Context, filmID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key := range m.favorites {
		if key.filmID == filmID {
			delete(m.favorites, key)
			n++
		}
	}
	return n, nil
}

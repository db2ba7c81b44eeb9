package services

import (
	"context"
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/logger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type favoritesStore interface {
	Add(ctx context.Context, userID uint, jobID uint) (bool, error)
	Remove(ctx context.Context, userID uint, jobID uint) (bool, error)
	Exists(ctx context.Context, userID uint, jobID uint) (bool, error)
	ListJobIDs(ctx context.Context, userID uint, limit int) ([]uint, error)
}

type jobGetter interface {
	GetByID(ctx context.Context, id uint) (*models.JobRecord, error)
}

// Favorites manages bookmarks and pages through them with the same cyclic
// policy as search results.
type Favorites struct {
	users     userFinder
	favorites favoritesStore
	jobs      jobGetter
	sessions  sessionStore
	limit     int
}

func NewFavorites(users userFinder, favorites favoritesStore, jobs jobGetter, sessions sessionStore, limit int) *Favorites {
	return &Favorites{
		users:     users,
		favorites: favorites,
		jobs:      jobs,
		sessions:  sessions,
		limit:     lo.Ternary(limit > 0, limit, 50),
	}
}

func (f *Favorites) Add(ctx context.Context, telegramID int64, jobID uint) error {

	user, err := f.user(ctx, telegramID)
	if err != nil {
		return err
	}

	job, err := f.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrJobNotFound
	}

	added, err := f.favorites.Add(ctx, user.ID, jobID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to add favorite: %v", err)
		return err
	}
	if !added {
		return ErrAlreadyFavorite
	}

	_, _ = f.sessions.Update(telegramID, func(session *models.Session) error {
		session.Favorites = models.Cursor{}
		return nil
	})
	return nil
}

func (f *Favorites) Remove(ctx context.Context, telegramID int64, jobID uint) error {

	user, err := f.user(ctx, telegramID)
	if err != nil {
		return err
	}

	removed, err := f.favorites.Remove(ctx, user.ID, jobID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to remove favorite: %v", err)
		return err
	}
	if !removed {
		return ErrNotFavorite
	}

	_, _ = f.sessions.Update(telegramID, func(session *models.Session) error {
		ids := lo.Without(session.Favorites.IDs, jobID)
		page := min(session.Favorites.Page, len(ids))
		session.Favorites = models.Cursor{IDs: ids, Page: lo.Ternary(page == 0 && len(ids) > 0, 1, page)}
		return nil
	})
	return nil
}

// Toggle adds the job if it is not bookmarked yet and removes it otherwise.
// It reports whether the job is a favorite afterwards.
func (f *Favorites) Toggle(ctx context.Context, telegramID int64, jobID uint) (bool, error) {
	err := f.Add(ctx, telegramID, jobID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrAlreadyFavorite) {
		return false, err
	}
	return false, f.Remove(ctx, telegramID, jobID)
}

// List loads the newest bookmarks and returns the first one.
func (f *Favorites) List(ctx context.Context, telegramID int64) (Page, error) {

	ids, err := f.load(ctx, telegramID)
	if err != nil {
		return Page{}, err
	}

	_, _ = f.sessions.Update(telegramID, func(session *models.Session) error {
		session.Favorites = models.Cursor{IDs: ids, Page: lo.Ternary(len(ids) > 0, 1, 0)}
		return nil
	})

	if len(ids) == 0 {
		return Page{}, ErrNoResults
	}
	return f.page(ctx, telegramID, ids, 1)
}

func (f *Favorites) Page(ctx context.Context, telegramID int64, n int) (Page, error) {

	ids := f.sessions.Get(telegramID).Favorites.IDs
	if len(ids) == 0 {
		loaded, err := f.load(ctx, telegramID)
		if err != nil {
			return Page{}, err
		}
		ids = loaded
	}

	number, err := resolvePage(n, len(ids))
	if err != nil {
		return Page{}, err
	}
	return f.page(ctx, telegramID, ids, number)
}

func (f *Favorites) page(ctx context.Context, telegramID int64, ids []uint, number int) (Page, error) {

	job, err := f.jobs.GetByID(ctx, ids[number-1])
	if err != nil {
		return Page{}, err
	}
	if job == nil {
		return Page{}, ErrJobNotFound
	}

	_, _ = f.sessions.Update(telegramID, func(session *models.Session) error {
		session.Favorites = models.Cursor{IDs: ids, Page: number}
		return nil
	})
	return Page{Job: *job, Number: number, Total: len(ids), IsFavorite: true}, nil
}

func (f *Favorites) load(ctx context.Context, telegramID int64) ([]uint, error) {
	user, err := f.user(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return f.favorites.ListJobIDs(ctx, user.ID, f.limit)
}

func (f *Favorites) user(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := f.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xpch/platform/shared/countries"
	"github.com/xpch/platform/shared/models"
	sharedredis "github.com/xpch/platform/shared/redis"
)

// Cache keys. Detail keys append ".<id>".
const (
	KeyUsers = "xpch.users"
	KeyUser  = "xpch.user"
)

// UserReadRepository serves user views from Redis, falling back to Postgres
// on a miss and warming the cache with what it read.
type UserReadRepository struct {
	users     *UserRepository
	countries *countries.Repository
	cache     *sharedredis.ViewCache[models.UserView]
	listCache *sharedredis.ViewCache[[]models.UserView]
	keys      *sharedredis.Keyspace
}

func NewUserReadRepository(users *UserRepository, countryRepo *countries.Repository, redisClient goredis.Cmdable, env string, ttl time.Duration) *UserReadRepository {
	return &UserReadRepository{
		users:     users,
		countries: countryRepo,
		cache:     sharedredis.NewViewCache[models.UserView](redisClient, env, ttl),
		listCache: sharedredis.NewViewCache[[]models.UserView](redisClient, env, ttl),
		keys:      sharedredis.NewKeyspace(redisClient, env),
	}
}

func (r *UserReadRepository) GetByID(ctx context.Context, id string) (*models.UserView, error) {
	return r.cache.GetOrLoad(ctx, sharedredis.DetailKey(KeyUser, id), func(ctx context.Context) (*models.UserView, error) {
		user, err := r.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return r.project(ctx, user)
	})
}

func (r *UserReadRepository) List(ctx context.Context) ([]models.UserView, error) {
	views, err := r.listCache.GetOrLoad(ctx, KeyUsers, func(ctx context.Context) (*[]models.UserView, error) {
		users, err := r.users.List(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]models.UserView, 0, len(users))
		for i := range users {
			view, err := r.project(ctx, &users[i])
			if err != nil {
				return nil, err
			}
			views = append(views, *view)
		}
		return &views, nil
	})
	if err != nil {
		return nil, err
	}
	return *views, nil
}

func (r *UserReadRepository) project(ctx context.Context, user *models.User) (*models.UserView, error) {
	if user.CountryID == "" {
		return models.NewUserView(user, nil), nil
	}
	country, err := r.countries.GetByID(ctx, user.CountryID)
	if err != nil && !errors.Is(err, countries.ErrNotFound) {
		return nil, err
	}
	return models.NewUserView(user, country), nil
}

// InvalidateUser drops the list key and the user's detail key.
func (r *UserReadRepository) InvalidateUser(ctx context.Context, userID string) {
	r.keys.Delete(ctx, KeyUsers, sharedredis.DetailKey(KeyUser, userID))
}

// InvalidateUsers drops the list key only.
func (r *UserReadRepository) InvalidateUsers(ctx context.Context) {
	r.keys.Delete(ctx, KeyUsers)
}

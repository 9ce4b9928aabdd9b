package repository

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xpch/platform/shared/models"
	sharedredis "github.com/xpch/platform/shared/redis"
)

const KeyUsers = "chk.users"

type ShopperSource interface {
	List(ctx context.Context) ([]models.Shopper, error)
	GetByID(ctx context.Context, id string) (*models.Shopper, error)
}

// ReadRepository caches the shopper list. Single shoppers are read from the
// store.
type ReadRepository struct {
	shoppers ShopperSource
	list     *sharedredis.ViewCache[[]models.Shopper]
	keys     *sharedredis.Keyspace
}

func NewReadRepository(shoppers ShopperSource, redisClient goredis.Cmdable, env string, ttl time.Duration) *ReadRepository {
	return &ReadRepository{
		shoppers: shoppers,
		list:     sharedredis.NewViewCache[[]models.Shopper](redisClient, env, ttl),
		keys:     sharedredis.NewKeyspace(redisClient, env),
	}
}

func (r *ReadRepository) ListShoppers(ctx context.Context) ([]models.Shopper, error) {
	list, err := r.list.GetOrLoad(ctx, KeyUsers, func(ctx context.Context) (*[]models.Shopper, error) {
		list, err := r.shoppers.List(ctx)
		return &list, err
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

func (r *ReadRepository) GetShopper(ctx context.Context, id string) (*models.Shopper, error) {
	return r.shoppers.GetByID(ctx, id)
}

func (r *ReadRepository) InvalidateShoppers(ctx context.Context) {
	r.keys.Delete(ctx, KeyUsers)
}

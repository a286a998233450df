package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const productCacheTTL = 30 * time.Minute

// Cache is a thin Redis wrapper used as a read-through cache for product
// documents. A miss is reported as redis.Nil by Get; callers fall back to
// Mongo.
type Cache struct {
	client *redis.Client
}

func NewCache(cfg *config.RedisConfig) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func productKey(id primitive.ObjectID) string {
	return fmt.Sprintf("product:%s", id.Hex())
}

func (c *Cache) CacheProduct(ctx context.Context, p *models.Product) error {
	return c.SetJSON(ctx, productKey(p.ID), p, productCacheTTL)
}

func (c *Cache) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := c.GetJSON(ctx, productKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// InvalidateProducts drops cached copies after any catalog write, including
// the settlement inventory adjustment.
func (c *Cache) InvalidateProducts(ctx context.Context, ids ...primitive.ObjectID) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	return c.Del(ctx, keys...)
}

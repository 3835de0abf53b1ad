package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

const (
	productsKey = "catalog:products"
	postsKey    = "catalog:posts"
)

// RedisRepository keeps products and posts as JSON values in Redis hashes keyed by id.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository constructs a Redis-backed repository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// SeedIfEmpty loads the default data into any hash that does not exist yet.
func (r *RedisRepository) SeedIfEmpty(ctx context.Context) error {
	products := make(map[string]any)
	for _, p := range DefaultProducts() {
		raw, err := json.Marshal(p)
		if err != nil {
			return err
		}
		products[strconv.Itoa(p.ID)] = raw
	}
	posts := make(map[string]any)
	for _, p := range DefaultPosts() {
		raw, err := json.Marshal(p)
		if err != nil {
			return err
		}
		posts[strconv.Itoa(p.ID)] = raw
	}
	for key, values := range map[string]map[string]any{productsKey: products, postsKey: posts} {
		n, err := r.client.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: catalog seed: %v", shared.ErrStorage, err)
		}
		if n > 0 {
			continue
		}
		if err := r.client.HSet(ctx, key, values).Err(); err != nil {
			return fmt.Errorf("%w: catalog seed: %v", shared.ErrStorage, err)
		}
	}
	return nil
}

// ListProducts returns all products ordered by id.
func (r *RedisRepository) ListProducts(ctx context.Context) ([]Product, error) {
	values, err := r.client.HGetAll(ctx, productsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %v", shared.ErrStorage, err)
	}
	products := make([]Product, 0, len(values))
	for _, raw := range values {
		var p Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("%w: decode product: %v", shared.ErrStorage, err)
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// DeletePost removes a post and returns its last state.
func (r *RedisRepository) DeletePost(ctx context.Context, id int) (Post, error) {
	var deleted Post
	field := strconv.Itoa(id)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		post, err := getPost(ctx, tx, field)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, postsKey, field)
			return nil
		})
		if err != nil {
			return err
		}
		deleted = post
		return nil
	}, postsKey)
	if err != nil {
		return Post{}, wrapPostErr(id, err)
	}
	return deleted, nil
}

// UpdatePost overwrites the editable fields of a post.
func (r *RedisRepository) UpdatePost(ctx context.Context, id int, in PostUpdate) (Post, error) {
	var updated Post
	field := strconv.Itoa(id)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		post, err := getPost(ctx, tx, field)
		if err != nil {
			return err
		}
		post.Title, post.Content, post.Author = in.Title, in.Content, in.Author
		raw, err := json.Marshal(post)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, postsKey, field, raw)
			return nil
		})
		if err != nil {
			return err
		}
		updated = post
		return nil
	}, postsKey)
	if err != nil {
		return Post{}, wrapPostErr(id, err)
	}
	return updated, nil
}

func getPost(ctx context.Context, tx *redis.Tx, field string) (Post, error) {
	raw, err := tx.HGet(ctx, postsKey, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Post{}, shared.ErrNotFound
		}
		return Post{}, err
	}
	var post Post
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

func wrapPostErr(id int, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: post %d", shared.ErrNotFound, id)
	}
	return fmt.Errorf("%w: post %d: %v", shared.ErrStorage, id, err)
}

var _ Repository = (*RedisRepository)(nil)

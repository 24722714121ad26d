package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
)

const (
	projectListKey         = "energy:projects"
	DefaultProjectCacheTTL = 15 * time.Minute
)

// ProjectCache caches the GBS project list in Redis
type ProjectCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProjectCache creates a new ProjectCache. A non-positive ttl uses DefaultProjectCacheTTL.
func NewProjectCache(client *redis.Client, ttl time.Duration) *ProjectCache {
	if ttl <= 0 {
		ttl = DefaultProjectCacheTTL
	}
	return &ProjectCache{client: client, ttl: ttl}
}

// Get returns the cached list; ok is false on a miss
func (c *ProjectCache) Get(ctx context.Context) ([]domain.Project, bool, error) {
	data, err := c.client.Get(ctx, projectListKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get project list: %w", err)
	}

	var projects []domain.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal project list: %w", err)
	}
	return projects, true, nil
}

func (c *ProjectCache) Set(ctx context.Context, projects []domain.Project) error {
	if projects == nil {
		projects = []domain.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to marshal project list: %w", err)
	}
	if err := c.client.Set(ctx, projectListKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set project list: %w", err)
	}
	return nil
}

func (c *ProjectCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, projectListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate project list: %w", err)
	}
	return nil
}

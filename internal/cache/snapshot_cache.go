package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"studybuilder/internal/model"

	"github.com/redis/go-redis/v9"
)

// SnapshotCache handles Redis operations for template structures (lines and modules)
type SnapshotCache interface {
	Get(ctx context.Context, templateID string) (*model.TemplateStructure, error)
	Set(ctx context.Context, structure *model.TemplateStructure) error
	Invalidate(ctx context.Context, templateID string) error
}

type snapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a new template structure cache
func NewSnapshotCache(client *redis.Client, ttl time.Duration) SnapshotCache {
	return &snapshotCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *snapshotCache) key(templateID string) string {
	return fmt.Sprintf("template:%s:snapshot", templateID)
}

// Get returns nil, nil on a miss
func (c *snapshotCache) Get(ctx context.Context, templateID string) (*model.TemplateStructure, error) {
	data, err := c.client.Get(ctx, c.key(templateID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var structure model.TemplateStructure
	if err := json.Unmarshal(data, &structure); err != nil {
		return nil, err
	}
	return &structure, nil
}

func (c *snapshotCache) Set(ctx context.Context, structure *model.TemplateStructure) error {
	data, err := json.Marshal(structure)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(structure.Template.ID), data, c.ttl).Err()
}

func (c *snapshotCache) Invalidate(ctx context.Context, templateID string) error {
	return c.client.Del(ctx, c.key(templateID)).Err()
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ApplyLock guards a study while a template is being materialized into it
type ApplyLock interface {
	// Acquire returns a release token, or "" when another apply holds the lock
	Acquire(ctx context.Context, studyID string) (string, error)
	Release(ctx context.Context, studyID, token string) error
}

// Delete only if the key still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type applyLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewApplyLock creates a new study apply lock
func NewApplyLock(client *redis.Client, ttl time.Duration) ApplyLock {
	return &applyLock{
		client: client,
		ttl:    ttl,
	}
}

func (l *applyLock) key(studyID string) string {
	return fmt.Sprintf("study:%s:apply", studyID)
}

func (l *applyLock) Acquire(ctx context.Context, studyID string) (string, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, l.key(studyID), token, l.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (l *applyLock) Release(ctx context.Context, studyID, token string) error {
	return releaseScript.Run(ctx, l.client, []string{l.key(studyID)}, token).Err()
}

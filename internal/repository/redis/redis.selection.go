// FilePath: internal/repository/redis/redis.selection.go
package redis

import (
	"context"
	"fmt"

	"github.com/ayumine/cradlelog/internal/config"
	"github.com/ayumine/cradlelog/internal/errors"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// SelectionRepo mirrors each user's active-subject choice to Redis so the
// selection survives process restarts and is visible to every viewer.
type SelectionRepo struct {
	client *redis.Client
}

func NewSelectionRepository(cfg config.RedisConfig) (*SelectionRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.NewTransientError("failed to connect to redis", err)
	}

	nuts.L.Infof("[SelectionRepo] Connected to %s:%d (db %d)", cfg.Host, cfg.Port, cfg.DB)
	return &SelectionRepo{client: client}, nil
}

func selectionKey(userID string) string {
	return "cradlelog:selection:" + userID
}

func (r *SelectionRepo) Get(ctx context.Context, userID string) (string, error) {
	subjectID, err := r.client.Get(ctx, selectionKey(userID)).Result()
	if err == redis.Nil {
		return "", errors.NewNotFoundError("no active subject selected", err)
	}
	if err != nil {
		return "", errors.NewTransientError("failed to read selection", err)
	}
	return subjectID, nil
}

func (r *SelectionRepo) Set(ctx context.Context, userID, subjectID string) error {
	if err := r.client.Set(ctx, selectionKey(userID), subjectID, 0).Err(); err != nil {
		return errors.NewTransientError("failed to store selection", err)
	}
	return nil
}

func (r *SelectionRepo) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, selectionKey(userID)).Err(); err != nil {
		return errors.NewTransientError("failed to clear selection", err)
	}
	return nil
}

func (r *SelectionRepo) Close() error {
	return r.client.Close()
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/storage"
	redisapp "storyadmin/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

// workspaceTTL matches the session cookie lifetime: an abandoned workspace
// disappears together with the session that owned it.
const workspaceTTL = 24 * time.Hour

type RedisWorkspaceRepo struct {
	Client *redisapp.Client
}

func NewWorkspaceRepository(client *redisapp.Client) *RedisWorkspaceRepo {
	return &RedisWorkspaceRepo{Client: client}
}

func (r *RedisWorkspaceRepo) GetWorkspace(ctx context.Context, adminID string) (models.Workspace, error) {
	const op = "repository.workspace_repository.GetWorkspace"

	val, err := r.Client.Get(ctx, workspaceKey(adminID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.Workspace{}, fmt.Errorf("%s: %w", op, storage.ErrWorkspaceNotFound)
	}
	if err != nil {
		return models.Workspace{}, fmt.Errorf("%s: %w", op, err)
	}

	var ws models.Workspace
	if err := json.Unmarshal([]byte(val), &ws); err != nil {
		return models.Workspace{}, fmt.Errorf("%s: %w", op, err)
	}

	return ws, nil
}

func (r *RedisWorkspaceRepo) SaveWorkspace(ctx context.Context, ws models.Workspace) error {
	const op = "repository.workspace_repository.SaveWorkspace"

	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.Client.Set(ctx, workspaceKey(ws.AdminID), data, workspaceTTL).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisWorkspaceRepo) DeleteWorkspace(ctx context.Context, adminID string) error {
	const op = "repository.workspace_repository.DeleteWorkspace"

	if err := r.Client.Del(ctx, workspaceKey(adminID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func workspaceKey(adminID string) string {
	return "workspace:" + adminID
}

package repository

import (
	"context"
	"time"

	"storyadmin/internal/domain/models"
)

type DraftRepository interface {
	SaveDraft(ctx context.Context, draft models.Draft) error
	ListDrafts(ctx context.Context) ([]models.Draft, error)
	GetDraft(ctx context.Context, id int64) (models.Draft, error)
	DeleteDraft(ctx context.Context, id int64) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type WorkspaceRepository interface {
	GetWorkspace(ctx context.Context, adminID string) (models.Workspace, error)
	SaveWorkspace(ctx context.Context, ws models.Workspace) error
	DeleteWorkspace(ctx context.Context, adminID string) error
}

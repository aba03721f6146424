package repository

import (
	redisapp "storyadmin/internal/storage/redis"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	Drafts    DraftRepository
	Workspace WorkspaceRepository
}

func NewRepository(db *pgxpool.Pool, redis *redisapp.Client, draftCap int) *Repository {
	return &Repository{
		Drafts:    NewDraftRepository(db, draftCap),
		Workspace: NewWorkspaceRepository(redis),
	}
}

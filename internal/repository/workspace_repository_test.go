package repository_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/repository"
	"storyadmin/internal/storage"
	redisapp "storyadmin/internal/storage/redis"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkspaceRepo(t *testing.T) (*repository.RedisWorkspaceRepo, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	repo := repository.NewWorkspaceRepository(&redisapp.Client{Client: db})

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
	})

	return repo, mock
}

func testWorkspace() models.Workspace {
	return models.Workspace{
		AdminID: "admin-1",
		Form:    models.AuthoringForm{Prompt: "a fox story"},
		Sections: []models.GeneratedSection{
			{SectionNumber: 1, Heading: models.LangMap{models.LangEnglish: "One"}},
		},
		GateState: models.GateIdle,
	}
}

func TestWorkspaceRepo_SaveAndGet(t *testing.T) {
	repo, mock := newWorkspaceRepo(t)

	ws := testWorkspace()
	data, err := json.Marshal(ws)
	require.NoError(t, err)

	mock.ExpectSet("workspace:admin-1", data, 24*time.Hour).SetVal("OK")
	require.NoError(t, repo.SaveWorkspace(testCtx, ws))

	mock.ExpectGet("workspace:admin-1").SetVal(string(data))
	got, err := repo.GetWorkspace(testCtx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, ws, got)
}

func TestWorkspaceRepo_GetMissing(t *testing.T) {
	repo, mock := newWorkspaceRepo(t)

	mock.ExpectGet("workspace:ghost").RedisNil()

	_, err := repo.GetWorkspace(testCtx, "ghost")
	assert.True(t, errors.Is(err, storage.ErrWorkspaceNotFound))
}

func TestWorkspaceRepo_Delete(t *testing.T) {
	repo, mock := newWorkspaceRepo(t)

	mock.ExpectDel("workspace:admin-1").SetVal(1)

	require.NoError(t, repo.DeleteWorkspace(testCtx, "admin-1"))
}

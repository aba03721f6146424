package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/gateway/aiwebhook"
	"storyadmin/internal/gateway/storyapi"
	"storyadmin/internal/lib/loading"
	"storyadmin/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDraftRepo struct {
	mock.Mock
}

func (m *MockDraftRepo) SaveDraft(ctx context.Context, draft models.Draft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockDraftRepo) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Draft), args.Error(1)
}

func (m *MockDraftRepo) GetDraft(ctx context.Context, id int64) (models.Draft, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Draft), args.Error(1)
}

func (m *MockDraftRepo) DeleteDraft(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDraftRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) Generate(ctx context.Context, req aiwebhook.GenerateRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockPartSaver struct {
	mock.Mock
}

func (m *MockPartSaver) SavePart(ctx context.Context, token string, sub storyapi.PartSubmission) (models.Story, error) {
	args := m.Called(ctx, token, sub)
	return args.Get(0).(models.Story), args.Error(1)
}

// fakeWorkspaceRepo keeps workspaces in memory so gate transitions are
// observable across calls.
type fakeWorkspaceRepo struct {
	store map[string]models.Workspace
}

func newFakeWorkspaceRepo() *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{store: map[string]models.Workspace{}}
}

func (f *fakeWorkspaceRepo) GetWorkspace(_ context.Context, adminID string) (models.Workspace, error) {
	ws, ok := f.store[adminID]
	if !ok {
		return models.Workspace{}, storage.ErrWorkspaceNotFound
	}
	return ws, nil
}

func (f *fakeWorkspaceRepo) SaveWorkspace(_ context.Context, ws models.Workspace) error {
	f.store[ws.AdminID] = ws
	return nil
}

func (f *fakeWorkspaceRepo) DeleteWorkspace(_ context.Context, adminID string) error {
	delete(f.store, adminID)
	return nil
}

func newAuthorService(drafts *MockDraftRepo, ws *fakeWorkspaceRepo, ai *MockAIClient, parts *MockPartSaver) *AuthorService {
	return NewAuthorService(slog.Default(), drafts, ws, ai, parts, loading.NewRegistry(), 14*24*time.Hour)
}

func generatedSections(n int) []models.GeneratedSection {
	out := make([]models.GeneratedSection, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.GeneratedSection{
			SectionNumber: i,
			Heading:       models.LangMap{models.LangEnglish: "Heading"},
		})
	}
	return out
}

const validResponse = `[{"output":[{"sectionNumber":1,"heading":{"en":"Fresh"},"sectionText":{"en":"New text"}}]}]`

func TestGenerate_EmptyWorkspaceGoesStraightThrough(t *testing.T) {
	ctx := context.Background()
	drafts := new(MockDraftRepo)
	wsRepo := newFakeWorkspaceRepo()
	ai := new(MockAIClient)
	ai.On("Generate", ctx, mock.AnythingOfType("aiwebhook.GenerateRequest")).
		Return([]byte(validResponse), nil).Once()

	svc := newAuthorService(drafts, wsRepo, ai, new(MockPartSaver))

	form := models.AuthoringForm{Prompt: "a fox story"}
	result, err := svc.Generate(ctx, "admin-1", form, ResolutionNone)
	require.NoError(t, err)

	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, SourceGenerated, result.Source)
	require.Len(t, result.Sections, 1)
	assert.Equal(t, "Fresh", result.Sections[0].Heading.Get(models.LangEnglish))

	ws := wsRepo.store["admin-1"]
	assert.Equal(t, models.GateIdle, ws.GateState)
	assert.Equal(t, form, ws.Form)
	assert.Len(t, ws.Sections, 1)

	drafts.AssertNotCalled(t, "SaveDraft")
}

func TestGenerate_UnsavedSectionsGateTheRequest(t *testing.T) {
	ctx := context.Background()
	ai := new(MockAIClient)
	wsRepo := newFakeWorkspaceRepo()
	oldForm := models.AuthoringForm{Prompt: "old prompt", Title: models.LangMap{models.LangEnglish: "Old Title"}}
	wsRepo.store["admin-1"] = models.Workspace{
		AdminID:  "admin-1",
		Form:     oldForm,
		Sections: generatedSections(2),
	}

	svc := newAuthorService(new(MockDraftRepo), wsRepo, ai, new(MockPartSaver))

	result, err := svc.Generate(ctx, "admin-1", models.AuthoringForm{Prompt: "new prompt"}, ResolutionNone)
	require.NoError(t, err)

	assert.Equal(t, StatusNeedsConfirmation, result.Status)
	assert.Empty(t, result.Sections)

	ws := wsRepo.store["admin-1"]
	assert.Equal(t, models.GatePendingConfirmation, ws.GateState)
	require.NotNil(t, ws.Pending)
	// the snapshot freezes what was on screen, not the new request
	assert.Equal(t, oldForm, ws.Pending.Form)
	assert.Len(t, ws.Pending.Sections, 2)

	ai.AssertNotCalled(t, "Generate")
}

func TestGenerate_SaveDraftConsumesSnapshotThenProceeds(t *testing.T) {
	ctx := context.Background()

	snapshotForm := models.AuthoringForm{Prompt: "snapshot prompt"}
	wsRepo := newFakeWorkspaceRepo()
	wsRepo.store["admin-1"] = models.Workspace{
		AdminID:   "admin-1",
		Form:      models.AuthoringForm{Prompt: "live prompt"},
		Sections:  generatedSections(1),
		GateState: models.GatePendingConfirmation,
		Pending: &models.PendingSnapshot{
			Form:     snapshotForm,
			Sections: generatedSections(3),
		},
	}

	drafts := new(MockDraftRepo)
	drafts.On("SaveDraft", ctx, mock.MatchedBy(func(d models.Draft) bool {
		return d.Form.Prompt == snapshotForm.Prompt && len(d.Sections) == 3
	})).Return(nil).Once()

	ai := new(MockAIClient)
	ai.On("Generate", ctx, mock.AnythingOfType("aiwebhook.GenerateRequest")).
		Return([]byte(validResponse), nil).Once()

	svc := newAuthorService(drafts, wsRepo, ai, new(MockPartSaver))

	result, err := svc.Generate(ctx, "admin-1", models.AuthoringForm{Prompt: "new"}, ResolutionSaveDraft)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)

	ws := wsRepo.store["admin-1"]
	assert.Equal(t, models.GateIdle, ws.GateState)
	assert.Nil(t, ws.Pending)

	drafts.AssertExpectations(t)
	ai.AssertExpectations(t)
}

func TestGenerate_DraftFailureDoesNotBlockGeneration(t *testing.T) {
	ctx := context.Background()

	wsRepo := newFakeWorkspaceRepo()
	wsRepo.store["admin-1"] = models.Workspace{
		AdminID:  "admin-1",
		Sections: generatedSections(1),
	}

	drafts := new(MockDraftRepo)
	drafts.On("SaveDraft", ctx, mock.AnythingOfType("models.Draft")).
		Return(assert.AnError).Once()

	ai := new(MockAIClient)
	ai.On("Generate", ctx, mock.AnythingOfType("aiwebhook.GenerateRequest")).
		Return([]byte(validResponse), nil).Once()

	svc := newAuthorService(drafts, wsRepo, ai, new(MockPartSaver))

	result, err := svc.Generate(ctx, "admin-1", models.AuthoringForm{}, ResolutionSaveDraft)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
}

func TestGenerate_DiscardSkipsDraftAndProceeds(t *testing.T) {
	ctx := context.Background()

	wsRepo := newFakeWorkspaceRepo()
	wsRepo.store["admin-1"] = models.Workspace{
		AdminID:  "admin-1",
		Sections: generatedSections(2),
	}

	drafts := new(MockDraftRepo)
	ai := new(MockAIClient)
	ai.On("Generate", ctx, mock.AnythingOfType("aiwebhook.GenerateRequest")).
		Return([]byte(validResponse), nil).Once()

	svc := newAuthorService(drafts, wsRepo, ai, new(MockPartSaver))

	result, err := svc.Generate(ctx, "admin-1", models.AuthoringForm{}, ResolutionDiscard)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)

	drafts.AssertNotCalled(t, "SaveDraft")
}

func TestGenerate_TransportFailureFallsBackToSample(t *testing.T) {
	ctx := context.Background()

	ai := new(MockAIClient)
	ai.On("Generate", ctx, mock.AnythingOfType("aiwebhook.GenerateRequest")).
		Return(nil, assert.AnError).Once()

	wsRepo := newFakeWorkspaceRepo()
	svc := newAuthorService(new(MockDraftRepo), wsRepo, ai, new(MockPartSaver))

	result, err := svc.Generate(ctx, "admin-1", models.AuthoringForm{}, ResolutionNone)
	require.NoError(t, err)

	assert.Equal(t, SourceSample, result.Source)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, SampleSections(), result.Sections)

	assert.Equal(t, SourceSample, wsRepo.store["admin-1"].Source)
}

func TestGenerate_UnrecognizedResponseFallsBackToSample(t *testing.T) {
	ctx := context.Background()

	ai := new(MockAIClient)
	ai.On("Generate", ctx, mock.AnythingOfType("aiwebhook.GenerateRequest")).
		Return([]byte(`{"result":"ok"}`), nil).Once()

	svc := newAuthorService(new(MockDraftRepo), newFakeWorkspaceRepo(), ai, new(MockPartSaver))

	result, err := svc.Generate(ctx, "admin-1", models.AuthoringForm{}, ResolutionNone)
	require.NoError(t, err)

	assert.Equal(t, SourceSample, result.Source)
	assert.NotEmpty(t, result.Warning)
}

func TestDeleteSection_Renumbers(t *testing.T) {
	ctx := context.Background()

	wsRepo := newFakeWorkspaceRepo()
	wsRepo.store["admin-1"] = models.Workspace{
		AdminID:  "admin-1",
		Sections: generatedSections(3),
	}

	svc := newAuthorService(new(MockDraftRepo), wsRepo, new(MockAIClient), new(MockPartSaver))

	ws, err := svc.DeleteSection(ctx, "admin-1", 2)
	require.NoError(t, err)

	require.Len(t, ws.Sections, 2)
	assert.Equal(t, 1, ws.Sections[0].SectionNumber)
	assert.Equal(t, 2, ws.Sections[1].SectionNumber)
}

func TestPromote_NoSectionsFails(t *testing.T) {
	svc := newAuthorService(new(MockDraftRepo), newFakeWorkspaceRepo(), new(MockAIClient), new(MockPartSaver))

	_, err := svc.Promote(context.Background(), "token", "admin-1", storyapi.PartSubmission{StoryID: "s1"})
	assert.ErrorIs(t, err, ErrNoWorkspaceSections)
}

func TestPromote_SubmitsSectionsAndClearsWorkspace(t *testing.T) {
	ctx := context.Background()

	wsRepo := newFakeWorkspaceRepo()
	wsRepo.store["admin-1"] = models.Workspace{
		AdminID:  "admin-1",
		Sections: generatedSections(2),
	}

	parts := new(MockPartSaver)
	parts.On("SavePart", ctx, "token", mock.MatchedBy(func(sub storyapi.PartSubmission) bool {
		return sub.StoryID == "s1" && len(sub.Sections) == 2
	})).Return(models.Story{ID: "s1"}, nil).Once()

	svc := newAuthorService(new(MockDraftRepo), wsRepo, new(MockAIClient), parts)

	story, err := svc.Promote(ctx, "token", "admin-1", storyapi.PartSubmission{StoryID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", story.ID)

	_, ok := wsRepo.store["admin-1"]
	assert.False(t, ok, "workspace should be cleared after promote")

	parts.AssertExpectations(t)
}

func TestListDrafts_PurgesExpiredFirst(t *testing.T) {
	ctx := context.Background()

	drafts := new(MockDraftRepo)
	drafts.On("PurgeOlderThan", ctx, mock.AnythingOfType("time.Time")).
		Return(int64(2), nil).Once()
	drafts.On("ListDrafts", ctx).
		Return([]models.Draft{{ID: 1}, {ID: 2}}, nil).Once()

	svc := newAuthorService(drafts, newFakeWorkspaceRepo(), new(MockAIClient), new(MockPartSaver))

	got, err := svc.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	drafts.AssertExpectations(t)
}

func TestListDrafts_PurgeFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()

	drafts := new(MockDraftRepo)
	drafts.On("PurgeOlderThan", ctx, mock.AnythingOfType("time.Time")).
		Return(int64(0), assert.AnError).Once()
	drafts.On("ListDrafts", ctx).
		Return([]models.Draft{}, nil).Once()

	svc := newAuthorService(drafts, newFakeWorkspaceRepo(), new(MockAIClient), new(MockPartSaver))

	_, err := svc.ListDrafts(ctx)
	require.NoError(t, err)
}

func TestRestoreDraft_LoadsWorkspace(t *testing.T) {
	ctx := context.Background()

	form := models.AuthoringForm{Prompt: "restored"}
	drafts := new(MockDraftRepo)
	drafts.On("GetDraft", ctx, int64(42)).
		Return(models.Draft{ID: 42, Form: form, Sections: generatedSections(2)}, nil).Once()

	wsRepo := newFakeWorkspaceRepo()
	svc := newAuthorService(drafts, wsRepo, new(MockAIClient), new(MockPartSaver))

	ws, err := svc.RestoreDraft(ctx, "admin-1", 42)
	require.NoError(t, err)

	assert.Equal(t, form, ws.Form)
	assert.Len(t, ws.Sections, 2)
	assert.Equal(t, models.GateIdle, ws.GateState)
	assert.Equal(t, ws, wsRepo.store["admin-1"])
}

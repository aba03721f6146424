package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/gateway/aiwebhook"
	"storyadmin/internal/gateway/storyapi"
	"storyadmin/internal/lib/loading"
	"storyadmin/internal/lib/logger/sl"
	"storyadmin/internal/repository"
	"storyadmin/internal/storage"
)

var ErrNoWorkspaceSections = errors.New("workspace holds no sections")

type AIClient interface {
	Generate(ctx context.Context, req aiwebhook.GenerateRequest) ([]byte, error)
}

type PartSaver interface {
	SavePart(ctx context.Context, token string, sub storyapi.PartSubmission) (models.Story, error)
}

// GateResolution is the caller's answer to a pending draft confirmation.
type GateResolution string

const (
	ResolutionNone      GateResolution = ""
	ResolutionSaveDraft GateResolution = "save_draft"
	ResolutionDiscard   GateResolution = "discard"
)

const (
	StatusOK                = "ok"
	StatusNeedsConfirmation = "needs_confirmation"
	SourceGenerated         = "generated"
	SourceSample            = "sample"
)

// GenerateResult is the discriminated outcome of a generation request:
// either sections (generated or the explicit sample fallback) or a pending
// confirmation the caller has to resolve first.
type GenerateResult struct {
	Status   string
	Source   string
	Sections []models.GeneratedSection
	Warning  string
}

// AuthorService owns the AI-assisted authoring flow: the per-admin
// workspace, the draft-confirmation gate, the draft store and promotion of
// generated sections into a part.
type AuthorService struct {
	log       *slog.Logger
	drafts    repository.DraftRepository
	workspace repository.WorkspaceRepository
	ai        AIClient
	stories   PartSaver
	loading   *loading.Registry
	retention time.Duration
}

func NewAuthorService(
	log *slog.Logger,
	drafts repository.DraftRepository,
	workspace repository.WorkspaceRepository,
	ai AIClient,
	stories PartSaver,
	reg *loading.Registry,
	retention time.Duration,
) *AuthorService {
	if retention <= 0 {
		retention = 14 * 24 * time.Hour
	}

	return &AuthorService{
		log:       log,
		drafts:    drafts,
		workspace: workspace,
		ai:        ai,
		stories:   stories,
		loading:   reg,
		retention: retention,
	}
}

// Workspace returns the admin's working state; a missing workspace comes
// back empty and idle.
func (s *AuthorService) Workspace(ctx context.Context, adminID string) (models.Workspace, error) {
	const op = "author_service.Workspace"

	ws, err := s.workspace.GetWorkspace(ctx, adminID)
	if errors.Is(err, storage.ErrWorkspaceNotFound) {
		return models.Workspace{AdminID: adminID, GateState: models.GateIdle}, nil
	}
	if err != nil {
		return models.Workspace{}, fmt.Errorf("%s: %w", op, err)
	}

	return ws, nil
}

// Generate runs a generation request through the draft-confirmation gate.
// With unsaved sections in the workspace and no resolution, the current
// content is captured as the pending snapshot and the caller is asked to
// confirm; the snapshot, not the live workspace, is what a later save_draft
// consumes.
func (s *AuthorService) Generate(ctx context.Context, adminID string, form models.AuthoringForm, resolution GateResolution) (GenerateResult, error) {
	const op = "author_service.Generate"

	log := s.log.With(slog.String("op", op), slog.String("admin_id", adminID))

	ws, err := s.Workspace(ctx, adminID)
	if err != nil {
		return GenerateResult{}, err
	}

	if len(ws.Sections) > 0 {
		switch resolution {
		case ResolutionNone:
			ws.GateState = models.GatePendingConfirmation
			ws.Pending = &models.PendingSnapshot{
				Form:     ws.Form,
				Sections: ws.Sections,
			}
			if err := s.workspace.SaveWorkspace(ctx, ws); err != nil {
				return GenerateResult{}, fmt.Errorf("%s: %w", op, err)
			}

			log.Info("generation gated on unsaved sections", slog.Int("sections", len(ws.Sections)))

			return GenerateResult{Status: StatusNeedsConfirmation}, nil

		case ResolutionSaveDraft:
			ws.GateState = models.GateSavingDraft
			s.saveDraftFromSnapshot(ctx, log, ws)

		case ResolutionDiscard:
			ws.GateState = models.GateDiscarding
			log.Info("discarding unsaved sections", slog.Int("sections", len(ws.Sections)))

		default:
			return GenerateResult{}, fmt.Errorf("%s: unknown resolution %q", op, resolution)
		}
	}

	return s.generate(ctx, log, ws, form)
}

// saveDraftFromSnapshot persists the captured snapshot as a draft. Draft
// storage failures never block generation; they are logged and swallowed.
func (s *AuthorService) saveDraftFromSnapshot(ctx context.Context, log *slog.Logger, ws models.Workspace) {
	snapshot := ws.Pending
	if snapshot == nil {
		snapshot = &models.PendingSnapshot{Form: ws.Form, Sections: ws.Sections}
	}

	if len(snapshot.Sections) == 0 {
		return
	}

	draft := models.NewDraft(snapshot.Form, snapshot.Sections, time.Now())
	if err := s.drafts.SaveDraft(ctx, draft); err != nil {
		log.Warn("failed to save draft, continuing", sl.Err(err))
		return
	}

	log.Info("draft saved", slog.Int64("draft_id", draft.ID))
}

func (s *AuthorService) generate(ctx context.Context, log *slog.Logger, ws models.Workspace, form models.AuthoringForm) (GenerateResult, error) {
	const op = "author_service.generate"

	done := s.loading.Begin("generate", "Generating sections...")
	defer done()

	result := GenerateResult{Status: StatusOK, Source: SourceGenerated}

	raw, err := s.ai.Generate(ctx, aiwebhook.GenerateRequest{
		Prompt:     form.Prompt,
		SourceText: form.SourceText,
	})
	if err == nil {
		result.Sections, err = aiwebhook.Normalize(raw)
	}

	if err != nil {
		// demo fallback: surfaced as an explicit sample variant, never as a
		// silently successful generation
		log.Warn("generation failed, falling back to sample sections", sl.Err(err))
		result.Source = SourceSample
		result.Warning = err.Error()
		result.Sections = SampleSections()
	}

	ws.Form = form
	ws.Sections = result.Sections
	ws.Source = result.Source
	ws.GateState = models.GateIdle
	ws.Pending = nil
	ws.UpdatedAt = time.Now()

	if err := s.workspace.SaveWorkspace(ctx, ws); err != nil {
		return GenerateResult{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("sections generated",
		slog.Int("sections", len(result.Sections)),
		slog.String("source", result.Source),
	)

	return result, nil
}

// DeleteSection removes a section by its 1-based number and renumbers the
// remainder contiguously.
func (s *AuthorService) DeleteSection(ctx context.Context, adminID string, number int) (models.Workspace, error) {
	const op = "author_service.DeleteSection"

	ws, err := s.Workspace(ctx, adminID)
	if err != nil {
		return models.Workspace{}, err
	}

	ws.Sections = models.DeleteSection(ws.Sections, number)
	ws.UpdatedAt = time.Now()

	if err := s.workspace.SaveWorkspace(ctx, ws); err != nil {
		return models.Workspace{}, fmt.Errorf("%s: %w", op, err)
	}

	return ws, nil
}

// Promote submits the workspace sections as a part through the regular
// part-submission path and clears the workspace on success.
func (s *AuthorService) Promote(ctx context.Context, token, adminID string, sub storyapi.PartSubmission) (models.Story, error) {
	const op = "author_service.Promote"

	log := s.log.With(slog.String("op", op), slog.String("admin_id", adminID))

	ws, err := s.Workspace(ctx, adminID)
	if err != nil {
		return models.Story{}, err
	}

	if len(ws.Sections) == 0 {
		return models.Story{}, fmt.Errorf("%s: %w", op, ErrNoWorkspaceSections)
	}

	for _, gen := range ws.Sections {
		section := gen.ToSection()
		sub.Sections = append(sub.Sections, storyapi.SectionSubmission{
			Heading:  section.Heading,
			Quote:    section.Quote,
			Text:     section.Text,
			ImageURL: section.ImageURL,
		})
	}

	story, err := s.stories.SavePart(ctx, token, sub)
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.workspace.DeleteWorkspace(ctx, adminID); err != nil {
		log.Warn("failed to clear workspace after promote", sl.Err(err))
	}

	log.Info("workspace promoted to part", slog.String("story_id", sub.StoryID))

	return story, nil
}

// ListDrafts purges expired drafts first, then returns the survivors newest
// first. Purge failures are logged and swallowed.
func (s *AuthorService) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	const op = "author_service.ListDrafts"

	log := s.log.With(slog.String("op", op))

	s.CleanupDrafts(ctx)

	drafts, err := s.drafts.ListDrafts(ctx)
	if err != nil {
		log.Error("failed to list drafts", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return drafts, nil
}

// CleanupDrafts removes drafts past the retention window.
func (s *AuthorService) CleanupDrafts(ctx context.Context) {
	const op = "author_service.CleanupDrafts"

	purged, err := s.drafts.PurgeOlderThan(ctx, time.Now().Add(-s.retention))
	if err != nil {
		s.log.Warn("draft cleanup failed", slog.String("op", op), sl.Err(err))
		return
	}

	if purged > 0 {
		s.log.Info("purged expired drafts", slog.String("op", op), slog.Int64("purged", purged))
	}
}

func (s *AuthorService) GetDraft(ctx context.Context, id int64) (models.Draft, error) {
	const op = "author_service.GetDraft"

	draft, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", op, err)
	}

	return draft, nil
}

func (s *AuthorService) DeleteDraft(ctx context.Context, id int64) error {
	const op = "author_service.DeleteDraft"

	if err := s.drafts.DeleteDraft(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RestoreDraft loads a draft into the workspace. The draft itself stays in
// storage.
func (s *AuthorService) RestoreDraft(ctx context.Context, adminID string, draftID int64) (models.Workspace, error) {
	const op = "author_service.RestoreDraft"

	draft, err := s.drafts.GetDraft(ctx, draftID)
	if err != nil {
		return models.Workspace{}, fmt.Errorf("%s: %w", op, err)
	}

	ws := models.Workspace{
		AdminID:   adminID,
		Form:      draft.Form,
		Sections:  draft.Sections,
		GateState: models.GateIdle,
		UpdatedAt: time.Now(),
	}

	if err := s.workspace.SaveWorkspace(ctx, ws); err != nil {
		return models.Workspace{}, fmt.Errorf("%s: %w", op, err)
	}

	return ws, nil
}

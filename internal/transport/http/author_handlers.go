package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/lib/logger/sl"
	authorsvc "storyadmin/internal/services/author_service"
	"storyadmin/internal/storage"
	"storyadmin/internal/transport/http/dto"
	"storyadmin/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// GenerateSections godoc
// @Summary Generate sections from a prompt
// @Description Runs the authoring assistant. When the workspace still holds unsaved sections the call answers 409 needs_confirmation; repeat it with resolution=save_draft or resolution=discard.
// @Tags authoring
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "Generation request"
// @Success 200 {object} dto.GenerateResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} dto.GenerateResponse
// @Security ApiKeyAuth
// @Router /api/v1/generate [post]
func (r *Routers) GenerateSections(c echo.Context) error {
	const op = "http.routers.GenerateSections"

	log := r.log.With(
		slog.String("op", op),
	)

	adminID := r.adminID(c)
	if adminID == "" {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	var req dto.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	form := models.AuthoringForm{
		Prompt:     req.Prompt,
		SourceText: req.SourceText,
	}

	result, err := r.Author.Generate(c.Request().Context(), adminID, form, authorsvc.GateResolution(req.Resolution))
	if err != nil {
		log.Error("generation failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("generate_failed", err.Error()))
	}

	if result.Status == authorsvc.StatusNeedsConfirmation {
		return c.JSON(http.StatusConflict, dto.GenerateResponse{Status: result.Status})
	}

	return c.JSON(http.StatusOK, dto.GenerateResponse{
		Status:   result.Status,
		Source:   result.Source,
		Sections: result.Sections,
		Warning:  result.Warning,
	})
}

// GetWorkspace godoc
// @Summary Current authoring workspace
// @Tags authoring
// @Produce json
// @Success 200 {object} response.Response{data=models.Workspace}
// @Failure 401 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/workspace [get]
func (r *Routers) GetWorkspace(c echo.Context) error {
	const op = "http.routers.GetWorkspace"

	adminID := r.adminID(c)
	if adminID == "" {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	ws, err := r.Author.Workspace(c.Request().Context(), adminID)
	if err != nil {
		r.log.Error("failed to load workspace", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("workspace_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(ws))
}

// DeleteWorkspaceSection godoc
// @Summary Remove a generated section
// @Description Deletes the section by its 1-based number and renumbers the rest.
// @Tags authoring
// @Produce json
// @Param number path int true "1-based section number"
// @Success 200 {object} response.Response{data=models.Workspace}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/workspace/sections/{number} [delete]
func (r *Routers) DeleteWorkspaceSection(c echo.Context) error {
	const op = "http.routers.DeleteWorkspaceSection"

	adminID := r.adminID(c)
	if adminID == "" {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_section", "section number must be a positive integer"))
	}

	ws, err := r.Author.DeleteSection(c.Request().Context(), adminID, number)
	if err != nil {
		r.log.Error("failed to delete section", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("workspace_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(ws))
}

// PromoteWorkspace godoc
// @Summary Promote workspace sections into a part
// @Description Submits the generated sections through the regular part path. The form carries the part metadata; sections come from the workspace. The workspace is cleared on success.
// @Tags authoring
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/workspace/promote [post]
func (r *Routers) PromoteWorkspace(c echo.Context) error {
	const op = "http.routers.PromoteWorkspace"

	log := r.log.With(
		slog.String("op", op),
	)

	token, ok := r.backendToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}
	adminID := r.adminID(c)

	form, err := parsePartForm(c, c.FormValue("storyId"))
	if err != nil {
		log.Warn("failed to parse promote form", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_form", err.Error()))
	}

	story, err := r.Stories.Get(c.Request().Context(), token, form.StoryID)
	if err != nil {
		log.Warn("failed to load story for promote", sl.Err(err))
		return c.JSON(http.StatusNotFound, response.ErrStoryNotFound)
	}

	if err := form.Validate(story); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	sub, closeFiles, err := form.Submission(nil)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_form", err.Error()))
	}
	defer closeFiles()

	saved, err := r.Author.Promote(c.Request().Context(), token, adminID, sub)
	if err != nil {
		if errors.Is(err, authorsvc.ErrNoWorkspaceSections) {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("empty_workspace", "generate sections before promoting"))
		}
		log.Error("failed to promote workspace", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("backend_error", err.Error()))
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]interface{}{
		"story":  saved,
		"notice": response.CreatedNotice("Part created"),
	}))
}

// ListDrafts godoc
// @Summary List stored drafts
// @Description Purges drafts older than the retention window first, then returns the rest newest first.
// @Tags drafts
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.DraftSummary}
// @Failure 401 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/drafts [get]
func (r *Routers) ListDrafts(c echo.Context) error {
	const op = "http.routers.ListDrafts"

	drafts, err := r.Author.ListDrafts(c.Request().Context())
	if err != nil {
		r.log.Error("failed to list drafts", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("drafts_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewDraftSummaries(drafts)))
}

// GetDraft godoc
// @Summary Get one draft
// @Tags drafts
// @Produce json
// @Param id path int true "Draft ID"
// @Success 200 {object} response.Response{data=models.Draft}
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/drafts/{id} [get]
func (r *Routers) GetDraft(c echo.Context) error {
	const op = "http.routers.GetDraft"

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_draft_id", "draft id must be an integer"))
	}

	draft, err := r.Author.GetDraft(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrDraftNotFound)
		}
		r.log.Error("failed to get draft", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("drafts_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(draft))
}

// DeleteDraft godoc
// @Summary Delete a draft
// @Tags drafts
// @Param id path int true "Draft ID"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/drafts/{id} [delete]
func (r *Routers) DeleteDraft(c echo.Context) error {
	const op = "http.routers.DeleteDraft"

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_draft_id", "draft id must be an integer"))
	}

	if err := r.Author.DeleteDraft(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrDraftNotFound)
		}
		r.log.Error("failed to delete draft", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("drafts_failed", err.Error()))
	}

	return c.NoContent(http.StatusNoContent)
}

// RestoreDraft godoc
// @Summary Load a draft into the workspace
// @Description The draft stays stored; its form and sections replace the current workspace content.
// @Tags drafts
// @Produce json
// @Param id path int true "Draft ID"
// @Success 200 {object} response.Response{data=models.Workspace}
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/drafts/{id}/restore [post]
func (r *Routers) RestoreDraft(c echo.Context) error {
	const op = "http.routers.RestoreDraft"

	adminID := r.adminID(c)
	if adminID == "" {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_draft_id", "draft id must be an integer"))
	}

	ws, err := r.Author.RestoreDraft(c.Request().Context(), adminID, id)
	if err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrDraftNotFound)
		}
		r.log.Error("failed to restore draft", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("drafts_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(ws))
}

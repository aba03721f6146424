package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/lib/logger/sl"
	storysvc "storyadmin/internal/services/story_service"
	"storyadmin/internal/transport/http/dto"
	"storyadmin/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// ListStories godoc
// @Summary List stories
// @Description Serves the cached snapshot while fresh; refresh=true forces a backend refetch. filter matches names exactly, q is a case-insensitive substring search.
// @Tags stories
// @Produce json
// @Param refresh query bool false "Force a backend refetch"
// @Param filter query string false "Exact name match"
// @Param q query string false "Substring search over names in every language"
// @Success 200 {object} response.Response{data=[]models.Story}
// @Failure 401 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/stories [get]
func (r *Routers) ListStories(c echo.Context) error {
	const op = "http.routers.ListStories"

	log := r.log.With(
		slog.String("op", op),
	)

	token, ok := r.backendToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	fetch := r.Stories.SmartFetch
	if c.QueryParam("refresh") == "true" {
		fetch = r.Stories.ForceFetch
	}

	stories, err := fetch(c.Request().Context(), token)
	if err != nil {
		log.Error("failed to fetch stories", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("backend_unavailable", err.Error()))
	}

	stories = storysvc.SearchStories(stories, c.QueryParam("filter"), c.QueryParam("q"))

	return c.JSON(http.StatusOK, response.SuccessResponse(stories))
}

// GetStory godoc
// @Summary Get one story
// @Tags stories
// @Produce json
// @Param id path string true "Story ID"
// @Success 200 {object} response.Response{data=models.Story}
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/stories/{id} [get]
func (r *Routers) GetStory(c echo.Context) error {
	const op = "http.routers.GetStory"

	log := r.log.With(
		slog.String("op", op),
		slog.String("story_id", c.Param("id")),
	)

	token, ok := r.backendToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	story, err := r.Stories.Get(c.Request().Context(), token, c.Param("id"))
	if err != nil {
		log.Warn("failed to get story", sl.Err(err))
		return c.JSON(http.StatusNotFound, response.ErrStoryNotFound)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(story))
}

// CreateStory godoc
// @Summary Create a story
// @Description Multipart form: nameEn/nameTe/nameHi, languages (JSON array), storyCoverImage and bannerImage as file or URL.
// @Tags stories
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/stories [post]
func (r *Routers) CreateStory(c echo.Context) error {
	const op = "http.routers.CreateStory"

	log := r.log.With(
		slog.String("op", op),
	)

	token, ok := r.backendToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	form, err := parseStoryForm(c)
	if err != nil {
		log.Warn("failed to parse story form", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_form", err.Error()))
	}

	if err := form.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	sub, closeFiles, err := form.Submission(nil)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_form", err.Error()))
	}
	defer closeFiles()

	story, err := r.Stories.Add(c.Request().Context(), token, sub)
	if err != nil {
		log.Error("failed to create story", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("backend_error", err.Error()))
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]interface{}{
		"story":  story,
		"notice": response.CreatedNotice("Story created"),
	}))
}

// UpdateStory godoc
// @Summary Update a story
// @Description Dropping a language from the form cascades into deleting that language's content; the first attempt answers 409 with the affected languages until the request carries confirmCascade=true.
// @Tags stories
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Story ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} response.CascadeConfirmation
// @Security ApiKeyAuth
// @Router /api/v1/stories/{id} [put]
func (r *Routers) UpdateStory(c echo.Context) error {
	const op = "http.routers.UpdateStory"

	storyID := c.Param("id")
	log := r.log.With(
		slog.String("op", op),
		slog.String("story_id", storyID),
	)

	token, ok := r.backendToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	form, err := parseStoryForm(c)
	if err != nil {
		log.Warn("failed to parse story form", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_form", err.Error()))
	}

	if err := form.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	// the cascade check runs against the backend entity, not the cache
	current, err := r.Stories.Get(c.Request().Context(), token, storyID)
	if err != nil {
		log.Warn("failed to load story for update", sl.Err(err))
		return c.JSON(http.StatusNotFound, response.ErrStoryNotFound)
	}

	removed := form.RemovedLanguages(current)
	if len(removed) > 0 && !form.ConfirmCascade {
		log.Info("cascade confirmation required", slog.Any("removed_languages", removed))
		return c.JSON(http.StatusConflict, response.NewCascadeConfirmation(languageStrings(removed)))
	}

	sub, closeFiles, err := form.Submission(removed)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_form", err.Error()))
	}
	defer closeFiles()

	story, err := r.Stories.Update(c.Request().Context(), token, storyID, sub)
	if err != nil {
		log.Error("failed to update story", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("backend_error", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]interface{}{
		"story":  story,
		"notice": response.UpdatedNotice("Story updated"),
	}))
}

// DeleteStory godoc
// @Summary Delete a story
// @Tags stories
// @Param id path string true "Story ID"
// @Success 204
// @Failure 401 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/stories/{id} [delete]
func (r *Routers) DeleteStory(c echo.Context) error {
	const op = "http.routers.DeleteStory"

	log := r.log.With(
		slog.String("op", op),
		slog.String("story_id", c.Param("id")),
	)

	token, ok := r.backendToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	if err := r.Stories.Delete(c.Request().Context(), token, c.Param("id")); err != nil {
		log.Error("failed to delete story", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("backend_error", err.Error()))
	}

	return c.NoContent(http.StatusNoContent)
}

// SavePart godoc
// @Summary Create or update a part
// @Description Multipart form; partId present means update. Sections arrive as a JSON field with sectionImage{i} files attached separately. Part languages must be a subset of the story's.
// @Tags parts
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Story ID"
// @Success 200 {object} response.Response
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} response.CascadeConfirmation
// @Security ApiKeyAuth
// @Router /api/v1/stories/{id}/parts [post]
func (r *Routers) SavePart(c echo.Context) error {
	const op = "http.routers.SavePart"

	storyID := c.Param("id")
	log := r.log.With(
		slog.String("op", op),
		slog.String("story_id", storyID),
	)

	token, ok := r.backendToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	form, err := parsePartForm(c, storyID)
	if err != nil {
		log.Warn("failed to parse part form", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_form", err.Error()))
	}

	story, err := r.Stories.Get(c.Request().Context(), token, storyID)
	if err != nil {
		log.Warn("failed to load story for part save", sl.Err(err))
		return c.JSON(http.StatusNotFound, response.ErrStoryNotFound)
	}

	if err := form.Validate(story); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	var removed []models.Language
	if form.PartID != "" {
		if current, found := findPart(story, form.AgeVariant, form.PartID); found {
			removed = form.RemovedLanguages(current)
		}
		if len(removed) > 0 && !form.ConfirmCascade {
			log.Info("cascade confirmation required", slog.Any("removed_languages", removed))
			return c.JSON(http.StatusConflict, response.NewCascadeConfirmation(languageStrings(removed)))
		}
	}

	sub, closeFiles, err := form.Submission(removed)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_form", err.Error()))
	}
	defer closeFiles()

	saved, err := r.Stories.SavePart(c.Request().Context(), token, sub)
	if err != nil {
		log.Error("failed to save part", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("backend_error", err.Error()))
	}

	status := http.StatusCreated
	notice := response.CreatedNotice("Part created")
	if form.PartID != "" {
		status = http.StatusOK
		notice = response.UpdatedNotice("Part updated")
	}

	return c.JSON(status, response.SuccessResponse(map[string]interface{}{
		"story":  saved,
		"notice": notice,
	}))
}

// DeletePart godoc
// @Summary Delete a part
// @Tags parts
// @Param id path string true "Story ID"
// @Param part_id path string true "Part ID"
// @Success 204
// @Failure 401 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/stories/{id}/parts/{part_id} [delete]
func (r *Routers) DeletePart(c echo.Context) error {
	const op = "http.routers.DeletePart"

	log := r.log.With(
		slog.String("op", op),
		slog.String("story_id", c.Param("id")),
		slog.String("part_id", c.Param("part_id")),
	)

	token, ok := r.backendToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	if err := r.Stories.DeletePart(c.Request().Context(), token, c.Param("id"), c.Param("part_id")); err != nil {
		log.Error("failed to delete part", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("backend_error", err.Error()))
	}

	return c.NoContent(http.StatusNoContent)
}

// langSuffix capitalizes a language code for form field naming: nameEn,
// titleTe.
func langSuffix(lang models.Language) string {
	s := string(lang)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func langMapFromForm(c echo.Context, base string) models.LangMap {
	m := models.LangMap{}
	for _, lang := range models.SupportedLanguages() {
		if v := c.FormValue(base + langSuffix(lang)); v != "" {
			m[lang] = v
		}
	}
	return m
}

func parseLanguagesField(raw string) ([]models.Language, error) {
	if raw == "" {
		return nil, nil
	}

	var langs []models.Language
	if err := json.Unmarshal([]byte(raw), &langs); err != nil {
		return nil, fmt.Errorf("languages must be a JSON array: %w", err)
	}
	return langs, nil
}

func parseStoryForm(c echo.Context) (dto.StoryForm, error) {
	langs, err := parseLanguagesField(c.FormValue("languages"))
	if err != nil {
		return dto.StoryForm{}, err
	}

	form := dto.StoryForm{
		Name:           langMapFromForm(c, "name"),
		Languages:      langs,
		ConfirmCascade: c.FormValue("confirmCascade") == "true",
	}

	if fh, err := c.FormFile("storyCoverImage"); err == nil {
		form.CoverImage = fh
	} else {
		form.CoverImageURL = c.FormValue("storyCoverImage")
	}

	if fh, err := c.FormFile("bannerImage"); err == nil {
		form.BannerImage = fh
	} else {
		form.BannerImageURL = c.FormValue("bannerImage")
	}

	return form, nil
}

func parsePartForm(c echo.Context, storyID string) (dto.PartForm, error) {
	langs, err := parseLanguagesField(c.FormValue("languages"))
	if err != nil {
		return dto.PartForm{}, err
	}

	form := dto.PartForm{
		StoryID:        storyID,
		PartID:         c.FormValue("partId"),
		AgeVariant:     models.AgeVariant(c.FormValue("ageVariant")),
		Languages:      langs,
		Title:          langMapFromForm(c, "title"),
		Date:           langMapFromForm(c, "date"),
		Description:    langMapFromForm(c, "description"),
		TimeToRead:     langMapFromForm(c, "timeToRead"),
		StoryType:      langMapFromForm(c, "storyType"),
		ConfirmCascade: c.FormValue("confirmCascade") == "true",
	}

	if fh, err := c.FormFile("thumbnailImage"); err == nil {
		form.Thumbnail = fh
	} else {
		form.ThumbnailURL = c.FormValue("thumbnailImage")
	}

	if raw := c.FormValue("sections"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.Sections); err != nil {
			return dto.PartForm{}, fmt.Errorf("sections must be a JSON array: %w", err)
		}
	}

	for i := range form.Sections {
		if fh, err := c.FormFile(fmt.Sprintf("sectionImage%d", i)); err == nil {
			form.Sections[i].Image = fh
		}
	}

	return form, nil
}

// findPart locates a part in the collection the age variant selects.
func findPart(story models.Story, variant models.AgeVariant, partID string) (models.Part, bool) {
	parts := story.Parts
	switch variant {
	case models.VariantToddler:
		parts = story.Toddler
	case models.VariantKids:
		parts = story.Kids
	}

	for _, p := range parts {
		if p.ID == partID {
			return p, true
		}
	}
	return models.Part{}, false
}

func languageStrings(langs []models.Language) []string {
	out := make([]string, 0, len(langs))
	for _, lang := range langs {
		out = append(out, string(lang))
	}
	return out
}

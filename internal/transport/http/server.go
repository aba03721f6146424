package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/gateway/storyapi"
	"storyadmin/internal/lib/jwt"
	"storyadmin/internal/lib/loading"
	"storyadmin/internal/lib/logger/sl"
	authorsvc "storyadmin/internal/services/author_service"
	notifysvc "storyadmin/internal/services/notify_service"
	"storyadmin/internal/transport/http/dto"
	"storyadmin/internal/transport/http/dto/request"
	"storyadmin/internal/transport/http/dto/response"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "storyadmin/docs"
)

type AuthGateway interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type StoryService interface {
	SmartFetch(ctx context.Context, token string) ([]models.Story, error)
	ForceFetch(ctx context.Context, token string) ([]models.Story, error)
	Get(ctx context.Context, token, id string) (models.Story, error)
	Add(ctx context.Context, token string, sub storyapi.StorySubmission) (models.Story, error)
	Update(ctx context.Context, token, id string, sub storyapi.StorySubmission) (models.Story, error)
	Delete(ctx context.Context, token, id string) error
	SavePart(ctx context.Context, token string, sub storyapi.PartSubmission) (models.Story, error)
	DeletePart(ctx context.Context, token, storyID, partID string) error
}

type AuthorService interface {
	Workspace(ctx context.Context, adminID string) (models.Workspace, error)
	Generate(ctx context.Context, adminID string, form models.AuthoringForm, resolution authorsvc.GateResolution) (authorsvc.GenerateResult, error)
	DeleteSection(ctx context.Context, adminID string, number int) (models.Workspace, error)
	Promote(ctx context.Context, token, adminID string, sub storyapi.PartSubmission) (models.Story, error)
	ListDrafts(ctx context.Context) ([]models.Draft, error)
	GetDraft(ctx context.Context, id int64) (models.Draft, error)
	DeleteDraft(ctx context.Context, id int64) error
	RestoreDraft(ctx context.Context, adminID string, draftID int64) (models.Workspace, error)
}

type NotifyService interface {
	NotifySubscribers(ctx context.Context, token, subject, body string) (notifysvc.NotifyResult, error)
}

type Routers struct {
	log     *slog.Logger
	Auth    AuthGateway
	Stories StoryService
	Author  AuthorService
	Notify  NotifyService
	Loading *loading.Registry

	cookieName string
	jwtSecret  string
	tokenTTL   time.Duration
}

func NewRouter(
	log *slog.Logger,
	auth AuthGateway,
	stories StoryService,
	author AuthorService,
	notify NotifyService,
	reg *loading.Registry,
	cookieName, jwtSecret string,
	tokenTTL time.Duration,
) *Routers {
	return &Routers{
		log:        log,
		Auth:       auth,
		Stories:    stories,
		Author:     author,
		Notify:     notify,
		Loading:    reg,
		cookieName: cookieName,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
	}
}

// Login godoc
// @Summary Admin login
// @Description Authenticates against the content backend and opens a panel session. Returns a JWT for the API group.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request", slog.String("username", req.Username))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	backendToken, err := r.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		log.Warn("backend rejected login", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	accessToken, err := jwt.NewToken(req.Username, req.Username, r.jwtSecret, r.tokenTTL)
	if err != nil {
		log.Error("failed to issue access token", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to issue token"))
	}

	sess, _ := session.Get(r.cookieName, c)
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(r.tokenTTL.Seconds()),
		HttpOnly: true,
	}
	sess.Values["backend_token"] = backendToken
	sess.Values["admin_id"] = req.Username
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		log.Error("failed to save session", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "failed to open session"))
	}

	log.Info("admin logged in", slog.String("username", req.Username))

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{
		"access_token": accessToken,
	}))
}

// Logout godoc
// @Summary Close the panel session
// @Tags auth
// @Success 204
// @Router /api/v1/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	sess, _ := session.Get(r.cookieName, c)
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		r.log.Warn("failed to clear session", sl.Err(err))
	}

	return c.NoContent(http.StatusNoContent)
}

// Ops godoc
// @Summary In-flight operations
// @Description Returns the loading flags of currently running operations, for progress indicators.
// @Tags ops
// @Produce json
// @Success 200 {object} response.Response
// @Security ApiKeyAuth
// @Router /api/v1/ops [get]
func (r *Routers) Ops(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.Loading.Snapshot()))
}

// NotifySubscribers godoc
// @Summary Email all subscribers
// @Description Sends the announcement to every subscriber, one email per recipient. Failed recipients are listed in the result.
// @Tags notify
// @Accept json
// @Produce json
// @Param request body dto.NotifyRequest true "Announcement"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/notify [post]
func (r *Routers) NotifySubscribers(c echo.Context) error {
	const op = "http.routers.NotifySubscribers"

	log := r.log.With(
		slog.String("op", op),
	)

	token, ok := r.backendToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrSessionRequired)
	}

	var req dto.NotifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	result, err := r.Notify.NotifySubscribers(c.Request().Context(), token, req.Subject, req.Body)
	if err != nil {
		log.Error("notification run failed", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("notify_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(result))
}

// backendToken pulls the content backend token out of the panel session.
func (r *Routers) backendToken(c echo.Context) (string, bool) {
	sess, err := session.Get(r.cookieName, c)
	if err != nil {
		return "", false
	}

	token, ok := sess.Values["backend_token"].(string)
	return token, ok && token != ""
}

func (r *Routers) adminID(c echo.Context) string {
	sess, err := session.Get(r.cookieName, c)
	if err != nil {
		return ""
	}

	id, _ := sess.Values["admin_id"].(string)
	return id
}

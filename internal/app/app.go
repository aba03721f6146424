package app

import (
	"context"
	"log/slog"

	httpapp "storyadmin/internal/app/http"
	"storyadmin/internal/config"
	"storyadmin/internal/gateway/aiwebhook"
	"storyadmin/internal/gateway/mailer"
	"storyadmin/internal/gateway/storyapi"
	"storyadmin/internal/lib/loading"
	"storyadmin/internal/repository"
	authorsvc "storyadmin/internal/services/author_service"
	notifysvc "storyadmin/internal/services/notify_service"
	storysvc "storyadmin/internal/services/story_service"
	"storyadmin/internal/storage/postgresql"
	redisapp "storyadmin/internal/storage/redis"
	httprouters "storyadmin/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Storage    *postgresql.Storage
	Redis      *redisapp.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	storage, err := postgresql.New(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	redis := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	if err := redis.HealthCheck(context.Background()); err != nil {
		panic(err)
	}

	repo := repository.NewRepository(storage.DB, redis, cfg.Drafts.MaxEntries)

	backend := storyapi.New(log, cfg.Backend.BaseURL, cfg.Backend.Timeout)
	ai := aiwebhook.New(log, cfg.AI.WebhookURL, cfg.AI.Timeout)
	mail := mailer.New(log, cfg.Mailer.ProviderURL, cfg.Mailer.APIKey, cfg.Mailer.Sender)

	reg := loading.NewRegistry()

	stories := storysvc.NewStoryService(log, backend, reg, cfg.Cache.StoryTTL)
	author := authorsvc.NewAuthorService(log, repo.Drafts, repo.Workspace, ai, stories, reg, cfg.Drafts.Retention)
	notify := notifysvc.NewNotifyService(log, backend, mail, reg)

	// expired drafts go away at startup, not only before listings
	author.CleanupDrafts(context.Background())

	routers := httprouters.NewRouter(
		log,
		backend,
		stories,
		author,
		notify,
		reg,
		cfg.Session.CookieName,
		cfg.Session.JWTSecret,
		cfg.Session.TokenTTL,
	)

	server := httpapp.New(log, cfg.Session.JWTSecret, cfg.Session.Secret, cfg.HTTP.Host, cfg.HTTP.Port, routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		Storage:    storage,
		Redis:      redis,
	}
}

// Stop releases storage connections after the HTTP server has shut down.
func (a *App) Stop() {
	a.Storage.Stop()
	a.Redis.Close()
}

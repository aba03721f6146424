package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storyadmin/internal/domain/models"
	"storyadmin/internal/gateway/storyapi"
	"storyadmin/internal/lib/loading"
	"storyadmin/internal/lib/logger/sl"

	gocache "github.com/patrickmn/go-cache"
)

const storiesKey = "stories"

type StoryGateway interface {
	ListStories(ctx context.Context, token string) ([]models.Story, error)
	GetStory(ctx context.Context, token, id string) (models.Story, error)
	CreateStory(ctx context.Context, token string, sub storyapi.StorySubmission) (models.Story, error)
	UpdateStory(ctx context.Context, token, id string, sub storyapi.StorySubmission) (models.Story, error)
	DeleteStory(ctx context.Context, token, id string) error
	SavePart(ctx context.Context, token string, sub storyapi.PartSubmission) (models.Story, error)
	DeletePart(ctx context.Context, token, storyID, partID string) error
}

// StoryService is the panel's source of truth for the story collection. The
// snapshot fetched from the backend is held in a TTL cache; within the
// staleness window reads are served without a network call.
type StoryService struct {
	log     *slog.Logger
	gateway StoryGateway
	loading *loading.Registry
	cache   *gocache.Cache
	ttl     time.Duration

	mu sync.Mutex
}

func NewStoryService(log *slog.Logger, gateway StoryGateway, reg *loading.Registry, ttl time.Duration) *StoryService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &StoryService{
		log:     log,
		gateway: gateway,
		loading: reg,
		cache:   gocache.New(ttl, 10*time.Minute),
		ttl:     ttl,
	}
}

// SmartFetch serves the cached snapshot while it is fresh and refetches only
// when the cache is empty or the staleness window has elapsed. Without a
// token it is a no-op serving whatever is cached. Two overlapping calls may
// both fetch; the response is an idempotent replace, so the race is harmless.
func (s *StoryService) SmartFetch(ctx context.Context, token string) ([]models.Story, error) {
	const op = "story_service.SmartFetch"

	if token == "" {
		return s.Cached(), nil
	}

	if v, ok := s.cache.Get(storiesKey); ok {
		return copyStories(v.([]models.Story)), nil
	}

	log := s.log.With(slog.String("op", op))
	log.Info("cache empty or stale, fetching stories")

	return s.fetch(ctx, token, op)
}

// ForceFetch unconditionally replaces the snapshot and resets the staleness
// clock.
func (s *StoryService) ForceFetch(ctx context.Context, token string) ([]models.Story, error) {
	const op = "story_service.ForceFetch"

	return s.fetch(ctx, token, op)
}

func (s *StoryService) fetch(ctx context.Context, token, op string) ([]models.Story, error) {
	done := s.loading.Begin("fetch_stories", "Loading stories...")
	defer done()

	stories, err := s.gateway.ListStories(ctx, token)
	if err != nil {
		s.log.Error("failed to fetch stories", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.cache.Set(storiesKey, stories, s.ttl)
	s.mu.Unlock()

	return copyStories(stories), nil
}

// Cached returns the current snapshot without touching the network.
func (s *StoryService) Cached() []models.Story {
	if v, ok := s.cache.Get(storiesKey); ok {
		return copyStories(v.([]models.Story))
	}
	return nil
}

func (s *StoryService) Get(ctx context.Context, token, id string) (models.Story, error) {
	const op = "story_service.Get"

	done := s.loading.Begin("get_story", "Loading story...")
	defer done()

	story, err := s.gateway.GetStory(ctx, token, id)
	if err != nil {
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	return story, nil
}

func (s *StoryService) Add(ctx context.Context, token string, sub storyapi.StorySubmission) (models.Story, error) {
	const op = "story_service.Add"

	log := s.log.With(slog.String("op", op))

	done := s.loading.Begin("add_story", "Saving story...")
	defer done()

	story, err := s.gateway.CreateStory(ctx, token, sub)
	if err != nil {
		log.Error("failed to create story", sl.Err(err))
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mutateCached(func(stories []models.Story) []models.Story {
		return append(stories, story)
	})

	log.Info("story created", slog.String("story_id", story.ID))

	return story, nil
}

func (s *StoryService) Update(ctx context.Context, token, id string, sub storyapi.StorySubmission) (models.Story, error) {
	const op = "story_service.Update"

	log := s.log.With(slog.String("op", op), slog.String("story_id", id))

	done := s.loading.Begin("update_story", "Updating story...")
	defer done()

	story, err := s.gateway.UpdateStory(ctx, token, id, sub)
	if err != nil {
		log.Error("failed to update story", sl.Err(err))
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mutateCached(func(stories []models.Story) []models.Story {
		for i := range stories {
			if stories[i].ID == id {
				stories[i] = story
				break
			}
		}
		return stories
	})

	log.Info("story updated")

	return story, nil
}

func (s *StoryService) Delete(ctx context.Context, token, id string) error {
	const op = "story_service.Delete"

	log := s.log.With(slog.String("op", op), slog.String("story_id", id))

	done := s.loading.Begin("delete_story", "Deleting story...")
	defer done()

	if err := s.gateway.DeleteStory(ctx, token, id); err != nil {
		log.Error("failed to delete story", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mutateCached(func(stories []models.Story) []models.Story {
		out := stories[:0]
		for _, st := range stories {
			if st.ID != id {
				out = append(out, st)
			}
		}
		return out
	})

	log.Info("story deleted")

	return nil
}

// SavePart creates or updates a part through the backend and merges the
// returned story into the snapshot.
func (s *StoryService) SavePart(ctx context.Context, token string, sub storyapi.PartSubmission) (models.Story, error) {
	const op = "story_service.SavePart"

	log := s.log.With(slog.String("op", op), slog.String("story_id", sub.StoryID))

	done := s.loading.Begin("save_part", "Saving part...")
	defer done()

	story, err := s.gateway.SavePart(ctx, token, sub)
	if err != nil {
		log.Error("failed to save part", sl.Err(err))
		return models.Story{}, fmt.Errorf("%s: %w", op, err)
	}

	if story.ID != "" {
		s.mutateCached(func(stories []models.Story) []models.Story {
			for i := range stories {
				if stories[i].ID == story.ID {
					stories[i] = story
					break
				}
			}
			return stories
		})
	}

	log.Info("part saved")

	return story, nil
}

func (s *StoryService) DeletePart(ctx context.Context, token, storyID, partID string) error {
	const op = "story_service.DeletePart"

	done := s.loading.Begin("delete_part", "Deleting part...")
	defer done()

	if err := s.gateway.DeletePart(ctx, token, storyID, partID); err != nil {
		s.log.Error("failed to delete part", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mutateCached(func(stories []models.Story) []models.Story {
		for i := range stories {
			if stories[i].ID != storyID {
				continue
			}
			// the parts array is shared with older snapshots, compact into a
			// fresh one
			parts := make([]models.Part, 0, len(stories[i].Parts))
			for _, p := range stories[i].Parts {
				if p.ID != partID {
					parts = append(parts, p)
				}
			}
			stories[i].Parts = parts
		}
		return stories
	})

	return nil
}

// Search recomputes the filtered view from the cached snapshot. It never
// mutates the snapshot; with no filter and no query it returns the snapshot
// unchanged.
func (s *StoryService) Search(filter, query string) []models.Story {
	return SearchStories(s.Cached(), filter, query)
}

// SearchStories restricts to an exact name match when filter is set, then
// applies a case-insensitive substring match against the name in every
// supported language.
func SearchStories(stories []models.Story, filter, query string) []models.Story {
	out := stories
	if filter != "" {
		filtered := make([]models.Story, 0, len(out))
		for _, st := range out {
			if st.NameMatches(filter) {
				filtered = append(filtered, st)
			}
		}
		out = filtered
	}

	if query != "" {
		filtered := make([]models.Story, 0, len(out))
		for _, st := range out {
			if st.Name.ContainsFold(query) {
				filtered = append(filtered, st)
			}
		}
		out = filtered
	}

	return out
}

// mutateCached replaces the cached snapshot, preserving the remaining
// staleness window. An expired or missing snapshot is left alone; the next
// read refetches anyway. The mutation runs on a copy of the stored slice:
// snapshots already handed out by Cached share the old backing array and must
// never see a concurrent write.
func (s *StoryService) mutateCached(mutate func([]models.Story) []models.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, expiration, ok := s.cache.GetWithExpiration(storiesKey)
	if !ok {
		return
	}

	remaining := time.Until(expiration)
	if remaining <= 0 {
		return
	}

	s.cache.Set(storiesKey, mutate(copyStories(v.([]models.Story))), remaining)
}

func copyStories(stories []models.Story) []models.Story {
	out := make([]models.Story, len(stories))
	copy(out, stories)
	return out
}

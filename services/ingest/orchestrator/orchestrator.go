package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crowdpulse/pkg/logger"
	"crowdpulse/pkg/models"
	"crowdpulse/pkg/queue"
	"crowdpulse/services/ingest/adapters"
	"crowdpulse/services/ingest/repository"
)

// Summary maps each processed platform to the number of posts saved in
// this run. Every known requested platform appears exactly once.
type Summary map[models.Platform]int

// Policy holds the run-behavior knobs that are deliberate decisions
// rather than wiring.
type Policy struct {
	// FetchLimit is passed to each adapter; <=0 means the adapter
	// default.
	FetchLimit int
	// EmptyRunStatus is logged when a fetch succeeds but nothing is
	// saved. Whether that counts as a healthy run depends on the
	// deployment, so it is configurable: "partial" or "success".
	EmptyRunStatus models.FetchStatus
	// Concurrent runs one goroutine per platform. Platforms share no
	// mutable state beyond the keyed store and the append-only log, so
	// this does not change correctness.
	Concurrent bool
}

// FeedCache mirrors pkg/cache.Feed; optional.
type FeedCache interface {
	Push(ctx context.Context, platform string, postIDs []string) error
}

// EventPublisher mirrors pkg/queue.Client; optional.
type EventPublisher interface {
	PublishRunCompleted(event queue.IngestEvent) error
}

// MediaArchiver mirrors pkg/s3.Client; optional.
type MediaArchiver interface {
	ArchiveURL(platform, postID string, index int, mediaURL string) (string, error)
}

// Deps wires the orchestrator. Adapters, Posts, Logs and Logger are
// required; the rest are best-effort side effects and may be nil.
type Deps struct {
	Adapters []adapters.Adapter
	Posts    repository.PostRepository
	Logs     repository.FetchLogRepository
	Logger   *logger.Logger
	Feed     FeedCache
	Events   EventPublisher
	Archiver MediaArchiver
	Policy   Policy
}

// Orchestrator runs the requested platforms through the
// fetch → save → log sequence, isolating each platform's failures from
// the others.
type Orchestrator struct {
	adapters map[models.Platform]adapters.Adapter
	order    []models.Platform
	posts    repository.PostRepository
	logs     repository.FetchLogRepository
	logger   *logger.Logger
	feed     FeedCache
	events   EventPublisher
	archiver MediaArchiver
	policy   Policy
}

func New(deps Deps) *Orchestrator {
	byPlatform := make(map[models.Platform]adapters.Adapter, len(deps.Adapters))
	order := make([]models.Platform, 0, len(deps.Adapters))
	for _, adapter := range deps.Adapters {
		byPlatform[adapter.Platform()] = adapter
		order = append(order, adapter.Platform())
	}

	policy := deps.Policy
	if policy.EmptyRunStatus == "" {
		policy.EmptyRunStatus = models.FetchStatusPartial
	}

	return &Orchestrator{
		adapters: byPlatform,
		order:    order,
		posts:    deps.Posts,
		logs:     deps.Logs,
		logger:   deps.Logger,
		feed:     deps.Feed,
		events:   deps.Events,
		archiver: deps.Archiver,
		policy:   policy,
	}
}

// FetchAll processes the requested platforms. Unknown names are skipped
// with a warning and appear in neither the summary nor the log. An
// empty request means every configured platform.
func (o *Orchestrator) FetchAll(ctx context.Context, names []string) Summary {
	platforms := o.resolve(names)
	summary := make(Summary, len(platforms))

	if o.policy.Concurrent {
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, platform := range platforms {
			wg.Add(1)
			go func(platform models.Platform) {
				defer wg.Done()
				saved := o.runPlatform(ctx, platform)
				mu.Lock()
				summary[platform] = saved
				mu.Unlock()
			}(platform)
		}
		wg.Wait()
		return summary
	}

	for _, platform := range platforms {
		summary[platform] = o.runPlatform(ctx, platform)
	}
	return summary
}

func (o *Orchestrator) resolve(names []string) []models.Platform {
	if len(names) == 0 {
		return o.order
	}
	platforms := make([]models.Platform, 0, len(names))
	for _, name := range names {
		platform, err := models.ParsePlatform(name)
		if err != nil {
			o.logger.Warn("Skipping unknown platform: %s", name)
			continue
		}
		if _, ok := o.adapters[platform]; !ok {
			o.logger.Warn("No adapter configured for platform: %s", name)
			continue
		}
		platforms = append(platforms, platform)
	}
	return platforms
}

// runPlatform walks one platform through FETCH → SAVE → LOG and returns
// the saved count. Nothing escapes: failures become a log row and a
// zero count.
func (o *Orchestrator) runPlatform(ctx context.Context, platform models.Platform) (saved int) {
	defer func() {
		// One platform's blowup must not abort the rest of the run
		if r := recover(); r != nil {
			msg := fmt.Sprintf("panic: %v", r)
			o.logger.Error("%s run panicked: %s", platform, msg)
			o.logRun(platform, models.FetchStatusError, 0, &msg)
			saved = 0
		}
	}()

	adapter := o.adapters[platform]
	o.logger.Info("Fetching %s posts...", platform)

	posts, fetchErr := adapter.Fetch(ctx, o.policy.FetchLimit)
	if fetchErr != nil {
		o.logger.Error("%s fetch error: %v", platform, fetchErr)
		msg := fetchErr.Error()
		o.logRun(platform, models.FetchStatusError, 0, &msg)
		return 0
	}
	o.logger.Info("Fetched %d %s posts", len(posts), platform)

	var saveMsg *string
	if len(posts) > 0 {
		n, err := o.posts.UpsertPosts(posts)
		if err != nil {
			// The store boundary swallows: report zero saved, keep the
			// reason for the log row
			o.logger.Error("%s save error: %v", platform, err)
			msg := err.Error()
			saveMsg = &msg
		} else {
			saved = int(n)
			o.logger.Info("Saved %d %s posts", saved, platform)
		}
	}

	status := o.policy.EmptyRunStatus
	if saved > 0 {
		status = models.FetchStatusSuccess
	}
	o.logRun(platform, status, saved, saveMsg)

	if saved > 0 {
		o.afterSave(ctx, platform, status, posts, saved)
	}
	return saved
}

// logRun appends the run outcome. Losing a log entry must never abort
// the pipeline, so insert failures are logged and swallowed.
func (o *Orchestrator) logRun(platform models.Platform, status models.FetchStatus, saved int, errMsg *string) {
	err := o.logs.Create(&models.FetchLog{
		Platform:     platform,
		Status:       status,
		ItemsFetched: saved,
		ErrorMessage: errMsg,
		CompletedAt:  time.Now().UTC(),
	})
	if err != nil {
		o.logger.Error("Failed to log %s run: %v", platform, err)
	}
}

// afterSave runs the best-effort side effects: feed cache refresh,
// ingest event, media archiving. All failures are logged and swallowed.
func (o *Orchestrator) afterSave(ctx context.Context, platform models.Platform, status models.FetchStatus, posts []models.Post, saved int) {
	if o.feed != nil {
		ids := make([]string, 0, len(posts))
		for _, post := range posts {
			ids = append(ids, post.PlatformPostID)
		}
		if err := o.feed.Push(ctx, string(platform), ids); err != nil {
			o.logger.Warn("Failed to refresh %s feed cache: %v", platform, err)
		}
	}

	if o.events != nil {
		err := o.events.PublishRunCompleted(queue.IngestEvent{
			Platform:    platform,
			Status:      status,
			ItemsSaved:  saved,
			CompletedAt: time.Now().UTC(),
		})
		if err != nil {
			o.logger.Warn("Failed to publish %s ingest event: %v", platform, err)
		}
	}

	if o.archiver != nil {
		for _, post := range posts {
			for i, mediaURL := range post.MediaURLs {
				if _, err := o.archiver.ArchiveURL(string(platform), post.PlatformPostID, i, mediaURL); err != nil {
					o.logger.Warn("Failed to archive media for %s/%s: %v", platform, post.PlatformPostID, err)
				}
			}
		}
	}
}

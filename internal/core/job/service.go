package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"promptcrawler/internal/core/crawlconfig"
	"promptcrawler/internal/core/extract"
	"promptcrawler/internal/core/persist"
	"promptcrawler/internal/core/source"
	"promptcrawler/internal/logger"
	"promptcrawler/internal/store"
	"promptcrawler/internal/utils/pace"
)

// finalizeTimeout bounds the best-effort failure write after cancellation.
const finalizeTimeout = 10 * time.Second

type JobStore interface {
	CreateJob(ctx context.Context, job *store.CrawlJob) error
	FinishJob(ctx context.Context, job *store.CrawlJob) error
	GetJob(ctx context.Context, id string) (*store.CrawlJob, error)
	ListJobs(ctx context.Context, limit int) ([]store.CrawlJob, error)
}

type ConfigLoader interface {
	Load(ctx context.Context) crawlconfig.CrawlConfig
}

type ConnectorFactory interface {
	Build(types []source.Type) []source.Connector
}

type DedupGate interface {
	IsNew(ctx context.Context, t source.Type, sourceID string) (bool, error)
}

type Extractor interface {
	Enabled() bool
	Extract(ctx context.Context, item source.Item, threshold float64) *extract.Result
}

type Persister interface {
	Save(ctx context.Context, item source.Item, res *extract.Result) (persist.Saved, error)
}

type Deps struct {
	Jobs       JobStore
	Config     ConfigLoader
	Connectors ConnectorFactory
	Dedup      DedupGate
	Extractor  Extractor
	Writer     Persister

	// SourceDelay separates connector invocations, AnalysisDelay LLM calls.
	SourceDelay   time.Duration
	AnalysisDelay time.Duration
}

// Service orchestrates one crawl run end to end. Runs are strictly
// sequential internally; concurrent runs are not coordinated.
type Service struct {
	deps Deps
	log  *logger.Logger
	now  func() time.Time
}

func NewService(d Deps) *Service {
	return &Service{deps: d, log: logger.New("JobOrchestrator"), now: time.Now}
}

// RunJob records a crawl_jobs row, crawls every source type of t in turn and
// finalizes the row once with the run's counters. Per-item failures never
// fail the run. A failure to create the row, a cancelled context or a failed
// finalization is returned as an error.
func (s *Service) RunJob(ctx context.Context, t Type) (*Result, error) {
	job := &store.CrawlJob{
		ID:        uuid.New().String(),
		JobType:   string(t),
		Status:    store.JobStatusRunning,
		StartedAt: s.now().UTC(),
	}
	if err := s.deps.Jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create crawl job: %w", err)
	}
	s.log.Info().Str("job_id", job.ID).Str("job_type", job.JobType).Msg("crawl job started")

	res := &Result{JobID: job.ID}
	if err := s.crawl(ctx, t, res); err != nil {
		s.markFailed(ctx, job, res)
		return res, fmt.Errorf("crawl job %s: %w", job.ID, err)
	}

	s.fill(job, res, store.JobStatusCompleted)
	if err := s.deps.Jobs.FinishJob(ctx, job); err != nil {
		s.markFailed(ctx, job, res)
		return res, fmt.Errorf("finalize crawl job %s: %w", job.ID, err)
	}
	s.log.Success().
		Str("job_id", job.ID).
		Int("reddit_posts", res.RedditPosts).
		Int("github_repos", res.GitHubRepos).
		Int("items_new", res.ItemsNew).
		Int("prompts_extracted", res.PromptsExtracted).
		Msg("crawl job completed")
	return res, nil
}

// GetJob returns one crawl job; store.ErrNotFound when it does not exist.
func (s *Service) GetJob(ctx context.Context, id string) (*store.CrawlJob, error) {
	return s.deps.Jobs.GetJob(ctx, id)
}

func (s *Service) ListJobs(ctx context.Context, limit int) ([]store.CrawlJob, error) {
	return s.deps.Jobs.ListJobs(ctx, limit)
}

func (s *Service) crawl(ctx context.Context, t Type, res *Result) error {
	cfg := s.deps.Config.Load(ctx)
	connectorPacer := pace.New(s.deps.SourceDelay)
	llmPacer := pace.New(s.deps.AnalysisDelay)

	for _, conn := range s.deps.Connectors.Build(t.Sources()) {
		if err := connectorPacer.Wait(ctx); err != nil {
			return err
		}
		items, err := conn.Fetch(ctx, cfg.QueryFor(conn.Type()))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn().Err(err).Str("source_type", string(conn.Type())).Msg("connector failed, continuing with next source")
		}
		res.count(conn.Type(), len(items))

		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.process(ctx, item, cfg.QualityThreshold, llmPacer, res)
		}
	}
	return ctx.Err()
}

// process runs one item through dedup, extraction and persistence. Every
// failure here is isolated to the item.
func (s *Service) process(ctx context.Context, item source.Item, threshold float64, llmPacer *pace.Pacer, res *Result) {
	log := s.log.With().Str("source_type", string(item.Type())).Str("source_id", item.SourceID()).Logger()

	isNew, err := s.deps.Dedup.IsNew(ctx, item.Type(), item.SourceID())
	if err != nil {
		log.Warn().Err(err).Msg("dedup lookup failed, skipping item")
		return
	}
	if !isNew {
		log.Debug().Msg("already known")
		return
	}

	var extracted *extract.Result
	if s.deps.Extractor.Enabled() {
		if err := llmPacer.Wait(ctx); err != nil {
			return
		}
		extracted = s.deps.Extractor.Extract(ctx, item, threshold)
		if ctx.Err() != nil {
			return
		}
	}

	saved, err := s.deps.Writer.Save(ctx, item, extracted)
	if err != nil {
		log.Warn().Err(err).Msg("failed to persist item")
		return
	}
	res.ItemsNew++
	res.PromptsExtracted += saved.PromptCount
	log.Debug().Int("prompts", saved.PromptCount).Msg("item stored")
}

func (s *Service) fill(job *store.CrawlJob, res *Result, status store.JobStatus) {
	done := s.now().UTC()
	job.Status = status
	job.CompletedAt = &done
	job.ItemsFound = res.ItemsFound()
	job.ItemsNew = res.ItemsNew
	job.PromptsExtracted = res.PromptsExtracted
}

// markFailed is best effort and survives cancellation of ctx.
func (s *Service) markFailed(ctx context.Context, job *store.CrawlJob, res *Result) {
	s.fill(job, res, store.JobStatusFailed)
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	if err := s.deps.Jobs.FinishJob(fctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("failed to mark crawl job as failed")
		return
	}
	s.log.Warn().Str("job_id", job.ID).Msg("crawl job marked failed")
}

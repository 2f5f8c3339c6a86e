package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	supa "github.com/antoineross/supabase-go"
	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"

	"promptcrawler/internal/logger"
	"promptcrawler/internal/store"
)

const (
	tableConfig  = "crawl_config"
	tableJobs    = "crawl_jobs"
	tableSources = "prompt_sources"
	tablePrompts = "extracted_prompts"
)

// Store persists through the Supabase PostgREST API with the service role
// key. The PostgREST client does not take a context; ctx is checked before
// each request.
type Store struct {
	client *supa.Client
	log    *logger.Logger
}

var _ store.Store = (*Store)(nil)

func New(url, serviceKey string) (*Store, error) {
	client, err := supa.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Store{client: client, log: logger.New("SupabaseStore")}, nil
}

func (s *Store) from(ctx context.Context, table string) (*postgrest.QueryBuilder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.client.From(table), nil
}

// mapError turns PostgREST error messages, which carry the Postgres error
// code in parentheses, into store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "23505"):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case strings.Contains(msg, "23503"), strings.Contains(msg, "23514"), strings.Contains(msg, "23502"):
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	case strings.Contains(msg, "22P02"):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	return err
}

type configRow struct {
	Key   string          `json:"config_key"`
	Value json.RawMessage `json:"config_value"`
}

func (s *Store) ListConfig(ctx context.Context) ([]store.ConfigEntry, error) {
	q, err := s.from(ctx, tableConfig)
	if err != nil {
		return nil, err
	}
	var rows []configRow
	if _, err := q.Select("config_key,config_value", "", false).ExecuteTo(&rows); err != nil {
		return nil, mapError(err)
	}
	out := make([]store.ConfigEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.ConfigEntry{Key: r.Key, Value: string(r.Value)})
	}
	return out, nil
}

func (s *Store) CreateJob(ctx context.Context, job *store.CrawlJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	q, err := s.from(ctx, tableJobs)
	if err != nil {
		return err
	}
	row := map[string]any{
		"id":         job.ID,
		"job_type":   job.JobType,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	_, _, err = q.Insert(row, false, "", "minimal", "").Execute()
	return mapError(err)
}

func (s *Store) FinishJob(ctx context.Context, job *store.CrawlJob) error {
	q, err := s.from(ctx, tableJobs)
	if err != nil {
		return err
	}
	patch := map[string]any{
		"status":            job.Status,
		"completed_at":      job.CompletedAt,
		"items_found":       job.ItemsFound,
		"items_new":         job.ItemsNew,
		"prompts_extracted": job.PromptsExtracted,
	}
	var updated []store.CrawlJob
	if _, err := q.Update(patch, "representation", "").Eq("id", job.ID).ExecuteTo(&updated); err != nil {
		return mapError(err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("crawl job %s: %w", job.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*store.CrawlJob, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("crawl job %q: %w", id, store.ErrNotFound)
	}
	q, err := s.from(ctx, tableJobs)
	if err != nil {
		return nil, err
	}
	var jobs []store.CrawlJob
	if _, err := q.Select("*", "", false).Eq("id", id).Limit(1, "").ExecuteTo(&jobs); err != nil {
		return nil, mapError(err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("crawl job %s: %w", id, store.ErrNotFound)
	}
	return &jobs[0], nil
}

func (s *Store) ListJobs(ctx context.Context, limit int) ([]store.CrawlJob, error) {
	q, err := s.from(ctx, tableJobs)
	if err != nil {
		return nil, err
	}
	var jobs []store.CrawlJob
	_, err = q.Select("*", "", false).
		Order("started_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&jobs)
	return jobs, mapError(err)
}

func (s *Store) SourceExists(ctx context.Context, sourceType, sourceID string) (bool, error) {
	q, err := s.from(ctx, tableSources)
	if err != nil {
		return false, err
	}
	var rows []struct {
		ID string `json:"id"`
	}
	_, err = q.Select("id", "", false).
		Eq("source_type", sourceType).
		Eq("source_id", sourceID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return false, mapError(err)
	}
	return len(rows) > 0, nil
}

func (s *Store) InsertSource(ctx context.Context, src *store.PromptSource) error {
	if src.ID == "" {
		src.ID = uuid.New().String()
	}
	q, err := s.from(ctx, tableSources)
	if err != nil {
		return err
	}
	_, _, err = q.Insert(src, false, "", "minimal", "").Execute()
	return mapError(err)
}

func (s *Store) InsertPrompt(ctx context.Context, p *store.ExtractedPrompt) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	q, err := s.from(ctx, tablePrompts)
	if err != nil {
		return err
	}
	_, _, err = q.Insert(p, false, "", "minimal", "").Execute()
	return mapError(err)
}

func (s *Store) Ping(ctx context.Context) error {
	q, err := s.from(ctx, tableJobs)
	if err != nil {
		return err
	}
	_, _, err = q.Select("id", "", false).Limit(1, "").Execute()
	return mapError(err)
}

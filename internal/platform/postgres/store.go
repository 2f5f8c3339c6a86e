package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"promptcrawler/internal/store"
)

// Store talks to Postgres directly; used with STORE_DRIVER=postgres.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// ListConfig returns config_value as JSON text.
func (s *Store) ListConfig(ctx context.Context) ([]store.ConfigEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT config_key, config_value::text FROM crawl_config ORDER BY config_key`)
	if err != nil {
		return nil, mapError(err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.ConfigEntry, error) {
		var e store.ConfigEntry
		err := row.Scan(&e.Key, &e.Value)
		return e, err
	})
	return entries, mapError(err)
}

func (s *Store) CreateJob(ctx context.Context, job *store.CrawlJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO crawl_jobs (id, job_type, status, started_at) VALUES ($1, $2, $3, $4)`,
		job.ID, job.JobType, string(job.Status), job.StartedAt)
	return mapError(err)
}

func (s *Store) FinishJob(ctx context.Context, job *store.CrawlJob) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE crawl_jobs
		    SET status = $2, completed_at = $3, items_found = $4, items_new = $5, prompts_extracted = $6
		  WHERE id = $1`,
		job.ID, string(job.Status), job.CompletedAt, job.ItemsFound, job.ItemsNew, job.PromptsExtracted)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("crawl job %s: %w", job.ID, store.ErrNotFound)
	}
	return nil
}

const jobColumns = `id::text, job_type, status, started_at, completed_at, items_found, items_new, prompts_extracted`

func scanJob(row pgx.CollectableRow) (store.CrawlJob, error) {
	var j store.CrawlJob
	var status string
	err := row.Scan(&j.ID, &j.JobType, &status, &j.StartedAt, &j.CompletedAt, &j.ItemsFound, &j.ItemsNew, &j.PromptsExtracted)
	j.Status = store.JobStatus(status)
	return j, err
}

func (s *Store) GetJob(ctx context.Context, id string) (*store.CrawlJob, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("crawl job %q: %w", id, store.ErrNotFound)
	}
	rows, err := s.pool.Query(ctx, `SELECT `+jobColumns+` FROM crawl_jobs WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err)
	}
	j, err := pgx.CollectExactlyOneRow(rows, scanJob)
	if err != nil {
		return nil, mapError(err)
	}
	return &j, nil
}

func (s *Store) ListJobs(ctx context.Context, limit int) ([]store.CrawlJob, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+jobColumns+` FROM crawl_jobs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, mapError(err)
	}
	jobs, err := pgx.CollectRows(rows, scanJob)
	return jobs, mapError(err)
}

func (s *Store) SourceExists(ctx context.Context, sourceType, sourceID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM prompt_sources WHERE source_type = $1 AND source_id = $2)`,
		sourceType, sourceID).Scan(&exists)
	return exists, mapError(err)
}

func (s *Store) InsertSource(ctx context.Context, src *store.PromptSource) error {
	if src.ID == "" {
		src.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO prompt_sources (id, source_type, source_id, source_url, title, content, author, score, raw_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		src.ID, src.SourceType, src.SourceID, src.SourceURL, src.Title, src.Content, src.Author, src.Score, jsonArg(src.RawData))
	return mapError(err)
}

func (s *Store) InsertPrompt(ctx context.Context, p *store.ExtractedPrompt) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO extracted_prompts (id, source_id, prompt_title, prompt_content, suggested_category, quality_score, ai_analysis, language)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.SourceID, p.Title, p.Content, p.SuggestedCategory, p.QualityScore, jsonArg(p.AIAnalysis), p.Language)
	return mapError(err)
}

// jsonArg passes raw JSON as text so pgx does not re-encode it; an empty
// value becomes NULL.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

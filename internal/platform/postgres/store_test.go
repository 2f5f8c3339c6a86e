package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptcrawler/internal/store"
)

// newTestStore connects to TEST_DATABASE_URL, migrates it and empties the
// crawl tables. Tests are skipped without a database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, dsn))

	s, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = s.pool.Exec(ctx, `TRUNCATE extracted_prompts, prompt_sources, crawl_jobs, crawl_config`)
	require.NoError(t, err)
	return s
}

func TestStore_JobLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := &store.CrawlJob{JobType: "all", Status: store.JobStatusRunning, StartedAt: time.Now().UTC().Truncate(time.Microsecond)}
	require.NoError(t, s.CreateJob(ctx, job))
	require.NotEmpty(t, job.ID)

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, store.JobStatusRunning, got.Status)
	assert.Nil(t, got.CompletedAt)

	done := time.Now().UTC().Truncate(time.Microsecond)
	job.Status = store.JobStatusCompleted
	job.CompletedAt = &done
	job.ItemsFound, job.ItemsNew, job.PromptsExtracted = 7, 3, 5
	require.NoError(t, s.FinishJob(ctx, job))

	got, err = s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, store.JobStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, done.Equal(*got.CompletedAt))
	assert.Equal(t, 7, got.ItemsFound)
	assert.Equal(t, 3, got.ItemsNew)
	assert.Equal(t, 5, got.PromptsExtracted)

	jobs, err := s.ListJobs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	_, err = s.GetJob(ctx, uuid.New().String())
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetJob(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.FinishJob(ctx, &store.CrawlJob{ID: uuid.New().String(), Status: store.JobStatusFailed})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.CreateJob(ctx, &store.CrawlJob{ID: job.ID, JobType: "all", Status: store.JobStatusRunning, StartedAt: time.Now()})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestStore_SourcesAndPrompts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exists, err := s.SourceExists(ctx, "reddit", "abc")
	require.NoError(t, err)
	assert.False(t, exists)

	src := &store.PromptSource{SourceType: "reddit", SourceID: "abc", Content: "body", Score: 42, RawData: json.RawMessage(`{"id":"abc"}`)}
	require.NoError(t, s.InsertSource(ctx, src))

	exists, err = s.SourceExists(ctx, "reddit", "abc")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.InsertPrompt(ctx, &store.ExtractedPrompt{
		SourceID:     src.ID,
		Title:        "Editor",
		Content:      "Act as an editor.",
		QualityScore: 8.5,
		AIAnalysis:   json.RawMessage(`{"language":"en"}`),
		Language:     "en",
	}))

	err = s.InsertPrompt(ctx, &store.ExtractedPrompt{SourceID: uuid.New().String(), Content: "orphan", QualityScore: 9})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestStore_ListConfigReturnsJSONText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, `INSERT INTO crawl_config (config_key, config_value) VALUES ('reddit_subreddits', '["a","b"]'), ('min_reddit_score', '25')`)
	require.NoError(t, err)

	entries, err := s.ListConfig(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "min_reddit_score", entries[0].Key)
	assert.Equal(t, "25", entries[0].Value)
	assert.JSONEq(t, `["a","b"]`, entries[1].Value)
}

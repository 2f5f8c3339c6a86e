package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert collides with an existing key.
	ErrDuplicate = errors.New("duplicate")
	// ErrInvalidEntity is returned when a row violates a schema constraint,
	// e.g. a prompt referencing a missing source.
	ErrInvalidEntity = errors.New("invalid entity")
)

// Store is the relational surface the pipeline needs. Implementations live in
// platform/supabase, platform/postgres and Memory.
type Store interface {
	ListConfig(ctx context.Context) ([]ConfigEntry, error)

	CreateJob(ctx context.Context, job *CrawlJob) error
	// FinishJob writes the terminal status, completion time and counters in one update.
	FinishJob(ctx context.Context, job *CrawlJob) error
	GetJob(ctx context.Context, id string) (*CrawlJob, error)
	ListJobs(ctx context.Context, limit int) ([]CrawlJob, error)

	SourceExists(ctx context.Context, sourceType, sourceID string) (bool, error)
	InsertSource(ctx context.Context, src *PromptSource) error
	InsertPrompt(ctx context.Context, p *ExtractedPrompt) error

	Ping(ctx context.Context) error
}

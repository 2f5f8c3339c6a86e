package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and STORE_DRIVER=memory.
// Like the hosted tables it has no unique constraint on
// (source_type, source_id); callers rely on SourceExists.
type Memory struct {
	mu      sync.Mutex
	config  map[string]string
	jobs    map[string]CrawlJob
	sources []PromptSource
	prompts []ExtractedPrompt
}

func NewMemory() *Memory {
	return &Memory{
		config: make(map[string]string),
		jobs:   make(map[string]CrawlJob),
	}
}

var _ Store = (*Memory)(nil)

// SetConfig stores a raw crawl_config value.
func (m *Memory) SetConfig(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config[key] = value
}

func (m *Memory) ListConfig(_ context.Context) ([]ConfigEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ConfigEntry, 0, len(m.config))
	for k, v := range m.config {
		out = append(out, ConfigEntry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) CreateJob(_ context.Context, job *CrawlJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if _, exists := m.jobs[job.ID]; exists {
		return ErrDuplicate
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *Memory) FinishJob(_ context.Context, job *CrawlJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[job.ID]; !exists {
		return ErrNotFound
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *Memory) GetJob(_ context.Context, id string) (*CrawlJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &j, nil
}

// ListJobs returns the most recently started jobs first.
func (m *Memory) ListJobs(_ context.Context, limit int) ([]CrawlJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CrawlJob, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) SourceExists(_ context.Context, sourceType, sourceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if s.SourceType == sourceType && s.SourceID == sourceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) InsertSource(_ context.Context, src *PromptSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if src.ID == "" {
		src.ID = uuid.New().String()
	}
	m.sources = append(m.sources, *src)
	return nil
}

func (m *Memory) InsertPrompt(_ context.Context, p *ExtractedPrompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, s := range m.sources {
		if s.ID == p.SourceID {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	m.prompts = append(m.prompts, *p)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// Sources returns a copy of all stored prompt sources.
func (m *Memory) Sources() []PromptSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PromptSource(nil), m.sources...)
}

// Prompts returns a copy of all stored extracted prompts.
func (m *Memory) Prompts() []ExtractedPrompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExtractedPrompt(nil), m.prompts...)
}

// Jobs returns a copy of all crawl jobs, newest first.
func (m *Memory) Jobs() []CrawlJob {
	jobs, _ := m.ListJobs(context.Background(), 0)
	return jobs
}

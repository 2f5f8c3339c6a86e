package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"promptcrawler/internal/logger"
	"promptcrawler/internal/platform/redis"
)

const (
	TaskTypeCrawlRun = "crawl:run"

	defaultQueue = "default"
)

// CrawlRunPayload is the payload of a crawl:run task.
type CrawlRunPayload struct {
	JobType string `json:"job_type"`
}

// NewCrawlRunTask builds a crawl:run task. Crawl runs are never retried.
func NewCrawlRunTask(jobType string) (*asynq.Task, error) {
	b, err := json.Marshal(CrawlRunPayload{JobType: jobType})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCrawlRun, b, asynq.MaxRetry(0), asynq.Queue(defaultQueue)), nil
}

// ParseCrawlRunPayload decodes a crawl:run payload; an empty payload means
// the default job type.
func ParseCrawlRunPayload(t *asynq.Task) (CrawlRunPayload, error) {
	var p CrawlRunPayload
	if len(t.Payload()) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", TaskTypeCrawlRun, err)
	}
	return p, nil
}

type Client struct{ c *asynq.Client }

func New(r *redis.Service) *Client { return &Client{c: asynq.NewClient(r.AsynqRedisOpt())} }

func (t *Client) Enqueue(task *asynq.Task, queue string, maxRetries int) error {
	_, err := t.c.Enqueue(task, asynq.Queue(queue), asynq.MaxRetry(maxRetries))
	return err
}

// EnqueueCrawlRun queues one crawl run for the worker.
func (t *Client) EnqueueCrawlRun(jobType string) error {
	task, err := NewCrawlRunTask(jobType)
	if err != nil {
		return err
	}
	return t.Enqueue(task, defaultQueue, 0)
}

func (t *Client) Close() error { return t.c.Close() }

// Scheduler enqueues a crawl:run task on a cron spec.
type Scheduler struct {
	s   *asynq.Scheduler
	log *logger.Logger
}

func NewScheduler(r *redis.Service) *Scheduler {
	return &Scheduler{
		s:   asynq.NewScheduler(r.AsynqRedisOpt(), &asynq.SchedulerOpts{}),
		log: logger.New("Scheduler"),
	}
}

// RegisterCrawl schedules a full crawl ("all") on spec, e.g. "@every 6h" or "0 */6 * * *".
func (s *Scheduler) RegisterCrawl(spec string) (string, error) {
	task, err := NewCrawlRunTask("all")
	if err != nil {
		return "", err
	}
	id, err := s.s.Register(spec, task)
	if err != nil {
		return "", fmt.Errorf("register crawl schedule %q: %w", spec, err)
	}
	s.log.LogInfof("crawl scheduled with spec %q (entry %s)", spec, id)
	return id, nil
}

func (s *Scheduler) Start() error { return s.s.Start() }

func (s *Scheduler) Shutdown() { s.s.Shutdown() }

package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"promptcrawler/internal/platform/tasks"
)

// HandleRunTask executes a scheduled or enqueued crawl:run task.
func (s *Service) HandleRunTask(ctx context.Context, task *asynq.Task) error {
	payload, err := tasks.ParseCrawlRunPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	t, err := ParseType(payload.JobType)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if _, err := s.RunJob(ctx, t); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return nil
}

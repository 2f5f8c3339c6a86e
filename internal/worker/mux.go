package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"promptcrawler/internal/logger"
)

// Mux routes asynq tasks to handlers and logs every task outcome.
type Mux struct {
	mux *asynq.ServeMux
	log *logger.Logger
}

func NewMux() *Mux { return &Mux{mux: asynq.NewServeMux(), log: logger.New("Worker")} }

func (m *Mux) HandleFunc(t string, h func(ctx context.Context, task *asynq.Task) error) {
	m.mux.HandleFunc(t, func(ctx context.Context, task *asynq.Task) error {
		started := time.Now()
		err := h(ctx, task)
		if err != nil {
			m.log.Error().Err(err).Str("task", task.Type()).Dur("took", time.Since(started)).Msg("task failed")
			return err
		}
		m.log.Info().Str("task", task.Type()).Dur("took", time.Since(started)).Msg("task done")
		return nil
	})
}

func (m *Mux) Mux() *asynq.ServeMux { return m.mux }

package job

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"promptcrawler/internal/logger"
	"promptcrawler/internal/store"
	"promptcrawler/internal/utils/parser"
)

const maxListLimit = 100

// Enqueuer hands a run to the background worker.
type Enqueuer interface {
	EnqueueCrawlRun(jobType string) error
}

type Handler struct {
	svc   *Service
	queue Enqueuer
	log   *logger.Logger
}

// NewHandler builds the crawl handlers. queue may be nil, in which case
// async run requests are refused.
func NewHandler(svc *Service, queue Enqueuer) *Handler {
	return &Handler{svc: svc, queue: queue, log: logger.New("CrawlHandler")}
}

func failure(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Success: false, Error: msg})
}

// HandleRun runs one crawl synchronously and answers with its counters.
// With ?async=true the run is queued for the worker and answered with 202.
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	var req RunRequest
	if len(c.Body()) > 0 {
		// accepted with or without a JSON content type
		if err := c.App().Config().JSONDecoder(c.Body(), &req); err != nil {
			return failure(c, fiber.StatusBadRequest, "invalid body")
		}
	}
	t, err := ParseType(req.JobType)
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	if c.QueryBool("async") {
		return h.enqueue(c, t)
	}

	res, err := h.svc.RunJob(c.UserContext(), t)
	if err != nil {
		h.log.LogError("crawl run failed", err)
		return failure(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(RunResponse{Success: true, JobID: res.JobID, Stats: res.Stats})
}

func (h *Handler) enqueue(c *fiber.Ctx, t Type) error {
	if h.queue == nil {
		return failure(c, fiber.StatusServiceUnavailable, "async runs need a task queue")
	}
	if err := h.queue.EnqueueCrawlRun(string(t)); err != nil {
		h.log.LogError("enqueue crawl run", err)
		return failure(c, fiber.StatusInternalServerError, err.Error())
	}
	h.log.LogInfof("queued %s crawl run", t)
	return c.Status(fiber.StatusAccepted).JSON(QueuedResponse{Success: true, Queued: true, JobType: string(t)})
}

type listQuery struct {
	Limit int `form:"limit,default=20"`
}

func (h *Handler) HandleListJobs(c *fiber.Ctx) error {
	var q listQuery
	if err := parser.ParseQuery(c, &q); err != nil {
		return failure(c, fiber.StatusBadRequest, "invalid limit")
	}
	if q.Limit <= 0 || q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	jobs, err := h.svc.ListJobs(c.UserContext(), q.Limit)
	if err != nil {
		h.log.LogError("list crawl jobs", err)
		return failure(c, fiber.StatusInternalServerError, err.Error())
	}
	if jobs == nil {
		jobs = []store.CrawlJob{}
	}
	return c.JSON(fiber.Map{"success": true, "jobs": jobs})
}

func (h *Handler) HandleGetJob(c *fiber.Ctx) error {
	j, err := h.svc.GetJob(c.UserContext(), c.Params("jobId"))
	if errors.Is(err, store.ErrNotFound) {
		return failure(c, fiber.StatusNotFound, "not_found")
	}
	if err != nil {
		h.log.LogError("get crawl job", err)
		return failure(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "job": j})
}

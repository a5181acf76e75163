package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueOfertas = "jobs:ofertas"
	QueueEmail   = "jobs:email"

	JobOfertaFinal = "oferta_final"
	JobEmail       = "email"

	// MaxAttempts is how many times a job runs before it goes to the DLQ.
	MaxAttempts = 3

	popBackoff = time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	q Queue
}

func NewDispatcher(q Queue) *Dispatcher {
	return &Dispatcher{q: q}
}

// EnqueueOfertaFinal schedules the PDF + notification for an approved version.
func (d *Dispatcher) EnqueueOfertaFinal(ctx context.Context, payload OfertaFinalPayload) error {
	return d.enqueue(ctx, QueueOfertas, JobOfertaFinal, payload)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.q.Push(ctx, queue, encoded)
}

// Pool consumes both queues and routes each job to its handler by type.
type Pool struct {
	q        Queue
	handlers map[string]Handler
}

func NewPool(q Queue, handlers map[string]Handler) *Pool {
	return &Pool{q: q, handlers: handlers}
}

// Start launches numWorkers goroutines. Each one blocks on BRPOP, so idle
// workers cost no CPU. They stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{QueueOfertas, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Waits up to 5s then loops to check ctx
			queue, raw, err := p.q.Pop(ctx, 5*time.Second, queues...)
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					// Redis unreachable: BRPOP fails at once, so back off.
					log.Warn().Err(err).Int("worker", id).Msg("queue pop failed")
					select {
					case <-ctx.Done():
					case <-time.After(popBackoff):
					}
				}
				continue
			}
			p.process(ctx, queue, raw)
		}
	}
}

// process runs one job. Failures are pushed back with attempts+1 until
// MaxAttempts, then moved to the dead letter queue.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		p.deadLetter(ctx, queue, job, "no handler for job type")
		return
	}

	err := runHandler(ctx, h, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	log.Error().Err(err).
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Msg("job failed")

	if job.Attempts >= MaxAttempts {
		p.deadLetter(ctx, queue, job, err.Error())
		return
	}
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		return
	}
	if pErr := p.q.Push(ctx, queue, encoded); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("failed to requeue job")
	}
}

func (p *Pool) deadLetter(ctx context.Context, queue string, job Job, reason string) {
	if err := SendToDLQ(ctx, p.q, queue, job, reason); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("type", job.Type).Msg("job lost: dead letter failed")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Str("reason", reason).
		Msg("job moved to dead letter queue")
}

// runHandler turns a handler panic into an error so one bad payload cannot
// kill the worker goroutine.
func runHandler(ctx context.Context, h Handler, payload json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, payload)
}

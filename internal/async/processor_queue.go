package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PipelineQueue runs jobs through a Runner on a fixed pool of workers.
type PipelineQueue struct {
	runner  Runner
	sink    ResultSink
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// Enqueue holds mu for reading while it sends; Shutdown takes it for
	// writing before closing ch. closing wakes senders blocked on a full ch.
	mu        sync.RWMutex
	closed    bool
	closing   chan struct{}
	closeOnce sync.Once
}

type Option func(*PipelineQueue)

func WithWorkers(n int) Option {
	return func(q *PipelineQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *PipelineQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *PipelineQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewPipelineQueue starts the workers immediately. sink may be nil.
func NewPipelineQueue(runner Runner, sink ResultSink, logger *slog.Logger, opts ...Option) *PipelineQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &PipelineQueue{
		runner:  runner,
		sink:    sink,
		logger:  logger,
		closing: make(chan struct{}),
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *PipelineQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)
				for job := range q.ch {
					q.process(workerID, job)
				}
				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *PipelineQueue) process(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	start := time.Now()
	err := q.runner.Execute(ctx, job.Document)
	out := Outcome{Job: job, Err: err, Duration: time.Since(start), FinishedAt: time.Now().UTC()}

	if err != nil {
		q.logger.Error("processing failed", "worker_id", workerID, "doc_id", job.Document.ID, "error", err)
	} else {
		q.logger.Info("processed document", "worker_id", workerID, "doc_id", job.Document.ID, "duration_ms", out.Duration.Milliseconds())
	}
	if q.sink == nil {
		return
	}
	// the job context may already be spent; recording gets its own budget
	recCtx, recCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer recCancel()
	if err := q.sink.Record(recCtx, out); err != nil {
		q.logger.Error("recording outcome failed", "worker_id", workerID, "doc_id", job.Document.ID, "error", err)
	}
}

// Enqueue blocks while the buffer is full, until ctx is done or Shutdown
// starts.
func (q *PipelineQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "doc_id", job.Document.ID)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued document", "doc_id", job.Document.ID)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "doc_id", job.Document.ID)
	select {
	case q.ch <- job:
		return nil
	case <-q.closing:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to finish or ctx to end.
func (q *PipelineQueue) Shutdown(ctx context.Context) {
	q.closeOnce.Do(func() { close(q.closing) })
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

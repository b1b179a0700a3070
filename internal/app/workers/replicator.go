// Package workers содержит фоновый пул воркеров, который переносит изменения
// быстрого хранилища в основное.
package workers

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrQueueFull        = errors.New("replication queue is full")
	ErrReplicatorClosed = errors.New("replicator is closed")
	ErrDrainTimeout     = errors.New("replication drain timed out")
)

// Config задаёт размер пула, очередь и политику повторов.
type Config struct {
	Workers int
	// QueueSize - ёмкость очереди каждого воркера.
	QueueSize   int
	Retries     uint64
	TaskTimeout time.Duration
	// InitialBackoff - пауза перед первым повтором, далее растёт экспоненциально.
	InitialBackoff time.Duration
}

// Task - одна отложенная операция над основным хранилищем.
type Task struct {
	ID   string
	Name string

	run  func(ctx context.Context) error
	done chan struct{}
	err  error
}

// Done закрывается, когда задача завершилась (успешно или нет).
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err возвращает результат задачи. Имеет смысл только после закрытия Done.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Replicator - ограниченные очереди задач репликации с фиксированным числом воркеров.
// У каждого воркера своя очередь, задача попадает в очередь по хешу имени,
// поэтому задачи с одинаковым именем выполняются строго в порядке постановки.
// Каждая принятая задача учитывается до своего завершения, Drain дожидается всех.
type Replicator struct {
	cfg    Config
	logger *zap.SugaredLogger

	queues []chan *Task

	mu      sync.Mutex
	closed  bool
	pending int
	idle    chan struct{}

	workers sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewReplicator создаёт Replicator; воркеры запускаются методом Start.
func NewReplicator(cfg Config, logger *zap.SugaredLogger) *Replicator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 100 * time.Millisecond
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 10 * time.Second
	}
	queues := make([]chan *Task, cfg.Workers)
	for i := range queues {
		queues[i] = make(chan *Task, cfg.QueueSize)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Replicator{
		cfg:    cfg,
		logger: logger,
		queues: queues,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start запускает cfg.Workers воркеров, каждый из которых:
//  1. читает задачи из своей очереди до её закрытия;
//  2. выполняет задачу с таймаутом и повторами;
//  3. логирует результат и снимает задачу с учёта.
func (r *Replicator) Start() {
	for i := 0; i < r.cfg.Workers; i++ {
		r.workers.Add(1)
		go func(workerID int) {
			defer r.workers.Done()
			r.logger.Debugw("Replication worker started", "workerID", workerID)
			for task := range r.queues[workerID] {
				r.execute(workerID, task)
			}
			r.logger.Debugw("Replication worker stopping", "workerID", workerID)
		}(i)
	}
}

// Track ставит задачу в очередь и никогда не блокирует вызывающего.
// name служит ключом упорядочивания.
// Если очередь заполнена или Replicator закрыт, задача сразу завершается с ошибкой.
func (r *Replicator) Track(name string, fn func(ctx context.Context) error) *Task {
	task := &Task{
		ID:   uuid.NewString(),
		Name: name,
		run:  fn,
		done: make(chan struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.Warnw("Replication task rejected", "task", task.Name, "taskID", task.ID, "error", ErrReplicatorClosed)
		task.finish(ErrReplicatorClosed)
		return task
	}

	select {
	case r.queues[r.shard(name)] <- task:
		if r.pending == 0 {
			r.idle = make(chan struct{})
		}
		r.pending++
	default:
		r.logger.Errorw("Replication task dropped", "task", task.Name, "taskID", task.ID, "error", ErrQueueFull)
		task.finish(ErrQueueFull)
	}
	return task
}

// Pending возвращает число принятых, но ещё не завершённых задач.
func (r *Replicator) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Drain ждёт завершения всех учтённых задач. По истечении ctx оставшиеся задачи
// бросаются: Drain логирует их число и возвращает ErrDrainTimeout.
func (r *Replicator) Drain(ctx context.Context) error {
	r.mu.Lock()
	if r.pending == 0 {
		r.mu.Unlock()
		return nil
	}
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		r.logger.Infow("Replication drained")
		return nil
	case <-ctx.Done():
		r.logger.Errorw("Abandoning replication tasks", "pending", r.Pending(), "error", ctx.Err())
		return ErrDrainTimeout
	}
}

// Close перестаёт принимать задачи, прерывает выполняющиеся и ждёт остановки воркеров.
func (r *Replicator) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for _, q := range r.queues {
		close(q)
	}
	r.mu.Unlock()

	r.cancel()
	r.workers.Wait()
}

func (r *Replicator) execute(workerID int, task *Task) {
	defer r.untrack()

	attempt := 0
	operation := func() error {
		attempt++
		ctx, cancel := context.WithTimeout(r.ctx, r.cfg.TaskTimeout)
		defer cancel()
		return task.run(ctx)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.cfg.InitialBackoff
	policy.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(policy, r.cfg.Retries), r.ctx)

	err := backoff.Retry(operation, b)
	if err != nil {
		r.logger.Errorw("Replication task failed",
			"workerID", workerID, "task", task.Name, "taskID", task.ID, "attempts", attempt, "error", err)
	} else {
		r.logger.Debugw("Replication task completed",
			"workerID", workerID, "task", task.Name, "taskID", task.ID, "attempts", attempt)
	}
	task.finish(err)
}

func (r *Replicator) untrack() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending--
	if r.pending == 0 {
		close(r.idle)
	}
}

func (r *Replicator) shard(name string) int {
	h := fnv.New32a()
	h.Write([]byte(name))
	return int(h.Sum32() % uint32(len(r.queues)))
}

package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned by Do once the serializer has been shut down.
var ErrStopped = errors.New("serializer stopped")

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// Serializer routes work to a fixed set of workers using consistent hashing
// on a record key. Two jobs with the same key always land on the same worker
// and therefore never overlap; jobs on different shards run in parallel.
type Serializer struct {
	workers []chan job
	log     zerolog.Logger
	depth   func(worker string, n int)

	// mu orders enqueues before Stop closes stopped: once closed is set,
	// no job can reach a worker that has already drained.
	mu      sync.RWMutex
	closed  bool
	stopped chan struct{}
	wg      sync.WaitGroup
}

// Option customizes a Serializer.
type Option func(*Serializer)

// WithDepthObserver registers a callback fed with each worker's queue depth
// whenever a job is enqueued or finished.
func WithDepthObserver(fn func(worker string, n int)) Option {
	return func(s *Serializer) { s.depth = fn }
}

// NewSerializer creates a Serializer with numWorkers shards and starts them.
// If numWorkers <= 0, defaultWorkers is used.
func NewSerializer(numWorkers int, log zerolog.Logger, opts ...Option) *Serializer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	s := &Serializer{
		workers: make([]chan job, numWorkers),
		log:     log,
		depth:   func(string, int) {},
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.workers {
		s.workers[i] = make(chan job, channelBuffer)
		s.wg.Add(1)
		go s.runWorker(i, s.workers[i])
	}
	return s
}

// Do runs fn on the worker that owns key and waits for it to finish. If ctx
// ends before fn has started, fn is skipped and ctx.Err() is returned.
func (s *Serializer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	idx := s.shardIndex(key)

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStopped
	}
	select {
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	case s.workers[idx] <- j:
		s.mu.RUnlock()
		s.depth(strconv.Itoa(idx), len(s.workers[idx]))
	}

	// The worker drains its queue before exiting, so the result always arrives.
	return <-j.done
}

// Stop prevents new work and waits for queued jobs to complete.
func (s *Serializer) Stop() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.stopped)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// shardIndex maps a key deterministically to a worker index.
func (s *Serializer) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.workers)))
}

func (s *Serializer) runWorker(id int, ch chan job) {
	defer s.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case j := <-ch:
			s.run(id, j)
			s.depth(label, len(ch))
		case <-s.stopped:
			for {
				select {
				case j := <-ch:
					s.run(id, j)
				default:
					s.depth(label, 0)
					return
				}
			}
		}
	}
}

func (s *Serializer) run(id int, j job) {
	if err := j.ctx.Err(); err != nil {
		j.done <- err
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Int("worker_id", id).Msg("serialized job panicked")
			j.done <- errors.New("serialized job panicked")
		}
	}()
	j.done <- j.fn(j.ctx)
}

// Package coordinator serializes remediation work. File events are reduced
// to a deduplicated FIFO of paths that a single worker drains, so at most one
// remediation loop runs at any time.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/richhaase/hands/internal/comment"
	"github.com/richhaase/hands/internal/domain"
)

var (
	// ErrQueueFull is returned by HandleEvent when the pending queue is at capacity.
	ErrQueueFull = errors.New("pending queue is full")
	// ErrClosed is returned by HandleEvent after Run has returned.
	ErrClosed = errors.New("coordinator is closed")
)

// DefaultQueueSize bounds the pending queue when Config.QueueSize is unset.
const DefaultQueueSize = 1024

// LoopRunner resolves a single tagged comment.
type LoopRunner interface {
	Run(ctx context.Context, comment domain.TaggedComment) (*domain.LoopResult, error)
}

// ErrorHandler receives errors from the worker. The worker moves on to the
// next pending file afterwards.
type ErrorHandler func(path string, err error)

// Config controls coordinator behaviour.
type Config struct {
	Trigger   string
	QueueSize int
	OnError   ErrorHandler
	// OnResult is called by the worker after each successful loop.
	OnResult func(*domain.LoopResult)
	// OnIdle is called by the worker each time the queue drains.
	OnIdle func()
	// ReadFile defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// Coordinator owns the pending queue and the in-flight token.
type Coordinator struct {
	loop LoopRunner
	cfg  Config

	mu     sync.Mutex
	queue  []string
	queued map[string]struct{}
	closed bool
	// idle is closed while the queue is empty and the worker is not busy.
	idle       chan struct{}
	idleClosed bool

	inFlight atomic.Bool
	wake     chan struct{}
}

// New creates a coordinator. Call Run to start the worker.
func New(loop LoopRunner, cfg Config) *Coordinator {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Trigger == "" {
		cfg.Trigger = comment.DefaultTrigger
	}
	if cfg.ReadFile == nil {
		cfg.ReadFile = os.ReadFile
	}
	c := &Coordinator{
		loop:   loop,
		cfg:    cfg,
		queued: make(map[string]struct{}),
		idle:   make(chan struct{}),
		wake:   make(chan struct{}, 1),
	}
	c.signalIdleLocked()
	return c
}

// HandleEvent reacts to an add or change of path. Files without tagged
// comments are ignored; others are queued once until the worker picks them up.
func (c *Coordinator) HandleEvent(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := c.cfg.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(comment.Extract(path, string(content), c.cfg.Trigger)) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if _, ok := c.queued[path]; ok {
		return nil
	}
	if len(c.queue) >= c.cfg.QueueSize {
		return fmt.Errorf("%s: %w (%d)", path, ErrQueueFull, c.cfg.QueueSize)
	}

	c.queue = append(c.queue, path)
	c.queued[path] = struct{}{}
	if c.idleClosed {
		c.idle = make(chan struct{})
		c.idleClosed = false
	}

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run drains the pending queue until ctx is cancelled. It must be called
// once; HandleEvent returns ErrClosed after it returns.
func (c *Coordinator) Run(ctx context.Context) {
	defer c.close()

	for {
		path, ok := c.dequeue()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-c.wake:
				continue
			}
		}

		c.process(ctx, path)
		if c.finish() && c.cfg.OnIdle != nil && ctx.Err() == nil {
			c.cfg.OnIdle()
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// Pending returns a snapshot of the queued paths in processing order.
func (c *Coordinator) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.queue)
}

// InFlight reports whether a remediation loop is running.
func (c *Coordinator) InFlight() bool {
	return c.inFlight.Load()
}

// WaitIdle blocks until nothing is queued or running, or ctx is done.
func (c *Coordinator) WaitIdle(ctx context.Context) error {
	for {
		c.mu.Lock()
		idle := c.idle
		c.mu.Unlock()

		select {
		case <-idle:
			c.mu.Lock()
			done := c.idleClosed
			c.mu.Unlock()
			if done {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// process re-reads path so edits made while it waited are honored, then
// runs each comment in file order. The first failing comment ends the file.
func (c *Coordinator) process(ctx context.Context, path string) {
	content, err := c.cfg.ReadFile(path)
	if err != nil {
		c.reportError(path, fmt.Errorf("read %s: %w", path, err))
		return
	}

	for _, tc := range comment.Extract(path, string(content), c.cfg.Trigger) {
		if ctx.Err() != nil {
			return
		}

		c.inFlight.Store(true)
		result, err := c.loop.Run(ctx, tc)
		c.inFlight.Store(false)

		if err != nil {
			c.reportError(path, err)
			return
		}
		if c.cfg.OnResult != nil {
			c.cfg.OnResult(result)
		}
	}
}

func (c *Coordinator) reportError(path string, err error) {
	if c.cfg.OnError != nil {
		c.cfg.OnError(path, err)
	}
}

func (c *Coordinator) dequeue() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return "", false
	}
	path := c.queue[0]
	c.queue = c.queue[1:]
	delete(c.queued, path)
	return path, true
}

// finish reports whether the queue drained.
func (c *Coordinator) finish() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) > 0 {
		return false
	}
	c.signalIdleLocked()
	return true
}

func (c *Coordinator) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.queue = nil
	clear(c.queued)
	c.signalIdleLocked()
}

func (c *Coordinator) signalIdleLocked() {
	if !c.idleClosed {
		close(c.idle)
		c.idleClosed = true
	}
}

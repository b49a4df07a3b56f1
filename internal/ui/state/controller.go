package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/mumugogoing/meme-bot/internal/ui/handles"
	"github.com/mumugogoing/meme-bot/internal/ui/model"
	"github.com/mumugogoing/meme-bot/logging"
)

// Runner executes an effect and reports its outcome as a terminal event:
// CatalogLoaded or CatalogLoadFailed for FetchCatalog, RenderSucceeded or
// RenderFailed for RenderMeme. Run is called from its own goroutine.
type Runner interface {
	Run(ctx context.Context, eff model.Effect) model.Event
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, eff model.Effect) model.Event

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, eff model.Effect) model.Event {
	return f(ctx, eff)
}

// Observer receives controller counters. *metrics.Controller implements it.
type Observer interface {
	Event(name string, applied bool)
	HandleReleased()
}

type nopObserver struct{}

func (nopObserver) Event(string, bool) {}
func (nopObserver) HandleReleased()    {}

// Option configures a Controller.
type Option func(*Controller)

// WithReleaser sets where superseded result handles are released.
func WithReleaser(r handles.Releaser) Option {
	return func(c *Controller) {
		if r != nil {
			c.releaser = r
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the metrics sink.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// Controller owns the view state. Events are queued by Dispatch and applied
// one at a time, in arrival order, by a single loop goroutine; effects run on
// their own goroutines and feed their terminal event back through Dispatch.
// The controller is the only owner of the current result handle.
type Controller struct {
	runner   Runner
	releaser handles.Releaser
	logger   *logging.Logger
	observer Observer

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup

	qmu    sync.Mutex
	queue  []model.Event
	closed bool
	wake   chan struct{}
	done   chan struct{}
	exited chan struct{}

	mu          sync.RWMutex
	current     model.ViewState
	subscribers map[int]func(model.ViewState)
	nextSubID   int

	closeOnce sync.Once
}

// New starts a controller and immediately schedules the one catalog fetch.
// It does not wait for the fetch to complete.
func New(runner Runner, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		runner:      runner,
		releaser:    handles.Nop{},
		logger:      logging.Discard(),
		observer:    nopObserver{},
		ctx:         ctx,
		cancel:      cancel,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		exited:      make(chan struct{}),
		current:     Initial(),
		subscribers: make(map[int]func(model.ViewState)),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.loop()
	c.schedule(model.FetchCatalog{})
	return c
}

// Dispatch queues ev. It never blocks, so it is safe to call from browser
// event callbacks. Events dispatched after Close are dropped.
func (c *Controller) Dispatch(ev model.Event) {
	if ev == nil {
		return
	}
	c.qmu.Lock()
	if c.closed {
		c.qmu.Unlock()
		c.drop(ev)
		return
	}
	c.queue = append(c.queue, ev)
	c.qmu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// State returns the latest snapshot.
func (c *Controller) State() model.ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// Subscribe registers fn to be called with every new snapshot. fn runs on the
// controller goroutine and must not call Close. The returned func removes the
// subscription.
func (c *Controller) Subscribe(fn func(model.ViewState)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Close stops the loop, cancels running effects, waits for them and releases
// the current result handle. It is safe to call more than once.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.qmu.Lock()
		c.closed = true
		pending := c.queue
		c.queue = nil
		c.qmu.Unlock()

		close(c.done)
		<-c.exited
		c.cancel()
		c.tasks.Wait()

		for _, ev := range pending {
			c.drop(ev)
		}
		c.mu.Lock()
		handle := c.current.Submission.Handle
		c.mu.Unlock()
		if handle != "" {
			c.release(handle)
		}
	})
	return nil
}

func (c *Controller) loop() {
	defer close(c.exited)
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}
		// Drain everything queued so far before waiting again.
		for {
			ev, ok := c.pop()
			if !ok {
				break
			}
			c.apply(ev)
		}
	}
}

func (c *Controller) pop() (model.Event, bool) {
	c.qmu.Lock()
	defer c.qmu.Unlock()
	if c.closed || len(c.queue) == 0 {
		return nil, false
	}
	ev := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return ev, true
}

func (c *Controller) apply(ev model.Event) {
	prev := c.current
	next, effect := Update(prev, ev)
	applied := next.Revision != prev.Revision
	name := model.EventName(ev)
	c.observer.Event(name, applied)

	if !applied {
		c.logger.Debug("controller", "event ignored", map[string]any{
			"event":      name,
			"submission": prev.Submission.Status.String(),
		})
		for _, h := range Released(prev, next, ev) {
			c.release(h)
		}
		return
	}

	c.mu.Lock()
	c.current = next
	subs := make([]func(model.ViewState), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, h := range Released(prev, next, ev) {
		c.release(h)
	}
	if effect != nil {
		c.schedule(effect)
	}

	c.logger.Debug("controller", "event applied", map[string]any{
		"event":      name,
		"effect":     model.EffectName(effect),
		"revision":   next.Revision,
		"submission": next.Submission.Status.String(),
	})
	switch ev := ev.(type) {
	case model.RenderFailed:
		c.logger.Warn("controller", "render failed", map[string]any{"message": ev.Message})
	case model.CatalogLoadFailed:
		c.logger.Warn("controller", "catalog load failed", map[string]any{"message": ev.Message})
	}

	for _, fn := range subs {
		fn(next.Clone())
	}
}

func (c *Controller) schedule(effect model.Effect) {
	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		c.Dispatch(c.run(effect))
	}()
}

// run executes effect and guarantees a terminal event, even when the runner
// panics or returns nothing.
func (c *Controller) run(effect model.Effect) (ev model.Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("controller", "effect panicked", fmt.Errorf("%v", r), map[string]any{
				"effect": model.EffectName(effect),
			})
			ev = failure(effect, fmt.Sprintf("internal error: %v", r))
		}
	}()
	if c.runner == nil {
		return failure(effect, "no runner configured")
	}
	ev = c.runner.Run(c.ctx, effect)
	if ev == nil {
		ev = failure(effect, "no result")
	}
	return ev
}

func failure(effect model.Effect, message string) model.Event {
	if _, ok := effect.(model.FetchCatalog); ok {
		return model.CatalogLoadFailed{Message: message}
	}
	return model.RenderFailed{Message: message}
}

// drop discards an event that will never be applied, releasing the handle it
// carries.
func (c *Controller) drop(ev model.Event) {
	if rs, ok := ev.(model.RenderSucceeded); ok && rs.Handle != "" {
		c.release(rs.Handle)
	}
}

func (c *Controller) release(handle string) {
	c.releaser.Release(handle)
	c.observer.HandleReleased()
	c.logger.Debug("controller", "handle released", map[string]any{"handle": handle})
}

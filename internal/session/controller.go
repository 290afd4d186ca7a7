package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateActive
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	statusOK      = "OK"
	statusInvalid = "Shortcut list invalid"
	statusClosed  = "Session closed"
)

// Snapshot is a consistent copy of the controller state for the UI.
type Snapshot struct {
	State     State
	Status    string
	Requested []shortcut.Request
	Bound     []shortcut.Bound
	Active    []string
	Display   string
	Anomalies int

	CanStart           bool
	CanStop            bool
	Editable           bool
	ResponseVisible    bool
	ActivationsVisible bool
}

// Options configure a Controller.
type Options struct {
	Backoff Backoff

	// OnChange receives a snapshot after every transition and every
	// activation change. It is never called with a controller lock held.
	OnChange func(Snapshot)

	// Sleep waits between pump restarts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

type pumpHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Controller owns one shortcut session at a time: it starts it, runs the
// event pump while it is live and tears it down.
type Controller struct {
	backend  Backend
	backoff  Backoff
	onChange func(Snapshot)
	sleep    func(ctx context.Context, d time.Duration) error
	tracker  *Tracker

	// mu guards the lifecycle fields below. The tracker has its own lock.
	mu              sync.Mutex
	state           State
	status          string
	responseVisible bool
	session         Handle
	hasSession      bool
	requested       []shortcut.Request
	cancelStart     context.CancelFunc
	pump            *pumpHandle
}

// NewController creates an idle controller driving backend.
func NewController(backend Backend, opts Options) *Controller {
	if opts.Backoff.Initial <= 0 {
		opts.Backoff.Initial = DefaultBackoff.Initial
	}
	if opts.Backoff.Max < opts.Backoff.Initial {
		opts.Backoff.Max = DefaultBackoff.Max
		if opts.Backoff.Max < opts.Backoff.Initial {
			opts.Backoff.Max = opts.Backoff.Initial
		}
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepWithContext
	}
	return &Controller{
		backend:  backend,
		backoff:  opts.Backoff,
		onChange: opts.OnChange,
		sleep:    opts.Sleep,
		tracker:  NewTracker(),
	}
}

// Start parses text, creates a session and binds the shortcuts. On success
// the event pump runs in the background until Stop.
func (c *Controller) Start(ctx context.Context, text, parentWindow string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrSessionActive
	}
	requests, err := shortcut.Parse(text)
	if err != nil {
		c.status = statusInvalid
		c.responseVisible = true
		c.mu.Unlock()
		log.Printf("Controller: rejecting shortcut list %q: %v", text, err)
		c.notify()
		return &Error{Kind: KindInput, Op: "parse shortcuts", Err: err}
	}
	startCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.state = StateStarting
	c.cancelStart = cancel
	c.mu.Unlock()
	c.notify()

	log.Printf("Controller: creating session on %s backend", c.backend.Name())
	handle, err := c.backend.CreateSession(startCtx)
	if err != nil {
		kind, status := classifyBind(err)
		log.Printf("Warning: Controller: create session failed: %v", err)
		c.finishStart(status)
		return &Error{Kind: kind, Op: "create session", Err: err}
	}

	bound, err := c.backend.BindShortcuts(startCtx, handle, requests, parentWindow)
	if err == nil && startCtx.Err() != nil {
		err = startCtx.Err()
	}
	if err != nil {
		kind, status := classifyBind(err)
		log.Printf("Warning: Controller: bind shortcuts failed: %v", err)
		c.closeBestEffort(context.WithoutCancel(ctx), handle)
		c.finishStart(status)
		return &Error{Kind: kind, Op: "bind shortcuts", Err: err}
	}

	log.Printf("Controller: session %s bound %d of %d requested shortcuts", handle, len(bound), len(requests))
	c.tracker.Reset(bound)

	pumpCtx, pumpCancel := context.WithCancel(context.WithoutCancel(ctx))
	p := &pumpHandle{cancel: pumpCancel, done: make(chan struct{})}

	c.mu.Lock()
	if startCtx.Err() != nil {
		c.mu.Unlock()
		pumpCancel()
		log.Printf("Controller: start of session %s was cancelled", handle)
		c.closeBestEffort(context.WithoutCancel(ctx), handle)
		c.tracker.Reset(nil)
		c.finishStart(startCtx.Err().Error())
		return &Error{Kind: KindBind, Op: "bind shortcuts", Err: startCtx.Err()}
	}
	c.state = StateActive
	c.status = statusOK
	c.responseVisible = true
	c.session = handle
	c.hasSession = true
	c.requested = requests
	c.cancelStart = nil
	c.pump = p
	c.mu.Unlock()

	go c.supervise(pumpCtx, handle, p)
	c.notify()
	return nil
}

// Stop cancels the event pump, waits for it to exit and closes the session.
// Without a session it does nothing. Close failures are only logged.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateStarting:
		cancel := c.cancelStart
		c.mu.Unlock()
		if cancel != nil {
			log.Println("Controller: stop requested while starting, cancelling start")
			cancel()
		}
		return nil
	case StateActive:
	default:
		c.mu.Unlock()
		return nil
	}
	handle, p := c.session, c.pump
	c.state = StateStopping
	c.mu.Unlock()
	c.notify()

	p.cancel()
	<-p.done

	c.closeBestEffort(ctx, handle)
	c.tracker.Reset(nil)

	c.mu.Lock()
	c.clearSessionLocked()
	c.status = ""
	c.responseVisible = false
	c.mu.Unlock()

	log.Printf("Controller: session %s stopped", handle)
	c.notify()
	return nil
}

// Wait blocks until the current event pump, if any, has exited.
func (c *Controller) Wait() {
	c.mu.Lock()
	p := c.pump
	c.mu.Unlock()
	if p != nil {
		<-p.done
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	state, status, responseVisible := c.state, c.status, c.responseVisible
	requested := append([]shortcut.Request(nil), c.requested...)
	c.mu.Unlock()

	return Snapshot{
		State:              state,
		Status:             status,
		Requested:          requested,
		Bound:              c.tracker.Bound(),
		Active:             c.tracker.Active(),
		Display:            c.tracker.Display(),
		Anomalies:          c.tracker.Anomalies(),
		CanStart:           state == StateIdle,
		CanStop:            state == StateActive,
		Editable:           state == StateIdle,
		ResponseVisible:    responseVisible,
		ActivationsVisible: state == StateActive,
	}
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.Snapshot())
	}
}

func (c *Controller) finishStart(status string) {
	c.mu.Lock()
	c.state = StateIdle
	c.status = status
	c.responseVisible = true
	c.cancelStart = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) clearSessionLocked() {
	c.state = StateIdle
	c.session = ""
	c.hasSession = false
	c.requested = nil
	c.pump = nil
}

func (c *Controller) closeBestEffort(ctx context.Context, handle Handle) {
	if err := c.backend.CloseSession(ctx, handle); err != nil {
		log.Printf("Warning: Controller: %v", &Error{Kind: KindClose, Op: "close session " + string(handle), Err: err})
	}
}

// holds reports whether p still belongs to the live session.
func (c *Controller) holds(p *pumpHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasSession && c.pump == p
}

// sessionEnded drops a session the backend closed on its own. A concurrent
// Stop wins.
func (c *Controller) sessionEnded(p *pumpHandle) {
	c.mu.Lock()
	if c.pump != p || c.state != StateActive {
		c.mu.Unlock()
		return
	}
	handle := c.session
	c.clearSessionLocked()
	c.status = statusClosed
	c.mu.Unlock()

	c.tracker.Reset(nil)
	log.Printf("Controller: session %s was closed by the backend", handle)
	c.notify()
}

// supervise keeps one event pump running for as long as the session is held,
// restarting it with a bounded backoff when it exits on its own.
func (c *Controller) supervise(ctx context.Context, handle Handle, p *pumpHandle) {
	defer close(p.done)

	closed := c.watchClosed(ctx, handle)
	var delay time.Duration
	for {
		if !c.holds(p) {
			return
		}

		err := c.runPump(ctx, handle, closed)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, errSessionClosed) {
			c.sessionEnded(p)
			return
		}

		if IsKind(err, KindSubscription) {
			delay = c.backoff.next(delay)
		} else {
			delay = c.backoff.next(0)
		}
		log.Printf("Warning: Controller: event pump exited (%v), restarting in %s", err, delay)
		if err := c.sleep(ctx, delay); err != nil {
			return
		}
	}
}

func (c *Controller) watchClosed(ctx context.Context, handle Handle) <-chan struct{} {
	notifier, ok := c.backend.(SessionCloseNotifier)
	if !ok {
		return nil
	}
	closed, err := notifier.SessionClosed(ctx, handle)
	if err != nil {
		log.Printf("Warning: Controller: cannot watch session %s for closure: %v", handle, err)
		return nil
	}
	return closed
}

// runPump subscribes to the three streams and consumes them until ctx is
// done, a subscription fails, every stream ends or the session closes.
func (c *Controller) runPump(ctx context.Context, handle Handle, closed <-chan struct{}) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	activated, err := c.backend.SubscribeActivated(ctx, handle)
	if err != nil {
		return &Error{Kind: KindSubscription, Op: "subscribe activated", Err: err}
	}
	deactivated, err := c.backend.SubscribeDeactivated(ctx, handle)
	if err != nil {
		return &Error{Kind: KindSubscription, Op: "subscribe deactivated", Err: err}
	}
	changed, err := c.backend.SubscribeShortcutsChanged(ctx, handle)
	if err != nil {
		return &Error{Kind: KindSubscription, Op: "subscribe shortcuts changed", Err: err}
	}

	events := mergeEvents(ctx, activated, deactivated, changed)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-closed:
			return errSessionClosed
		case ev, ok := <-events:
			if !ok {
				return errStreamsEnded
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.handleEvent(ev)
		}
	}
}

func (c *Controller) handleEvent(ev Event) {
	switch ev.Kind {
	case EventActivated:
		display := c.tracker.Activate(ev.ShortcutID)
		log.Printf("Controller: shortcut '%s' activated: %s", ev.ShortcutID, display)
	case EventDeactivated:
		display := c.tracker.Deactivate(ev.ShortcutID)
		log.Printf("Controller: shortcut '%s' deactivated: %s", ev.ShortcutID, display)
	case EventShortcutsChanged:
		log.Printf("Controller: backend reported shortcuts changed: %v", ev.Shortcuts)
		return
	default:
		return
	}
	c.notify()
}

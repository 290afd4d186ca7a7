package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

const fakeHandle Handle = "/org/freedesktop/portal/desktop/session/1_42/test"

type fakeBackend struct {
	mu              sync.Mutex
	createErr       error
	bindErr         error
	bindBlock       bool
	bound           []shortcut.Bound
	closeErr        error
	failSubs        int
	creates         int
	binds           int
	closes          int
	subscribes      int
	requests        []shortcut.Request
	parentWindow    string
	subCtx          context.Context
	pumpLiveAtClose bool

	act   chan Activated
	deact chan Deactivated
	chg   chan ShortcutsChanged
}

func newFakeBackend(bound ...shortcut.Bound) *fakeBackend {
	return &fakeBackend{
		bound: bound,
		act:   make(chan Activated),
		deact: make(chan Deactivated),
		chg:   make(chan ShortcutsChanged),
	}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) CreateSession(ctx context.Context) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return "", f.createErr
	}
	return fakeHandle, nil
}

func (f *fakeBackend) BindShortcuts(ctx context.Context, h Handle, requests []shortcut.Request, parentWindow string) ([]shortcut.Bound, error) {
	f.mu.Lock()
	f.binds++
	f.requests = requests
	f.parentWindow = parentWindow
	block, err, bound := f.bindBlock, f.bindErr, f.bound
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return bound, nil
}

func (f *fakeBackend) SubscribeActivated(ctx context.Context, h Handle) (<-chan Activated, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	if f.failSubs > 0 {
		f.failSubs--
		return nil, errors.New("match rule rejected")
	}
	f.subCtx = ctx
	return f.act, nil
}

func (f *fakeBackend) SubscribeDeactivated(ctx context.Context, h Handle) (<-chan Deactivated, error) {
	return f.deact, nil
}

func (f *fakeBackend) SubscribeShortcutsChanged(ctx context.Context, h Handle) (<-chan ShortcutsChanged, error) {
	return f.chg, nil
}

func (f *fakeBackend) CloseSession(ctx context.Context, h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.pumpLiveAtClose = f.subCtx != nil && f.subCtx.Err() == nil
	return f.closeErr
}

func (f *fakeBackend) counts() (creates, binds, closes, subscribes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.binds, f.closes, f.subscribes
}

// closingBackend can also end the session on its own.
type closingBackend struct {
	*fakeBackend
	closed chan struct{}
}

func (c *closingBackend) SessionClosed(ctx context.Context, h Handle) (<-chan struct{}, error) {
	return c.closed, nil
}

type recorder struct {
	ch chan Snapshot
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Snapshot, 1024)}
}

func (r *recorder) onChange(s Snapshot) {
	r.ch <- s
}

func (r *recorder) waitFor(t *testing.T, desc string, match func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-r.ch:
			if match(s) {
				return s
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", desc)
			return Snapshot{}
		}
	}
}

func noSleep(calls *[]time.Duration, mu *sync.Mutex) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		*calls = append(*calls, d)
		mu.Unlock()
		return ctx.Err()
	}
}

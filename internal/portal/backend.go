package portal

import (
	"context"

	"github.com/godbus/dbus/v5"

	"github.com/TanaroSch/portal-shortcuts/internal/session"
	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

// Backend drives the session controller through the GlobalShortcuts portal.
type Backend struct {
	client *Client
}

// NewBackend wraps a connected client.
func NewBackend(client *Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) Name() string { return "XDG Desktop Portal" }

func (b *Backend) CreateSession(ctx context.Context) (session.Handle, error) {
	path, err := b.client.CreateSession(ctx)
	if err != nil {
		return "", err
	}
	return session.Handle(path), nil
}

func (b *Backend) BindShortcuts(ctx context.Context, h session.Handle, requests []shortcut.Request, parentWindow string) ([]shortcut.Bound, error) {
	return b.client.BindShortcuts(ctx, dbus.ObjectPath(h), requests, parentWindow)
}

func (b *Backend) SubscribeActivated(ctx context.Context, h session.Handle) (<-chan session.Activated, error) {
	return b.client.SubscribeActivated(ctx, dbus.ObjectPath(h))
}

func (b *Backend) SubscribeDeactivated(ctx context.Context, h session.Handle) (<-chan session.Deactivated, error) {
	return b.client.SubscribeDeactivated(ctx, dbus.ObjectPath(h))
}

func (b *Backend) SubscribeShortcutsChanged(ctx context.Context, h session.Handle) (<-chan session.ShortcutsChanged, error) {
	return b.client.SubscribeShortcutsChanged(ctx, dbus.ObjectPath(h))
}

func (b *Backend) SessionClosed(ctx context.Context, h session.Handle) (<-chan struct{}, error) {
	return b.client.SubscribeClosed(ctx, dbus.ObjectPath(h))
}

func (b *Backend) CloseSession(ctx context.Context, h session.Handle) error {
	return b.client.CloseSession(ctx, dbus.ObjectPath(h))
}

// Close releases the bus connection.
func (b *Backend) Close() error {
	return b.client.Close()
}

var (
	_ session.Backend              = (*Backend)(nil)
	_ session.SessionCloseNotifier = (*Backend)(nil)
)

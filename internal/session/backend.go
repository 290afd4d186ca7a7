package session

import (
	"context"
	"errors"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

var (
	// ErrCancelled is returned by a backend when the user dismissed the
	// permission dialog.
	ErrCancelled = errors.New("request cancelled by user")

	// ErrOtherResponse is returned by a backend when the request was refused
	// for any reason other than user cancellation.
	ErrOtherResponse = errors.New("request ended with other response error")
)

// Handle identifies a backend session. Only the controller holds one.
type Handle string

// Activated reports that a bound shortcut's trigger went down.
type Activated struct {
	Session    Handle
	ShortcutID string
	Timestamp  uint64
}

// Deactivated reports that a bound shortcut's trigger was released.
type Deactivated struct {
	Session    Handle
	ShortcutID string
	Timestamp  uint64
}

// ShortcutsChanged reports that the backend changed the bound set.
type ShortcutsChanged struct {
	Session   Handle
	Shortcuts []shortcut.Bound
}

// Backend is the shortcut provider the controller drives. Subscription
// channels are closed by the backend once the passed context is done or its
// connection goes away.
type Backend interface {
	CreateSession(ctx context.Context) (Handle, error)

	// BindShortcuts returns ErrCancelled or ErrOtherResponse (possibly
	// wrapped) when the request was answered but refused.
	BindShortcuts(ctx context.Context, h Handle, requests []shortcut.Request, parentWindow string) ([]shortcut.Bound, error)

	SubscribeActivated(ctx context.Context, h Handle) (<-chan Activated, error)
	SubscribeDeactivated(ctx context.Context, h Handle) (<-chan Deactivated, error)
	SubscribeShortcutsChanged(ctx context.Context, h Handle) (<-chan ShortcutsChanged, error)

	CloseSession(ctx context.Context, h Handle) error

	// Name returns a human-readable name for this backend (for logging).
	Name() string
}

// SessionCloseNotifier is implemented by backends that can end a session on
// their own. The returned channel is closed or receives once the session is
// gone.
type SessionCloseNotifier interface {
	SessionClosed(ctx context.Context, h Handle) (<-chan struct{}, error)
}

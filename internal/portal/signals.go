package portal

import (
	"context"
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"

	"github.com/TanaroSch/portal-shortcuts/internal/session"
)

const (
	activatedSignal        = portalGlobalShortcutsInterface + ".Activated"
	deactivatedSignal      = portalGlobalShortcutsInterface + ".Deactivated"
	shortcutsChangedSignal = portalGlobalShortcutsInterface + ".ShortcutsChanged"
	sessionClosedSignal    = portalSessionInterface + ".Closed"
)

// subscribe installs a match rule and forwards every signal decode accepts.
// The returned channel is closed when ctx is done or the connection drops.
func subscribe[T any](ctx context.Context, conn *dbus.Conn, match []dbus.MatchOption, decode func(*dbus.Signal) (T, bool)) (<-chan T, error) {
	if conn == nil {
		return nil, ErrNotConnected
	}
	if err := conn.AddMatchSignal(match...); err != nil {
		return nil, fmt.Errorf("portal signal match failed: %w", err)
	}

	signals := make(chan *dbus.Signal, 32)
	conn.Signal(signals)

	out := make(chan T)
	go func() {
		defer close(out)
		defer conn.RemoveSignal(signals)
		defer func() { _ = conn.RemoveMatchSignal(match...) }()

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				v, ok := decode(sig)
				if !ok {
					continue
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func shortcutsMatch(member string) []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(portalObjectPath),
		dbus.WithMatchInterface(portalGlobalShortcutsInterface),
		dbus.WithMatchMember(member),
	}
}

// SubscribeActivated streams Activated signals for one session.
func (c *Client) SubscribeActivated(ctx context.Context, sess dbus.ObjectPath) (<-chan session.Activated, error) {
	return subscribe(ctx, c.conn, shortcutsMatch("Activated"), decodeActivated(sess))
}

// SubscribeDeactivated streams Deactivated signals for one session.
func (c *Client) SubscribeDeactivated(ctx context.Context, sess dbus.ObjectPath) (<-chan session.Deactivated, error) {
	return subscribe(ctx, c.conn, shortcutsMatch("Deactivated"), decodeDeactivated(sess))
}

// SubscribeShortcutsChanged streams ShortcutsChanged signals for one session.
func (c *Client) SubscribeShortcutsChanged(ctx context.Context, sess dbus.ObjectPath) (<-chan session.ShortcutsChanged, error) {
	return subscribe(ctx, c.conn, shortcutsMatch("ShortcutsChanged"), decodeShortcutsChanged(sess))
}

// SubscribeClosed delivers once the portal closes the session.
func (c *Client) SubscribeClosed(ctx context.Context, sess dbus.ObjectPath) (<-chan struct{}, error) {
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(sess),
		dbus.WithMatchInterface(portalSessionInterface),
		dbus.WithMatchMember("Closed"),
	}
	return subscribe(ctx, c.conn, match, decodeClosed(sess))
}

// keyEvent reads the (o s t a{sv}) body shared by Activated and Deactivated.
func keyEvent(sig *dbus.Signal, name string, sess dbus.ObjectPath) (string, uint64, bool) {
	if sig == nil || sig.Name != name || len(sig.Body) < 3 {
		return "", 0, false
	}
	path, ok := sig.Body[0].(dbus.ObjectPath)
	if !ok || path != sess {
		return "", 0, false
	}
	id, ok := sig.Body[1].(string)
	if !ok {
		log.Printf("Portal: %s shortcut id has unexpected type %T", name, sig.Body[1])
		return "", 0, false
	}
	ts, _ := sig.Body[2].(uint64)
	return id, ts, true
}

func decodeActivated(sess dbus.ObjectPath) func(*dbus.Signal) (session.Activated, bool) {
	return func(sig *dbus.Signal) (session.Activated, bool) {
		id, ts, ok := keyEvent(sig, activatedSignal, sess)
		if !ok {
			return session.Activated{}, false
		}
		return session.Activated{Session: session.Handle(sess), ShortcutID: id, Timestamp: ts}, true
	}
}

func decodeDeactivated(sess dbus.ObjectPath) func(*dbus.Signal) (session.Deactivated, bool) {
	return func(sig *dbus.Signal) (session.Deactivated, bool) {
		id, ts, ok := keyEvent(sig, deactivatedSignal, sess)
		if !ok {
			return session.Deactivated{}, false
		}
		return session.Deactivated{Session: session.Handle(sess), ShortcutID: id, Timestamp: ts}, true
	}
}

func decodeShortcutsChanged(sess dbus.ObjectPath) func(*dbus.Signal) (session.ShortcutsChanged, bool) {
	return func(sig *dbus.Signal) (session.ShortcutsChanged, bool) {
		if sig == nil || sig.Name != shortcutsChangedSignal || len(sig.Body) < 2 {
			return session.ShortcutsChanged{}, false
		}
		if path, ok := sig.Body[0].(dbus.ObjectPath); !ok || path != sess {
			return session.ShortcutsChanged{}, false
		}
		bound, err := decodeShortcuts(sig.Body[1])
		if err != nil {
			log.Printf("Portal: ShortcutsChanged: %v", err)
			return session.ShortcutsChanged{}, false
		}
		return session.ShortcutsChanged{Session: session.Handle(sess), Shortcuts: bound}, true
	}
}

func decodeClosed(sess dbus.ObjectPath) func(*dbus.Signal) (struct{}, bool) {
	return func(sig *dbus.Signal) (struct{}, bool) {
		if sig == nil || sig.Name != sessionClosedSignal || sig.Path != sess {
			return struct{}{}, false
		}
		return struct{}{}, true
	}
}

package portal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"github.com/TanaroSch/portal-shortcuts/internal/session"
)

const (
	portalService                  = "org.freedesktop.portal.Desktop"
	portalObjectPath               = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	portalGlobalShortcutsInterface = "org.freedesktop.portal.GlobalShortcuts"
	portalRequestInterface         = "org.freedesktop.portal.Request"
	portalSessionInterface         = "org.freedesktop.portal.Session"
	portalResponseSignal           = portalRequestInterface + ".Response"
	portalRequestPathPrefix        = "/org/freedesktop/portal/desktop/request/"
	portalSessionPathPrefix        = "/org/freedesktop/portal/desktop/session/"
	portalTokenPrefix              = "portalshortcuts"
)

// ErrNotConnected is returned when the client has no bus connection.
var ErrNotConnected = errors.New("portal client not connected")

// Client talks to the GlobalShortcuts portal on the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Connect opens a private session bus connection.
func Connect() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *dbus.Conn) *Client {
	return &Client{conn: conn, obj: conn.Object(portalService, portalObjectPath)}
}

// Close closes the bus connection. Every open subscription ends.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Version returns the GlobalShortcuts interface version, failing when the
// portal does not provide the interface.
func (c *Client) Version(ctx context.Context) (uint32, error) {
	if c == nil || c.conn == nil {
		return 0, ErrNotConnected
	}
	var v dbus.Variant
	err := c.obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0,
		portalGlobalShortcutsInterface, "version").Store(&v)
	if err != nil {
		return 0, fmt.Errorf("portal GlobalShortcuts version: %w", err)
	}
	version, ok := v.Value().(uint32)
	if !ok {
		return 0, fmt.Errorf("portal GlobalShortcuts version has unexpected type %T", v.Value())
	}
	return version, nil
}

// request calls a portal method that answers through a Request object and
// waits for its Response signal. The match is installed on the predicted
// request path before the call so a fast response cannot be missed.
func (c *Client) request(ctx context.Context, method, token string, args ...interface{}) (map[string]dbus.Variant, error) {
	if c == nil || c.conn == nil {
		return nil, ErrNotConnected
	}

	signals := make(chan *dbus.Signal, 8)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	expected := requestPath(c.uniqueName(), token)
	if err := c.addResponseMatch(expected); err != nil {
		return nil, err
	}
	defer c.removeResponseMatch(expected)

	var handle dbus.ObjectPath
	call := c.obj.CallWithContext(ctx, portalGlobalShortcutsInterface+"."+method, 0, args...)
	if call.Err != nil {
		return nil, fmt.Errorf("portal %s call failed: %w", method, call.Err)
	}
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("portal %s decode failed: %w", method, err)
	}
	if handle != expected {
		log.Printf("Portal: %s request handle %s differs from predicted %s", method, handle, expected)
		if err := c.addResponseMatch(handle); err != nil {
			return nil, err
		}
		defer c.removeResponseMatch(handle)
	}

	for {
		select {
		case <-ctx.Done():
			c.closeRequest(handle)
			return nil, fmt.Errorf("portal %s: %w", method, ctx.Err())
		case sig, ok := <-signals:
			if !ok {
				return nil, fmt.Errorf("portal %s: connection closed while waiting for response", method)
			}
			if sig == nil || sig.Name != portalResponseSignal || sig.Path != handle {
				continue
			}
			code, results, err := decodeResponse(sig)
			if err != nil {
				return nil, fmt.Errorf("portal %s: %w", method, err)
			}
			if err := responseError(code); err != nil {
				return nil, fmt.Errorf("portal %s denied (response=%d): %w", method, code, err)
			}
			return results, nil
		}
	}
}

func (c *Client) addResponseMatch(path dbus.ObjectPath) error {
	err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(portalRequestInterface),
		dbus.WithMatchMember("Response"),
	)
	if err != nil {
		return fmt.Errorf("portal response match failed: %w", err)
	}
	return nil
}

func (c *Client) removeResponseMatch(path dbus.ObjectPath) {
	_ = c.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(portalRequestInterface),
		dbus.WithMatchMember("Response"),
	)
}

// closeRequest dismisses a pending dialog. Errors are ignored, the request
// may already be gone.
func (c *Client) closeRequest(handle dbus.ObjectPath) {
	if handle == "" {
		return
	}
	call := c.conn.Object(portalService, handle).Call(portalRequestInterface+".Close", 0)
	if call.Err != nil {
		log.Printf("Portal: closing request %s: %v", handle, call.Err)
	}
}

func (c *Client) uniqueName() string {
	names := c.conn.Names()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func decodeResponse(sig *dbus.Signal) (uint32, map[string]dbus.Variant, error) {
	if len(sig.Body) < 2 {
		return 0, nil, fmt.Errorf("response malformed")
	}
	code, ok := sig.Body[0].(uint32)
	if !ok {
		return 0, nil, fmt.Errorf("response code type is %T", sig.Body[0])
	}
	results, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return code, map[string]dbus.Variant{}, nil
	}
	return code, results, nil
}

// responseError maps a Request.Response code onto the session errors.
func responseError(code uint32) error {
	switch code {
	case 0:
		return nil
	case 1:
		return session.ErrCancelled
	case 2:
		return session.ErrOtherResponse
	default:
		return fmt.Errorf("%w: unexpected response code %d", session.ErrOtherResponse, code)
	}
}

// newToken returns a handle token; tokens must be valid object path elements.
func newToken(kind string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return portalTokenPrefix + "_" + kind + "_" + id
}

// senderElement turns ":1.42" into "1_42" as the portal does for request and
// session paths.
func senderElement(uniqueName string) string {
	return strings.ReplaceAll(strings.TrimPrefix(uniqueName, ":"), ".", "_")
}

func requestPath(uniqueName, token string) dbus.ObjectPath {
	return dbus.ObjectPath(portalRequestPathPrefix + senderElement(uniqueName) + "/" + token)
}

func sessionPath(uniqueName, token string) dbus.ObjectPath {
	return dbus.ObjectPath(portalSessionPathPrefix + senderElement(uniqueName) + "/" + token)
}

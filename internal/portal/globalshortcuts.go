package portal

import (
	"context"
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

type shortcutSpec struct {
	ID      string
	Details map[string]dbus.Variant
}

// CreateSession opens a GlobalShortcuts session and returns its object path.
func (c *Client) CreateSession(ctx context.Context) (dbus.ObjectPath, error) {
	handleToken := newToken("request")
	sessionToken := newToken("session")
	options := map[string]dbus.Variant{
		"handle_token":         dbus.MakeVariant(handleToken),
		"session_handle_token": dbus.MakeVariant(sessionToken),
	}

	results, err := c.request(ctx, "CreateSession", handleToken, options)
	if err != nil {
		return "", err
	}

	raw, ok := results["session_handle"]
	if !ok {
		return "", fmt.Errorf("portal CreateSession response missing session_handle")
	}
	path, err := sessionHandle(raw)
	if err != nil {
		return "", err
	}
	if predicted := sessionPath(c.uniqueName(), sessionToken); path != predicted {
		log.Printf("Portal: session handle %s differs from predicted %s", path, predicted)
	}
	return path, nil
}

// BindShortcuts asks the portal to bind requests to the session. The returned
// list is what the portal granted, which may be a subset of the request.
func (c *Client) BindShortcuts(ctx context.Context, session dbus.ObjectPath, requests []shortcut.Request, parentWindow string) ([]shortcut.Bound, error) {
	token := newToken("bind")
	options := map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(token),
	}

	results, err := c.request(ctx, "BindShortcuts", token, session, encodeRequests(requests), parentWindow, options)
	if err != nil {
		return nil, err
	}

	raw, ok := results["shortcuts"]
	if !ok {
		return []shortcut.Bound{}, nil
	}
	return decodeShortcuts(raw.Value())
}

// CloseSession closes the session object. The portal emits no Response.
func (c *Client) CloseSession(ctx context.Context, session dbus.ObjectPath) error {
	if c == nil || c.conn == nil {
		return ErrNotConnected
	}
	call := c.conn.Object(portalService, session).CallWithContext(ctx, portalSessionInterface+".Close", 0)
	if call.Err != nil {
		return fmt.Errorf("portal Session.Close failed: %w", call.Err)
	}
	return nil
}

func encodeRequests(requests []shortcut.Request) []shortcutSpec {
	specs := make([]shortcutSpec, 0, len(requests))
	for _, r := range requests {
		details := map[string]dbus.Variant{
			"description": dbus.MakeVariant(r.Description),
		}
		if r.HasTrigger {
			details["preferred_trigger"] = dbus.MakeVariant(r.PreferredTrigger)
		}
		specs = append(specs, shortcutSpec{ID: r.ID, Details: details})
	}
	return specs
}

func sessionHandle(raw dbus.Variant) (dbus.ObjectPath, error) {
	switch value := raw.Value().(type) {
	case dbus.ObjectPath:
		if !value.IsValid() {
			return "", fmt.Errorf("portal session_handle is not a valid object path: %q", string(value))
		}
		return value, nil
	case string:
		path := dbus.ObjectPath(value)
		if !path.IsValid() {
			return "", fmt.Errorf("portal session_handle string is not a valid object path: %q", value)
		}
		return path, nil
	default:
		return "", fmt.Errorf("portal session_handle has unexpected type %T", raw.Value())
	}
}

// decodeShortcuts reads an a(sa{sv}) value. godbus hands structs inside
// variants and signal bodies back as []interface{}.
func decodeShortcuts(v interface{}) ([]shortcut.Bound, error) {
	var entries [][]interface{}
	switch list := v.(type) {
	case [][]interface{}:
		entries = list
	case []interface{}:
		for _, item := range list {
			fields, ok := item.([]interface{})
			if !ok {
				return nil, fmt.Errorf("portal shortcut entry has unexpected type %T", item)
			}
			entries = append(entries, fields)
		}
	case []shortcutSpec:
		for _, s := range list {
			entries = append(entries, []interface{}{s.ID, s.Details})
		}
	default:
		return nil, fmt.Errorf("portal shortcuts have unexpected type %T", v)
	}

	bound := make([]shortcut.Bound, 0, len(entries))
	for _, fields := range entries {
		if len(fields) < 2 {
			return nil, fmt.Errorf("portal shortcut entry has %d fields", len(fields))
		}
		id, ok := fields[0].(string)
		if !ok {
			return nil, fmt.Errorf("portal shortcut id has unexpected type %T", fields[0])
		}
		details, _ := fields[1].(map[string]dbus.Variant)
		bound = append(bound, shortcut.Bound{
			ID:                 id,
			Description:        variantString(details, "description"),
			TriggerDescription: variantString(details, "trigger_description"),
		})
	}
	return bound, nil
}

func variantString(m map[string]dbus.Variant, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.Value().(string)
	return s
}

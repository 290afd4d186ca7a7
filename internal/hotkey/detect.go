package hotkey

import (
	"context"
	"log"
	"os"
	"runtime"

	"github.com/TanaroSch/portal-shortcuts/internal/portal"
)

// DisplayServer represents the type of display server in use
type DisplayServer int

const (
	DisplayServerUnknown DisplayServer = iota
	DisplayServerWindows
	DisplayServerX11
	DisplayServerWayland
)

func (ds DisplayServer) String() string {
	switch ds {
	case DisplayServerWindows:
		return "Windows"
	case DisplayServerX11:
		return "X11"
	case DisplayServerWayland:
		return "Wayland"
	default:
		return "Unknown"
	}
}

// DetectDisplayServer reports the display server of the running session.
func DetectDisplayServer() DisplayServer {
	ds, reason := detectDisplayServer(runtime.GOOS, os.Getenv)
	if ds == DisplayServerUnknown {
		log.Println("Warning: Could not detect display server type")
	} else {
		log.Printf("Detected display server: %s (%s)", ds, reason)
	}
	return ds
}

// detectDisplayServer prefers Wayland over X11 when both variables are set,
// as under XWayland. macOS counts as X11 since golang.design/x/hotkey grabs
// keys there the same way.
func detectDisplayServer(goos string, getenv func(string) string) (DisplayServer, string) {
	switch {
	case goos == "windows":
		return DisplayServerWindows, "GOOS"
	case getenv("WAYLAND_DISPLAY") != "":
		return DisplayServerWayland, "WAYLAND_DISPLAY set"
	case getenv("DISPLAY") != "":
		return DisplayServerX11, "DISPLAY set"
	case goos == "darwin":
		return DisplayServerX11, "macOS"
	default:
		return DisplayServerUnknown, ""
	}
}

// HasPortalSupport checks if XDG Desktop Portal answers with a GlobalShortcuts
// interface on the session bus.
func HasPortalSupport(ctx context.Context) bool {
	// Only relevant on Linux
	if runtime.GOOS != "linux" {
		return false
	}

	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		log.Println("D-Bus session bus not available (DBUS_SESSION_BUS_ADDRESS not set)")
		return false
	}

	client, err := portal.Connect()
	if err != nil {
		log.Printf("D-Bus session bus unreachable: %v", err)
		return false
	}
	defer client.Close()

	version, err := client.Version(ctx)
	if err != nil {
		log.Printf("XDG Portal has no GlobalShortcuts interface: %v", err)
		return false
	}
	log.Printf("XDG Portal GlobalShortcuts version %d available", version)
	return true
}

package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/TanaroSch/portal-shortcuts/internal/portal"
	"github.com/TanaroSch/portal-shortcuts/internal/session"
)

// ErrBackendNotAvailable is returned when a backend cannot be used on the current system.
var ErrBackendNotAvailable = errors.New("backend not available on this system")

// Mode selects which backend SelectBackend returns.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModePortal Mode = "portal"
	ModeLegacy Mode = "legacy"
)

// ParseMode accepts the config spelling of a mode. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModePortal, ModeLegacy:
		return m, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want auto, portal or legacy)", s)
	}
}

// SelectBackend chooses the backend for mode. In auto mode Wayland gets the
// portal when it answers, everything else gets the legacy backend. The
// returned backend may hold resources; callers close it if it implements
// io.Closer.
func SelectBackend(ctx context.Context, mode Mode) (session.Backend, error) {
	switch mode {
	case ModePortal:
		return openPortal(ctx)
	case ModeLegacy:
		return newAvailableLegacy()
	case ModeAuto, "":
	default:
		return nil, fmt.Errorf("unknown backend mode %q", mode)
	}

	ds := DetectDisplayServer()
	switch ds {
	case DisplayServerWayland:
		if !HasPortalSupport(ctx) {
			log.Println("Wayland detected without Portal support - shortcuts unavailable")
			return nil, fmt.Errorf("wayland without GlobalShortcuts portal: %w", ErrBackendNotAvailable)
		}
		return openPortal(ctx)

	case DisplayServerWindows, DisplayServerX11:
		return newAvailableLegacy()

	default:
		log.Printf("Warning: Unknown display server, shortcuts unavailable")
		return nil, ErrBackendNotAvailable
	}
}

func openPortal(ctx context.Context) (session.Backend, error) {
	client, err := portal.Connect()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, err)
	}
	version, err := client.Version(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, err)
	}
	backend := portal.NewBackend(client)
	log.Printf("Selected backend: %s (GlobalShortcuts version %d)", backend.Name(), version)
	return backend, nil
}

func newAvailableLegacy() (session.Backend, error) {
	backend := NewLegacyBackend()
	if !backend.IsAvailable() {
		log.Printf("Warning: Legacy backend not available for %s", backend.displayServer)
		return nil, ErrBackendNotAvailable
	}
	log.Printf("Selected backend: %s for %s", backend.Name(), backend.displayServer)
	return backend, nil
}

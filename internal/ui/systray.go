package ui

import (
	"fmt"
	"log"
	"sync"

	"github.com/getlantern/systray"

	"github.com/TanaroSch/portal-shortcuts/internal/session"
)

// Callbacks are the actions behind the tray menu. Nil entries leave their
// item inert.
type Callbacks struct {
	OnEditShortcuts    func()
	OnStart            func()
	OnStop             func()
	OnCopyBindings     func()
	OnRestoreClipboard func()
	OnViewDiff         func()
	OnReloadConfig     func()
	OnOpenConfig       func()
	OnQuit             func()
}

// menuView is what the tray shows for one controller snapshot.
type menuView struct {
	StatusTitle        string
	StatusVisible      bool
	ActivationTitle    string
	ActivationsVisible bool
	StartEnabled       bool
	StopEnabled        bool
	StopTitle          string
	EditEnabled        bool
	CopyEnabled        bool
	DiffEnabled        bool
}

func viewFor(snap session.Snapshot) menuView {
	v := menuView{
		StatusVisible:      snap.ResponseVisible || snap.State == session.StateStarting,
		ActivationsVisible: snap.ActivationsVisible,
		StartEnabled:       snap.CanStart,
		StopEnabled:        snap.CanStop || snap.State == session.StateStarting,
		StopTitle:          "Stop Session",
		EditEnabled:        snap.Editable,
		CopyEnabled:        len(snap.Bound) > 0,
		DiffEnabled:        snap.State == session.StateActive && len(snap.Requested) > 0,
	}

	switch snap.State {
	case session.StateStarting:
		v.StatusTitle = "Status: waiting for permission..."
		v.StopTitle = "Cancel Start"
	case session.StateStopping:
		v.StatusTitle = "Status: stopping..."
	default:
		v.StatusTitle = "Status: " + snap.Status
	}

	switch {
	case snap.Display == "":
		v.ActivationTitle = "Shortcuts: (none bound)"
	case len(snap.Active) == 0:
		v.ActivationTitle = "Shortcuts: " + snap.Display
	default:
		v.ActivationTitle = fmt.Sprintf("Active (%d): %s", len(snap.Active), snap.Display)
	}
	return v
}

// SystrayManager handles the system tray icon and menu
type SystrayManager struct {
	version      string
	embeddedIcon []byte
	cb           Callbacks

	mu          sync.Mutex
	ready       bool
	pending     *session.Snapshot
	canRestore  bool
	miStatus    *systray.MenuItem
	miActive    *systray.MenuItem
	miEdit      *systray.MenuItem
	miStart     *systray.MenuItem
	miStop      *systray.MenuItem
	miCopy      *systray.MenuItem
	miRestore   *systray.MenuItem
	miViewDiff  *systray.MenuItem
	lastVisible menuView
}

// NewSystrayManager creates a new system tray manager
func NewSystrayManager(version string, embeddedIcon []byte, cb Callbacks) *SystrayManager {
	return &SystrayManager{
		version:      version,
		embeddedIcon: embeddedIcon,
		cb:           cb,
	}
}

// Run initializes and starts the system tray. It blocks until Quit.
func (s *SystrayManager) Run() {
	systray.Run(s.onReady, s.onExit)
}

// Update mirrors a controller snapshot into the menu. Safe from any
// goroutine; snapshots that arrive before the tray is ready are applied once
// it is.
func (s *SystrayManager) Update(snap session.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.pending = &snap
		return
	}
	s.applyLocked(viewFor(snap))
}

// UpdateRevertStatus enables or disables the restore clipboard item.
func (s *SystrayManager) UpdateRevertStatus(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canRestore = enabled
	if s.miRestore == nil {
		return
	}
	setEnabled(s.miRestore, enabled)
}

func (s *SystrayManager) applyLocked(v menuView) {
	s.miStatus.SetTitle(v.StatusTitle)
	setVisible(s.miStatus, v.StatusVisible)
	s.miActive.SetTitle(v.ActivationTitle)
	setVisible(s.miActive, v.ActivationsVisible)

	setEnabled(s.miEdit, v.EditEnabled)
	setEnabled(s.miStart, v.StartEnabled)
	s.miStop.SetTitle(v.StopTitle)
	setEnabled(s.miStop, v.StopEnabled)
	setEnabled(s.miCopy, v.CopyEnabled)
	setEnabled(s.miViewDiff, v.DiffEnabled)

	if v != s.lastVisible {
		log.Printf("SystrayManager: %s | %s", v.StatusTitle, v.ActivationTitle)
		s.lastVisible = v
	}
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}

func setVisible(item *systray.MenuItem, visible bool) {
	if visible {
		item.Show()
	} else {
		item.Hide()
	}
}

// onReady is called by systray once the tray is ready.
func (s *SystrayManager) onReady() {
	title := fmt.Sprintf("Portal Shortcuts %s", s.version)
	systray.SetTitle(title)
	systray.SetTooltip(title)
	if len(s.embeddedIcon) > 0 {
		systray.SetIcon(s.embeddedIcon)
	} else {
		log.Println("Warning: No embedded icon data to set for systray.")
	}

	miVersion := systray.AddMenuItem(fmt.Sprintf("Version: %s", s.version), "Portal Shortcuts version")
	miVersion.Disable()
	systray.AddSeparator()

	s.mu.Lock()
	s.miStatus = systray.AddMenuItem("Status:", "Result of the last start attempt")
	s.miStatus.Disable()
	s.miActive = systray.AddMenuItem("Shortcuts:", "Bound shortcuts; held ones are in brackets")
	s.miActive.Disable()
	systray.AddSeparator()

	s.miEdit = systray.AddMenuItem("Edit Shortcuts...", "Edit the id:description[:trigger] list")
	s.miStart = systray.AddMenuItem("Start Session", "Request a session and bind the shortcuts")
	s.miStop = systray.AddMenuItem("Stop Session", "Stop listening and close the session")
	systray.AddSeparator()

	s.miCopy = systray.AddMenuItem("Copy Bound Shortcuts", "Copy the granted shortcuts to the clipboard")
	s.miRestore = systray.AddMenuItem("Restore Previous Clipboard", "Put back what the clipboard held before the copy")
	setEnabled(s.miRestore, s.canRestore)
	s.miViewDiff = systray.AddMenuItem("View Binding Differences", "Compare requested and granted shortcuts")
	systray.AddSeparator()

	miReloadConfig := systray.AddMenuItem("Reload Configuration", "Reload config.json")
	miOpenConfig := systray.AddMenuItem("Open Config File", "Open config.json in default editor")
	systray.AddSeparator()
	miQuit := systray.AddMenuItem("Quit", "Exit the application")

	initial := session.Snapshot{CanStart: true, Editable: true}
	if s.pending != nil {
		initial = *s.pending
		s.pending = nil
	}
	s.applyLocked(viewFor(initial))
	s.ready = true
	s.mu.Unlock()

	// --- Set up menu handlers in goroutines ---
	handle := func(item *systray.MenuItem, name string, fn func()) {
		if fn == nil {
			return
		}
		go func() {
			for range item.ClickedCh {
				log.Printf("%s menu item clicked.", name)
				fn()
			}
		}()
	}
	handle(s.miEdit, "Edit Shortcuts", s.cb.OnEditShortcuts)
	handle(s.miStart, "Start Session", s.cb.OnStart)
	handle(s.miStop, "Stop Session", s.cb.OnStop)
	handle(s.miCopy, "Copy Bound Shortcuts", s.cb.OnCopyBindings)
	handle(s.miRestore, "Restore Previous Clipboard", s.cb.OnRestoreClipboard)
	handle(s.miViewDiff, "View Binding Differences", s.cb.OnViewDiff)
	handle(miReloadConfig, "Reload Configuration", s.cb.OnReloadConfig)
	handle(miOpenConfig, "Open Config File", s.cb.OnOpenConfig)

	go func() {
		<-miQuit.ClickedCh
		log.Println("Quit menu item clicked.")
		if s.cb.OnQuit != nil {
			s.cb.OnQuit()
		}
		systray.Quit()
	}()

	log.Println("Systray ready and menu configured.")
}

// onExit is called when the systray is exiting
func (s *SystrayManager) onExit() {
	log.Println("Systray exiting.")
}

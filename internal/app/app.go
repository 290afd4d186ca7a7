package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ncruces/zenity"

	"github.com/TanaroSch/portal-shortcuts/internal/clipboard"
	"github.com/TanaroSch/portal-shortcuts/internal/config"
	"github.com/TanaroSch/portal-shortcuts/internal/hotkey"
	"github.com/TanaroSch/portal-shortcuts/internal/resources"
	"github.com/TanaroSch/portal-shortcuts/internal/session"
	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
	"github.com/TanaroSch/portal-shortcuts/internal/ui"
)

const appName = "Portal Shortcuts"

// stopTimeout bounds the session close on quit.
const stopTimeout = 5 * time.Second

// Application represents the main application
type Application struct {
	version string

	mu     sync.Mutex
	config *config.Config

	ctx    context.Context
	cancel context.CancelFunc

	backend          session.Backend
	controller       *session.Controller
	clipboardManager *clipboard.Manager
	systrayManager   *ui.SystrayManager
	notifications    *ui.NotificationManager
	iconData         []byte
}

// New creates a new application instance. It fails when no shortcut backend
// can be used on this system.
func New(cfg *config.Config, version string) (*Application, error) {
	app := &Application{
		config:  cfg,
		version: version,
	}

	var err error
	app.iconData, err = resources.GetIcon()
	if err != nil {
		log.Printf("Warning: Failed to load embedded icon: %v", err)
	}
	app.notifications = ui.InitGlobalNotifications(cfg.UseNotifications, appName, app.iconData)

	mode, err := hotkey.ParseMode(cfg.Backend)
	if err != nil {
		return nil, err
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())
	app.backend, err = hotkey.SelectBackend(app.ctx, mode)
	if err != nil {
		app.cancel()
		ui.ShowAdminNotification(ui.LevelError, "No Shortcut Backend", fmt.Sprintf("Global shortcuts are unavailable: %v", err))
		return nil, fmt.Errorf("select %s backend: %w", mode, err)
	}

	initial, max := cfg.RetryDelays()
	app.controller = session.NewController(app.backend, session.Options{
		Backoff:  session.Backoff{Initial: initial, Max: max},
		OnChange: app.onSessionChange,
	})
	app.clipboardManager = clipboard.NewManager(app.onRevertStatusChange)

	app.systrayManager = ui.NewSystrayManager(version, app.iconData, ui.Callbacks{
		OnEditShortcuts:    app.onEditShortcuts,
		OnStart:            app.onStart,
		OnStop:             app.onStop,
		OnCopyBindings:     app.onCopyBindings,
		OnRestoreClipboard: app.onRestoreClipboard,
		OnViewDiff:         app.onViewDiff,
		OnReloadConfig:     app.onReloadConfig,
		OnOpenConfig:       app.onOpenConfigFile,
		OnQuit:             app.onQuit,
	})

	return app, nil
}

// Run starts the application
func (a *Application) Run() {
	go func() {
		if err := config.Watch(a.ctx, a.currentConfig().GetConfigPath(), a.onConfigFileChanged); err != nil {
			log.Printf("Warning: config file watching disabled: %v", err)
		}
	}()

	// Start the systray manager (blocking call)
	a.systrayManager.Run()
}

func (a *Application) currentConfig() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config
}

func (a *Application) onSessionChange(snap session.Snapshot) {
	if a.systrayManager != nil {
		a.systrayManager.Update(snap)
	}
}

func (a *Application) onRevertStatusChange(canRevert bool) {
	if a.systrayManager != nil {
		a.systrayManager.UpdateRevertStatus(canRevert)
	}
}

// onStart runs the start sequence off the menu goroutine so the menu keeps
// answering, including the Cancel Start item.
func (a *Application) onStart() {
	cfg := a.currentConfig()
	go func() {
		err := a.controller.Start(a.ctx, cfg.Shortcuts, cfg.ParentWindow)
		if err == nil {
			snap := a.controller.Snapshot()
			ui.ShowNotification("Session Started", fmt.Sprintf("%d of %d shortcuts bound: %s", len(snap.Bound), len(snap.Requested), snap.Display))
			return
		}
		log.Printf("Start failed: %v", err)
		switch {
		case errors.Is(err, session.ErrSessionActive):
			ui.ShowAdminNotification(ui.LevelWarn, "Session Active", "Stop the current session before starting a new one.")
		case session.IsKind(err, session.KindInput):
			ui.ShowAdminNotification(ui.LevelError, "Invalid Shortcut List", err.Error())
		case session.IsKind(err, session.KindRejected):
			ui.ShowAdminNotification(ui.LevelWarn, "Shortcuts Not Bound", a.controller.Snapshot().Status)
		default:
			ui.ShowAdminNotification(ui.LevelError, "Session Error", err.Error())
		}
	}()
}

func (a *Application) onStop() {
	go func() {
		if err := a.controller.Stop(a.ctx); err != nil {
			log.Printf("Stop failed: %v", err)
			ui.ShowAdminNotification(ui.LevelWarn, "Stop Session", err.Error())
		}
	}()
}

// onEditShortcuts shows the shortcut list in an entry dialog and saves the
// edited text. The list cannot change while a session is live.
func (a *Application) onEditShortcuts() {
	if !a.controller.Snapshot().Editable {
		ui.ShowAdminNotification(ui.LevelInfo, "Edit Shortcuts", "Stop the session before editing the shortcut list.")
		return
	}

	cfg := a.currentConfig()
	text, err := zenity.Entry(
		"Shortcut list\n(id:description[:trigger] entries separated by commas)",
		zenity.Title(appName+" - Edit Shortcuts"),
		zenity.EntryText(cfg.Shortcuts),
		zenity.Width(520),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			log.Println("Edit shortcuts canceled by user.")
		} else {
			log.Printf("Error getting shortcut list via zenity: %v", err)
			ui.ShowAdminNotification(ui.LevelWarn, "Input Error", "Failed to get shortcut list input.")
		}
		return
	}

	if _, err := shortcut.Parse(text); err != nil {
		// Saved anyway; Start reports the parse error with the status line.
		log.Printf("Warning: edited shortcut list does not parse: %v", err)
		zenity.Error(fmt.Sprintf("The shortcut list is not valid:\n%v\n\nIt was saved, but starting a session will fail until it is fixed.", err),
			zenity.Title(appName+" - Invalid Shortcut List"),
			zenity.ErrorIcon)
	}

	a.mu.Lock()
	a.config.Shortcuts = text
	err = a.config.Save()
	a.mu.Unlock()
	if err != nil {
		log.Printf("Error saving shortcut list: %v", err)
		ui.ShowAdminNotification(ui.LevelError, "Configuration Error", fmt.Sprintf("Failed to save shortcut list: %v", err))
		return
	}
	log.Printf("Shortcut list updated: %q", text)
}

func (a *Application) onCopyBindings() {
	bound := a.controller.Snapshot().Bound
	msg, err := a.clipboardManager.CopyBindings(bound)
	if err != nil {
		log.Printf("Copy bindings failed: %v", err)
		ui.ShowAdminNotification(ui.LevelWarn, "Copy Failed", err.Error())
		return
	}
	ui.ShowNotification("Shortcuts Copied", msg)
}

func (a *Application) onRestoreClipboard() {
	if a.clipboardManager.RestoreOriginalClipboard() {
		ui.ShowNotification("Clipboard Restored", "Previous clipboard content restored.")
	}
}

func (a *Application) onViewDiff() {
	snap := a.controller.Snapshot()
	if snap.State != session.StateActive {
		ui.ShowAdminNotification(ui.LevelInfo, "View Binding Differences", "No active session to compare.")
		return
	}
	ui.ShowBindingDiff(snap.Requested, snap.Bound, a.currentConfig().DiffContextLines)
}

// onConfigFileChanged applies an external edit of the config file.
func (a *Application) onConfigFileChanged(cfg *config.Config, err error) {
	if err != nil {
		log.Printf("Warning: ignoring config file change: %v", err)
		ui.ShowAdminNotification(ui.LevelWarn, "Configuration Error", fmt.Sprintf("Config file changed but could not be loaded: %v", err))
		return
	}
	a.applyConfig(cfg)
}

func (a *Application) onReloadConfig() {
	log.Println("Reloading configuration...")
	cfg, err := config.Reload(a.currentConfig().GetConfigPath())
	if err != nil {
		errMsg := fmt.Sprintf("Failed to reload configuration: %v", err)
		log.Printf("Error reloading configuration: %v", err)
		ui.ShowAdminNotification(ui.LevelError, "Configuration Error", errMsg)
		return
	}
	a.applyConfig(cfg)
	ui.ShowAdminNotification(ui.LevelInfo, "Configuration Reloaded", "Configuration updated. Shortcut changes apply to the next session.")
}

// applyConfig swaps in cfg. Backend and retry settings only take effect on
// restart.
func (a *Application) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	old := a.config
	a.config = cfg
	a.mu.Unlock()

	a.notifications.SetEnabled(cfg.UseNotifications)
	if old.Backend != cfg.Backend || old.PumpRetry != cfg.PumpRetry {
		log.Printf("Backend or retry settings changed (%q -> %q), restart required", old.Backend, cfg.Backend)
		ui.ShowAdminNotification(ui.LevelWarn, "Restart Required", "Backend and retry settings apply after restarting the application.")
	}
	log.Println("Configuration applied.")
}

// onOpenConfigFile is called when the open config menu item is clicked
func (a *Application) onOpenConfigFile() {
	configPath := a.currentConfig().GetConfigPath()
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		log.Printf("Warning: Failed to get absolute path for '%s': %v. Proceeding with original path.", configPath, err)
		absPath = configPath
	}

	if _, err := os.Stat(absPath); err != nil {
		errMsg := fmt.Sprintf("Config file not available: %v", err)
		log.Printf("Error: %s", errMsg)
		ui.ShowAdminNotification(ui.LevelWarn, "Error Opening File", errMsg)
		return
	}

	if err := ui.OpenFileInDefaultApp(absPath); err != nil {
		errMsg := fmt.Sprintf("Could not open config file '%s': %v", absPath, err)
		log.Print(errMsg)
		ui.ShowAdminNotification(ui.LevelWarn, "Error Opening File", errMsg)
	}
}

// onQuit is called when the quit menu item is clicked
func (a *Application) onQuit() {
	log.Println("Quit requested. Stopping session.")
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := a.controller.Stop(ctx); err != nil {
		log.Printf("Warning: stop on quit: %v", err)
	}
	a.cancel()
	if closer, ok := a.backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Printf("Warning: closing %s backend: %v", a.backend.Name(), err)
		}
	}
}

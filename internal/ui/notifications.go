package ui

import (
	"log"
	"sync"
)

// Level orders notifications by severity. Admin notifications below the
// manager's threshold are only logged.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "Warning"
	case LevelError:
		return "Error"
	default:
		return "Info"
	}
}

// NotificationManager handles showing notifications across platforms
type NotificationManager struct {
	mu               sync.Mutex
	useNotifications bool
	appName          string
	embeddedIcon     []byte
	notify           func(title, message string) error
}

// NewNotificationManager creates a new notification manager
func NewNotificationManager(useNotifications bool, appName string, embeddedIcon []byte) *NotificationManager {
	n := &NotificationManager{
		useNotifications: useNotifications,
		appName:          appName,
		embeddedIcon:     embeddedIcon,
	}
	n.notify = n.platformNotify
	return n
}

// SetEnabled switches desktop notifications on or off, e.g. after a config
// reload. Errors are still shown when disabled.
func (n *NotificationManager) SetEnabled(enabled bool) {
	n.mu.Lock()
	n.useNotifications = enabled
	n.mu.Unlock()
}

// Show displays a desktop notification. Info and Warn respect the
// use_notifications setting, Error is always shown.
func (n *NotificationManager) Show(level Level, title, message string) {
	log.Printf("Notification [%s] %s: %s", level, title, message)

	n.mu.Lock()
	enabled := n.useNotifications
	n.mu.Unlock()
	if !enabled && level < LevelError {
		return
	}

	if level > LevelInfo {
		title = level.String() + ": " + title
	}
	if err := n.notify(title, message); err != nil {
		log.Printf("Error showing notification: %v", err)
	}
}

// Global function for simplicity when detailed control isn't needed
var (
	globalMu                  sync.Mutex
	globalNotificationManager *NotificationManager
)

// InitGlobalNotifications initializes the global notification manager
func InitGlobalNotifications(useNotifications bool, appName string, embeddedIcon []byte) *NotificationManager {
	n := NewNotificationManager(useNotifications, appName, embeddedIcon)
	globalMu.Lock()
	globalNotificationManager = n
	globalMu.Unlock()
	return n
}

// ShowNotification shows an Info level notification.
func ShowNotification(title, message string) {
	ShowAdminNotification(LevelInfo, title, message)
}

// ShowAdminNotification is a convenience function for showing notifications
// without directly referencing the notification manager
func ShowAdminNotification(level Level, title, message string) {
	globalMu.Lock()
	n := globalNotificationManager
	globalMu.Unlock()
	if n == nil {
		log.Printf("Notification not shown (manager not initialized): [%s] %s - %s", level, title, message)
		return
	}
	n.Show(level, title, message)
}

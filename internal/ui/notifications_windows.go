//go:build windows

package ui

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-toast/toast"
)

func (n *NotificationManager) platformNotify(title, message string) error {
	notification := toast.Notification{
		AppID:   n.appName,
		Title:   title,
		Message: message,
		Icon:    n.iconFile("portalshortcuts-icon-*.ico"),
	}

	if err := notification.Push(); err != nil {
		if strings.Contains(err.Error(), "notification platform is unavailable") {
			log.Println("Toast notification failed: Platform unavailable (Notifications might be disabled in Windows Settings).")
		}
		return fmt.Errorf("toast notification: %w", err)
	}
	return nil
}

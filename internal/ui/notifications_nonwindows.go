//go:build !windows

package ui

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

func (n *NotificationManager) platformNotify(title, message string) error {
	if err := beeep.Notify(title, message, n.iconFile("portalshortcuts-icon-*.png")); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}

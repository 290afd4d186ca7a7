package ui

import (
	"log"
	"os"
	"path/filepath"
	"sync"
)

var (
	iconFileOnce sync.Once
	iconFilePath string
)

// iconFile writes the embedded icon once per process and returns its path.
// Notification backends only take icons by file name.
func (n *NotificationManager) iconFile(pattern string) string {
	iconFileOnce.Do(func() {
		if len(n.embeddedIcon) == 0 {
			return
		}
		path, err := writeTempIcon(n.embeddedIcon, pattern)
		if err != nil {
			log.Printf("Error writing temporary icon: %v", err)
			return
		}
		iconFilePath = path
	})
	return iconFilePath
}

func writeTempIcon(iconData []byte, pattern string) (string, error) {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	if _, err := tmpFile.Write(iconData); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", err
	}

	absPath, err := filepath.Abs(tmpFile.Name())
	if err != nil {
		return tmpFile.Name(), nil
	}
	return absPath, nil
}

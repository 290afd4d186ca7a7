//go:build !windows

package ui

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
)

// openCommand returns the launcher for the platform's default application.
func openCommand(goos, filePath string) *exec.Cmd {
	if goos == "darwin" {
		return exec.Command("open", filePath)
	}
	return exec.Command("xdg-open", filePath)
}

// OpenFileInDefaultApp hands filePath to the desktop's opener and returns
// without waiting for it.
func OpenFileInDefaultApp(filePath string) error {
	cmd := openCommand(runtime.GOOS, filePath)
	log.Printf("Opening file in default app: %s", cmd.String())
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command (%s): %w", cmd.String(), err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

//go:build windows

package ui

import (
	"fmt"
	"log"

	"golang.org/x/sys/windows"
)

// OpenFileInDefaultApp opens filePath with the application registered for
// its type through ShellExecuteW.
func OpenFileInDefaultApp(filePath string) error {
	log.Printf("Opening file in default app: %s (ShellExecuteW)", filePath)

	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return fmt.Errorf("failed to convert verb to UTF16Ptr: %w", err)
	}
	file, err := windows.UTF16PtrFromString(filePath)
	if err != nil {
		return fmt.Errorf("failed to convert file path to UTF16Ptr: %w", err)
	}

	if err := windows.ShellExecute(0, verb, file, nil, nil, windows.SW_SHOWNORMAL); err != nil {
		log.Printf("ShellExecuteW failed: %v", err)
		return fmt.Errorf("ShellExecuteW failed for '%s': %w", filePath, err)
	}
	return nil
}

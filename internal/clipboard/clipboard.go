package clipboard

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

// Manager copies binding lists to the system clipboard and can put back
// whatever was there before the last copy.
type Manager struct {
	mu                   sync.Mutex
	previousClipboard    string
	hasPrevious          bool
	onRevertStatusChange func(bool)

	readAll  func() (string, error)
	writeAll func(string) error
}

// NewManager creates a clipboard manager. onRevertStatusChange is told
// whether a previous clipboard is available to restore.
func NewManager(onRevertStatusChange func(bool)) *Manager {
	return &Manager{
		onRevertStatusChange: onRevertStatusChange,
		readAll:              clipboard.ReadAll,
		writeAll:             clipboard.WriteAll,
	}
}

// FormatBindings renders one "id<TAB>trigger<TAB>description" line per
// shortcut, ready to paste into a spreadsheet or a note.
func FormatBindings(bound []shortcut.Bound) string {
	var b strings.Builder
	for _, s := range bound {
		trigger := s.TriggerDescription
		if trigger == "" {
			trigger = "(unassigned)"
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\n", s.ID, trigger, s.Description)
	}
	return b.String()
}

// CopyBindings writes the bound list to the clipboard and remembers the
// previous content. It returns a short message for a notification.
func (m *Manager) CopyBindings(bound []shortcut.Bound) (string, error) {
	if len(bound) == 0 {
		return "", fmt.Errorf("no bound shortcuts to copy")
	}
	text := FormatBindings(bound)

	m.mu.Lock()
	previous, readErr := m.readAll()
	if readErr != nil {
		log.Printf("Warning: Failed to read clipboard before copying: %v", readErr)
	}
	if err := m.writeAll(text); err != nil {
		m.mu.Unlock()
		return "", fmt.Errorf("failed to write to clipboard: %w", err)
	}
	changed := readErr == nil && previous != text
	if changed {
		m.previousClipboard = previous
		m.hasPrevious = true
	}
	m.mu.Unlock()

	log.Printf("Copied %d bound shortcut(s) to clipboard", len(bound))
	if changed && m.onRevertStatusChange != nil {
		m.onRevertStatusChange(true)
	}
	return fmt.Sprintf("Copied %d bound shortcut(s) to the clipboard.", len(bound)), nil
}

// RestoreOriginalClipboard reverts to the content saved by the last copy.
func (m *Manager) RestoreOriginalClipboard() bool {
	m.mu.Lock()
	if !m.hasPrevious {
		m.mu.Unlock()
		return false
	}
	if err := m.writeAll(m.previousClipboard); err != nil {
		m.mu.Unlock()
		log.Printf("Failed to restore original clipboard: %v", err)
		return false
	}
	m.previousClipboard = ""
	m.hasPrevious = false
	m.mu.Unlock()

	log.Println("Original clipboard content restored.")
	if m.onRevertStatusChange != nil {
		m.onRevertStatusChange(false)
	}
	return true
}

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shortcuts != DefaultShortcuts || cfg.Backend != DefaultBackend || !cfg.UseNotifications {
		t.Fatalf("unexpected default config: %+v", cfg)
	}
	if cfg.GetConfigPath() != path {
		t.Fatalf("config path = %q", cfg.GetConfigPath())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}
}

func TestCreateDefaultConfigKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"shortcuts":"a:b"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := CreateDefaultConfig(path); err != nil {
		t.Fatalf("CreateDefaultConfig: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shortcuts != "a:b" {
		t.Fatalf("existing file overwritten, shortcuts = %q", cfg.Shortcuts)
	}
}

func TestSaveWritesEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Shortcuts = "x:Something:F5"
	cfg.ParentWindow = "wayland:abc"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Shortcuts != "x:Something:F5" || again.ParentWindow != "wayland:abc" {
		t.Fatalf("reloaded = %+v", again)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"shortcuts":`},
		{"unknown backend", `{"backend":"x11"}`},
		{"negative delay", `{"pump_retry":{"initial_ms":-1}}`},
		{"negative context", `{"diff_context_lines":-3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.body), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidateAcceptsKnownBackends(t *testing.T) {
	for _, b := range []string{"", "auto", "Portal", "legacy"} {
		cfg := &Config{Backend: b}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("backend %q: %v", b, err)
		}
	}
}

func TestRetryDelays(t *testing.T) {
	cfg := &Config{}
	initial, max := cfg.RetryDelays()
	if initial != DefaultRetryInitial || max != DefaultRetryMax {
		t.Fatalf("defaults = %s, %s", initial, max)
	}

	cfg.PumpRetry = RetryConfig{InitialMS: 2000, MaxMS: 1000}
	initial, max = cfg.RetryDelays()
	if initial != 2*time.Second || max != 2*time.Second {
		t.Fatalf("clamped = %s, %s", initial, max)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config, err error) {
			if err == nil {
				changes <- c
			}
		})
	}()

	// Give the watcher time to install before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
	cfg.Shortcuts = "w:Watched"
	for {
		select {
		case c := <-changes:
			if c.Shortcuts != "w:Watched" {
				t.Fatalf("reloaded shortcuts = %q", c.Shortcuts)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch: %v", err)
			}
			return
		case <-tick.C:
			if err := cfg.Save(); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload seen")
		}
	}
}

func TestReloadDoesNotCreateMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Reload(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Reload error = %v, want os.ErrNotExist", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Reload created %s", path)
	}
}

func TestWatchSkipsRemovedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var failures []error
	changes := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config, err error) {
			if err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				return
			}
			select {
			case changes <- c:
			default:
			}
		})
	}()

	// Save until the watcher reports, so it is known to be installed.
	cfg.Shortcuts = "mine:Kept"
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
waitLive:
	for {
		select {
		case <-changes:
			break waitLive
		case <-tick.C:
			if err := cfg.Save(); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload seen")
		}
	}
	tick.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(4 * watchSettle)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("config file recreated after removal (stat err = %v)", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(failures) != 0 {
		t.Fatalf("removal reported as reload failure: %v", failures)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
}

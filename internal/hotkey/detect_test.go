package hotkey

import "testing"

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name string
		goos string
		env  map[string]string
		want DisplayServer
	}{
		{"windows", "windows", map[string]string{"DISPLAY": ":0"}, DisplayServerWindows},
		{"wayland", "linux", map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, DisplayServerWayland},
		{"xwayland", "linux", map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0"}, DisplayServerWayland},
		{"x11", "linux", map[string]string{"DISPLAY": ":1"}, DisplayServerX11},
		{"macos", "darwin", nil, DisplayServerX11},
		{"headless", "linux", nil, DisplayServerUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := detectDisplayServer(tt.goos, func(k string) string { return tt.env[k] })
			if got != tt.want {
				t.Fatalf("detectDisplayServer = %s, want %s", got, tt.want)
			}
		})
	}
}

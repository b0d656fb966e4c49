package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
server:
  url: "http://10.0.0.7"
  timeout_ms: 1500

display:
  fallback_width: 128
  fallback_height: 64

limits:
  max_images: 5
  min_delay_ms: 100
  max_delay_ms: 5000

raster:
  backend: gift
  kernel: lanczos

text:
  default_color: "#00ff00"

watch:
  debounce_ms: 400
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.URL != "http://10.0.0.7" {
		t.Errorf("Server.URL = %q, want http://10.0.0.7", cfg.Server.URL)
	}
	if cfg.Server.TimeoutMs != 1500 {
		t.Errorf("Server.TimeoutMs = %d, want 1500", cfg.Server.TimeoutMs)
	}
	if cfg.Display.FallbackWidth != 128 || cfg.Display.FallbackHeight != 64 {
		t.Errorf("Display fallback = %dx%d, want 128x64", cfg.Display.FallbackWidth, cfg.Display.FallbackHeight)
	}
	if cfg.Limits.MaxImages != 5 {
		t.Errorf("Limits.MaxImages = %d, want 5", cfg.Limits.MaxImages)
	}
	if cfg.Limits.MinDelayMs != 100 || cfg.Limits.MaxDelayMs != 5000 {
		t.Errorf("delay range = [%d, %d], want [100, 5000]", cfg.Limits.MinDelayMs, cfg.Limits.MaxDelayMs)
	}
	if cfg.Raster.Backend != "gift" || cfg.Raster.Kernel != "lanczos" {
		t.Errorf("Raster = %+v, want gift/lanczos", cfg.Raster)
	}
	if cfg.Text.DefaultColor != "#00ff00" {
		t.Errorf("Text.DefaultColor = %q, want #00ff00", cfg.Text.DefaultColor)
	}
	if cfg.Watch.DebounceMs != 400 {
		t.Errorf("Watch.DebounceMs = %d, want 400", cfg.Watch.DebounceMs)
	}
}

func TestLoadDefaults(t *testing.T) {
	// Minimal config to test defaults
	cfg, err := Load(writeConfig(t, "server:\n  url: \"http://matrix.lan\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.TimeoutMs != 0 {
		t.Errorf("TimeoutMs = %d, want default 0", cfg.Server.TimeoutMs)
	}
	if cfg.Display.FallbackWidth != 64 || cfg.Display.FallbackHeight != 32 {
		t.Errorf("Display fallback = %dx%d, want default 64x32", cfg.Display.FallbackWidth, cfg.Display.FallbackHeight)
	}
	if cfg.Limits.MaxImages != 3 {
		t.Errorf("MaxImages = %d, want default 3", cfg.Limits.MaxImages)
	}
	if cfg.Limits.MinDelayMs != 200 {
		t.Errorf("MinDelayMs = %d, want default 200", cfg.Limits.MinDelayMs)
	}
	if cfg.Limits.MaxDelayMs != 2000 {
		t.Errorf("MaxDelayMs = %d, want default 2000", cfg.Limits.MaxDelayMs)
	}
	if cfg.Raster.Backend != "xdraw" || cfg.Raster.Kernel != "linear" {
		t.Errorf("Raster = %+v, want default xdraw/linear", cfg.Raster)
	}
	if cfg.Text.DefaultColor != "#ff0000" {
		t.Errorf("DefaultColor = %q, want default #ff0000", cfg.Text.DefaultColor)
	}
	if cfg.Watch.DebounceMs != 250 {
		t.Errorf("DebounceMs = %d, want default 250", cfg.Watch.DebounceMs)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "negative timeout",
			content: "server:\n  timeout_ms: -1\n",
			wantErr: "timeout_ms must not be negative",
		},
		{
			name:    "negative fallback",
			content: "display:\n  fallback_width: -64\n",
			wantErr: "fallback size must be positive",
		},
		{
			name:    "no images allowed",
			content: "limits:\n  max_images: -1\n",
			wantErr: "max_images must be at least 1",
		},
		{
			name:    "inverted delay range",
			content: "limits:\n  min_delay_ms: 3000\n  max_delay_ms: 1000\n",
			wantErr: "exceeds limits.max_delay_ms",
		},
		{
			name:    "short color",
			content: "text:\n  default_color: \"#f00\"\n",
			wantErr: "default_color must be #RRGGBB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file, got nil")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv(EnvServerURL, "")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("LoadOrDefault() = %+v, want defaults", cfg)
	}

	// parse errors are not swallowed
	if _, err := LoadOrDefault(writeConfig(t, "server: [")); err == nil {
		t.Error("LoadOrDefault() expected error for malformed file, got nil")
	}
}

func TestLoadOrDefaultEnvOverride(t *testing.T) {
	t.Setenv(EnvServerURL, "http://192.168.1.50")

	path := writeConfig(t, "server:\n  url: \"http://matrix.lan\"\n")
	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Server.URL != "http://192.168.1.50" {
		t.Errorf("Server.URL = %q, want env override", cfg.Server.URL)
	}
}

func TestUpdateServerURL(t *testing.T) {
	content := `# Test config
server:
  url: "http://old.local"
  timeout_ms: 100
`
	path := writeConfig(t, content)

	if err := UpdateServerURL(path, "http://new.local:8080"); err != nil {
		t.Fatalf("UpdateServerURL() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	result := string(data)
	if !strings.Contains(result, `url: "http://new.local:8080"`) {
		t.Errorf("url not updated correctly in: %s", result)
	}
	if !strings.Contains(result, "# Test config") {
		t.Errorf("comment not preserved in: %s", result)
	}
	if !strings.Contains(result, "timeout_ms: 100") {
		t.Errorf("timeout not preserved in: %s", result)
	}
}

func TestUpdateServerURLMissingEntry(t *testing.T) {
	path := writeConfig(t, "limits:\n  max_images: 3\n")
	if err := UpdateServerURL(path, "http://new.local"); err == nil {
		t.Error("UpdateServerURL() expected error, got nil")
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new-config.yaml")

	if err := CreateDefaultConfig(path, "http://matrix.home"); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}

	if !Exists(path) {
		t.Fatal("Config file was not created")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load created config: %v", err)
	}

	want := Default()
	want.Server.URL = "http://matrix.home"
	if *cfg != *want {
		t.Errorf("created config = %+v, want %+v", cfg, want)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(filepath.Join(tmpDir, "nonexistent.yaml")) {
		t.Error("Exists() = true for non-existent file")
	}

	existingPath := filepath.Join(tmpDir, "exists.yaml")
	os.WriteFile(existingPath, []byte("test"), 0644)

	if !Exists(existingPath) {
		t.Error("Exists() = false for existing file")
	}
}

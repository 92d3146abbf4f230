package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "recstore.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Mount == "" {
		t.Error("default mount is empty")
	}
	if cfg.Server.Port != "8077" {
		t.Errorf("default port = %q, want 8077", cfg.Server.Port)
	}
	if cfg.Record.MaxFrameLen != 255 {
		t.Errorf("default max_frame_len = %d, want 255", cfg.Record.MaxFrameLen)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
storage:
  mount: /media/flash
server:
  port: "9000"
record:
  max_frame_len: 32
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Mount != "/media/flash" {
		t.Errorf("mount = %q, want /media/flash", cfg.Storage.Mount)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Server.Port)
	}
	if cfg.Record.MaxFrameLen != 32 {
		t.Errorf("max_frame_len = %d, want 32", cfg.Record.MaxFrameLen)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of a missing explicit file should fail")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: http\n"},
		{"frame length zero", "record:\n  max_frame_len: 0\n"},
		{"frame length too large", "record:\n  max_frame_len: 300\n"},
		{"empty mount", "storage:\n  mount: \"\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := Load(path); err == nil {
				t.Errorf("Load should reject %s", tc.name)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got := expandPath("~/recordings")
	want := filepath.Join(home, "recordings")
	if got != want {
		t.Errorf("expandPath = %q, want %q", got, want)
	}

	if got := expandPath("/media/flash"); got != "/media/flash" {
		t.Errorf("absolute path changed to %q", got)
	}
}

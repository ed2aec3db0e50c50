package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadFrom() = %+v, want defaults", cfg)
	}
}

func TestDefaultConfig_Pseudonymized(t *testing.T) {
	p := DefaultConfig().Policy.ToPolicy()
	if p.UserName {
		t.Error("default policy should not export user names")
	}
	if !p.PseudoUserName || !p.PlayerID || !p.Timestamp {
		t.Errorf("default policy = %+v", p)
	}
}

func TestLoadFrom_File(t *testing.T) {
	path := writeConfig(t, `
tag_names = ["Alpha", "Beta"]
salt = "c2FsdA=="
log_dir = "/var/vrchat"
archive_path = "/data/yaiba.sqlite"

[policy]
user_name = true
pseudo_user_name = false
player_id = true
timestamp = false
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	want := Config{
		TagNames:    []string{"Alpha", "Beta"},
		Salt:        "c2FsdA==",
		LogDir:      "/var/vrchat",
		ArchivePath: "/data/yaiba.sqlite",
		Policy:      PolicyConfig{UserName: true, PlayerID: true},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("LoadFrom() = %+v, want %+v", cfg, want)
	}

	salt, err := cfg.SaltBytes()
	if err != nil || string(salt) != "salt" {
		t.Errorf("SaltBytes() = %q, %v", salt, err)
	}
}

func TestLoadFrom_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `log_dir = "/logs"`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.LogDir != "/logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.ArchivePath != def.ArchivePath || cfg.Policy != def.Policy {
		t.Errorf("unset keys should keep defaults, got %+v", cfg)
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{"corrupt", `log_dir = `, "parse config"},
		{"unknown key", "log_dir = \"/x\"\ncolour = \"red\"", "unknown keys colour"},
		{"bad salt", `salt = "not base64!"`, "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadFrom() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantSub)
			}
			if !reflect.DeepEqual(cfg, DefaultConfig()) {
				t.Errorf("failed LoadFrom() should return defaults, got %+v", cfg)
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Config{
		TagNames:    []string{"A", "B", "C"},
		Salt:        "c2FsdA==",
		LogDir:      "/logs",
		ArchivePath: "/archive.sqlite",
		Policy:      PolicyConfig{Timestamp: true},
	}

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory should only hold the config, got %d entries", len(entries))
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvSalt, "ZW52")
	t.Setenv(EnvLogDir, "/env/logs")
	t.Setenv(EnvArchive, "/env/archive.sqlite")
	t.Setenv(EnvExportUserName, "Yes")

	cfg := ApplyEnvOverrides(Config{Salt: "file", LogDir: "/file"})

	want := Config{
		Salt:        "ZW52",
		LogDir:      "/env/logs",
		ArchivePath: "/env/archive.sqlite",
		Policy:      PolicyConfig{UserName: true},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("ApplyEnvOverrides() = %+v, want %+v", cfg, want)
	}
}

func TestApplyEnvOverrides_EmptyKeepsFile(t *testing.T) {
	t.Setenv(EnvSalt, "")
	t.Setenv(EnvLogDir, "")
	t.Setenv(EnvArchive, "")
	t.Setenv(EnvExportUserName, "")

	in := Config{Salt: "file", LogDir: "/file", ArchivePath: "/a", Policy: PolicyConfig{UserName: true}}
	if got := ApplyEnvOverrides(in); !reflect.DeepEqual(got, in) {
		t.Errorf("ApplyEnvOverrides() = %+v, want unchanged", got)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{" yes ", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"nope", false},
	}
	for _, tt := range tests {
		if got := parseBool(tt.in); got != tt.want {
			t.Errorf("parseBool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	tests := []struct {
		path, home, want string
	}{
		{"~/logs", "/home/u", filepath.Join("/home/u", "logs")},
		{"/abs", "/home/u", "/abs"},
		{"~", "/home/u", "~"},
		{"~other/x", "/home/u", "~other/x"},
		{"~/logs", "", "~/logs"},
		{"", "/home/u", ""},
	}
	for _, tt := range tests {
		if got := expandHome(tt.path, tt.home); got != tt.want {
			t.Errorf("expandHome(%q, %q) = %q, want %q", tt.path, tt.home, got, tt.want)
		}
	}
}

func TestSaltBytes_Empty(t *testing.T) {
	salt, err := Config{}.SaltBytes()
	if salt != nil || err != nil {
		t.Errorf("SaltBytes() = %v, %v, want nil, nil", salt, err)
	}
}

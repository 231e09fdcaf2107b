package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/vbind/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Mount != DefaultMount {
		t.Errorf("Mount = %q, want %q", cfg.Mount, DefaultMount)
	}
	if cfg.DirectivePrefix != DefaultPrefix {
		t.Errorf("DirectivePrefix = %q, want %q", cfg.DirectivePrefix, DefaultPrefix)
	}
	if cfg.Dev.Port != DefaultPort {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, DefaultPort)
	}
	if !cfg.Dev.Watch {
		t.Error("Dev.Watch should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, `{
  "name": "todo",
  "template": "pages/index.html",
  "data": "s3://bucket/data.json",
  "dev": {"port": 4000, "watch": false}
}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "todo" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Dev.Port != 4000 {
		t.Errorf("Dev.Port = %d, want 4000", cfg.Dev.Port)
	}
	if cfg.Dev.Watch {
		t.Error("Dev.Watch should be false")
	}
	if cfg.Dev.Host != DefaultHost {
		t.Errorf("Dev.Host = %q, want default", cfg.Dev.Host)
	}
	if cfg.Mount != DefaultMount {
		t.Errorf("Mount = %q, want default", cfg.Mount)
	}
	if got, want := cfg.TemplatePath(), filepath.Join(dir, "pages/index.html"); got != want {
		t.Errorf("TemplatePath() = %q, want %q", got, want)
	}
	if got := cfg.DataPath(); got != "s3://bucket/data.json" {
		t.Errorf("DataPath() = %q, want URI unchanged", got)
	}
	if cfg.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, YAMLConfigFileName, `
template: index.html
mount: main
directivePrefix: x-
source:
  region: eu-west-1
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mount != "main" || cfg.DirectivePrefix != "x-" {
		t.Errorf("Mount/Prefix = %q/%q", cfg.Mount, cfg.DirectivePrefix)
	}
	if cfg.Source.Region != "eu-west-1" {
		t.Errorf("Source.Region = %q", cfg.Source.Region)
	}
	if cfg.DataPath() != "" {
		t.Errorf("DataPath() = %q, want empty", cfg.DataPath())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); !errors.HasCode(err, "E061") {
		t.Errorf("missing config error = %v, want E061", err)
	}

	path := writeFile(t, dir, ConfigFileName, `{not json`)
	if _, err := LoadFile(path); !errors.HasCode(err, "E060") {
		t.Errorf("bad json error = %v, want E060", err)
	}

	path = writeFile(t, dir, ConfigFileName, `{"dev": {"port": 70000}}`)
	if _, err := LoadFile(path); !errors.HasCode(err, "E062") {
		t.Errorf("bad port error = %v, want E062", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty template", func(c *Config) { c.Template = "" }},
		{"negative port", func(c *Config) { c.Dev.Port = -1 }},
		{"bad prefix", func(c *Config) { c.DirectivePrefix = "v =" }},
		{"relative metrics path", func(c *Config) { c.Dev.MetricsPath = "metrics" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.HasCode(err, "E062") {
				t.Errorf("Validate() = %v, want E062", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.Name = "saved"
	cfg.Dev.Port = 4321

	for _, name := range []string{ConfigFileName, "other.yml"} {
		path := filepath.Join(dir, name)
		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("SaveTo(%s) error = %v", name, err)
		}
		loaded, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) error = %v", name, err)
		}
		if loaded.Name != "saved" || loaded.Dev.Port != 4321 {
			t.Errorf("%s round trip = %+v", name, loaded)
		}
		if loaded.Path() != path {
			t.Errorf("Path() = %q, want %q", loaded.Path(), path)
		}
	}
}

func TestDevAddress(t *testing.T) {
	cfg := New()
	cfg.Dev.Host = "0.0.0.0"
	cfg.Dev.Port = 8080
	if cfg.DevAddress() != "0.0.0.0:8080" {
		t.Errorf("DevAddress() = %q", cfg.DevAddress())
	}
	if cfg.DevURL() != "http://0.0.0.0:8080" {
		t.Errorf("DevURL() = %q", cfg.DevURL())
	}
}

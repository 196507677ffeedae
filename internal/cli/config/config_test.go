package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := &Config{
		Servers: []Server{
			{URL: "https://atrium.example.com", Alias: "prod"},
			{URL: "http://localhost:8080", Alias: "local"},
		},
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(loaded.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(loaded.Servers))
	}
	if loaded.Servers[0].URL != "https://atrium.example.com" || loaded.Servers[0].Alias != "prod" {
		t.Errorf("unexpected first server: %+v", loaded.Servers[0])
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestGetServerByAlias(t *testing.T) {
	cfg := &Config{
		Servers: []Server{
			{URL: "http://a.example.com", Alias: "a"},
			{URL: "http://b.example.com", Alias: "b"},
		},
	}

	server, err := cfg.GetServerByAlias("b")
	if err != nil {
		t.Fatalf("GetServerByAlias: %v", err)
	}
	if server.URL != "http://b.example.com" {
		t.Errorf("unexpected server: %+v", server)
	}

	if _, err := cfg.GetServerByAlias("missing"); err == nil {
		t.Error("expected error for unknown alias")
	}
}

func TestServerValidate(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		shouldError bool
	}{
		{name: "https", url: "https://atrium.example.com", shouldError: false},
		{name: "http with port", url: "http://localhost:8080", shouldError: false},
		{name: "empty", url: "", shouldError: true},
		{name: "no scheme", url: "atrium.example.com", shouldError: true},
		{name: "wrong scheme", url: "ftp://atrium.example.com", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := Server{URL: tt.url, Alias: "x"}
			err := server.Validate()
			if tt.shouldError && err == nil {
				t.Errorf("expected error for %q", tt.url)
			}
			if !tt.shouldError && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.url, err)
			}
		})
	}
}

func TestFindConfigFileSearchesUpwards(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(root, ConfigFileName)
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile: %v", err)
	}

	// Resolve symlinks before comparing (macOS temp dirs)
	wantResolved, _ := filepath.EvalSymlinks(path)
	foundResolved, _ := filepath.EvalSymlinks(found)
	if foundResolved != wantResolved {
		t.Errorf("expected %s, found %s", wantResolved, foundResolved)
	}
}

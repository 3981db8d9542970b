package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
	"github.com/wricardo/mcp-training/sokoban/game/service"
)

func createValidConfig() *engine.LevelConfig {
	return &engine.LevelConfig{
		Name:        "Test Level",
		Description: "Test level",
		Layout: []string{
			"######",
			"# @$.#",
			"######",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.LevelConfig) {
	t.Helper()

	format, ok := FormatForPath(name)
	if !ok {
		format = FormatJSON
		name += ".json"
	}
	data, err := EncodeLevel(config, format)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func writeRaw(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "classic", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Test Level" {
			t.Errorf("Expected classic.json to be the default, got '%s'", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in level", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without level files, got error: %v", err)
		}
		if manager.GetDefault().Name != engine.DefaultLevelName {
			t.Errorf("Expected built-in default, got '%s'", manager.GetDefault().Name)
		}
	})

	t.Run("first valid level when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeRaw(t, dir, "a_broken.json", `{"name": "broken", "layout": ["#"]}`)
		second := createValidConfig()
		second.Name = "Second"
		writeConfigFile(t, dir, "b_second", second)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Second" {
			t.Errorf("Expected 'Second' as default, got '%s'", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "corridor", createValidConfig())

	yamlLevel := createValidConfig()
	yamlLevel.Name = "From YAML"
	yamlLevel.Author = "tester"
	writeConfigFile(t, dir, "yamlish.yaml", yamlLevel)

	writeRaw(t, dir, "short.yml", "name: Short\nlayout:\n  - \"#####\"\n  - \"#@$.#\"\n  - \"#####\"\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load json level", func(t *testing.T) {
		config, err := manager.LoadConfig("corridor")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Test Level" {
			t.Errorf("Expected config name 'Test Level', got '%s'", config.Name)
		}
	})

	t.Run("load with extension", func(t *testing.T) {
		config, err := manager.LoadConfig("corridor.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Test Level" {
			t.Errorf("Expected config name 'Test Level', got '%s'", config.Name)
		}
	})

	t.Run("load yaml level", func(t *testing.T) {
		config, err := manager.LoadConfig("yamlish")
		if err != nil {
			t.Fatalf("Failed to load yaml config: %v", err)
		}
		if config.Name != "From YAML" || config.Author != "tester" {
			t.Errorf("Unexpected yaml config: %+v", config)
		}
		if len(config.Layout) != 3 || config.Layout[1] != "# @$.#" {
			t.Errorf("Unexpected layout: %q", config.Layout)
		}
	})

	t.Run("load yml level", func(t *testing.T) {
		config, err := manager.LoadConfig("short")
		if err != nil {
			t.Fatalf("Failed to load yml config: %v", err)
		}
		if config.Name != "Short" {
			t.Errorf("Expected 'Short', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("corridor")
		config2, err := manager.LoadConfig("corridor.json")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
		if !errors.Is(err, service.ErrNotFound) {
			t.Errorf("Expected error to match service.ErrNotFound, got %v", err)
		}
	})

	invalid := []struct {
		name string
		file string
		data string
	}{
		{"missing layout", "nolayout.json", `{"name": "No layout"}`},
		{"unknown field", "extra.json", `{"name": "Extra", "layout": ["#@$.#"], "time_limit": 10}`},
		{"bad character", "badchar.json", `{"name": "Bad", "layout": ["#@$.X"]}`},
		{"unsolvable", "nogoal.json", `{"name": "No goal", "layout": ["#@$ #"]}`},
		{"crate on goal marker", "star.json", `{"name": "Star", "layout": ["#@$.*#"]}`},
	}
	for _, test := range invalid {
		t.Run("invalid "+test.name, func(t *testing.T) {
			writeRaw(t, dir, test.file, test.data)
			_, err := manager.LoadConfig(test.file)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		writeRaw(t, dir, "malformed.json", `{"name": "Malformed", invalid json}`)
		if _, err := manager.LoadConfig("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("malformed YAML", func(t *testing.T) {
		writeRaw(t, dir, "malformed.yaml", "name: [unterminated\n")
		if _, err := manager.LoadConfig("malformed.yaml"); err == nil {
			t.Error("Expected error for malformed YAML")
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	classic := createValidConfig()
	classic.Name = "Classic"
	writeConfigFile(t, dir, "classic", classic)

	big := &engine.LevelConfig{Name: "Big", Layout: engine.DefaultLevelConfig().Layout}
	writeConfigFile(t, dir, "big.yaml", big)

	writeRaw(t, dir, "broken.json", `{"name": ""}`)
	writeRaw(t, dir, "notes.txt", "not a level")
	if err := os.Mkdir(filepath.Join(dir, "subdir.json"), 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 valid configs, got %d", len(configs))
	}

	if configs[0].ConfigID != "big" || configs[1].ConfigID != "classic" {
		t.Errorf("Expected sorted IDs [big classic], got [%s %s]", configs[0].ConfigID, configs[1].ConfigID)
	}
	if configs[0].Filename != "big.yaml" {
		t.Errorf("Expected filename big.yaml, got %s", configs[0].Filename)
	}
	if configs[0].Width != 9 || configs[0].Height != 6 || configs[0].Crates != 4 {
		t.Errorf("Unexpected dimensions for big: %+v", configs[0])
	}
	if configs[1].Crates != 1 {
		t.Errorf("Expected 1 crate in classic, got %d", configs[1].Crates)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())
	other := createValidConfig()
	other.Name = "Other"
	writeConfigFile(t, dir, "other", other)

	manager, _ := NewManager(dir)

	if err := manager.SetDefault("other"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Other" {
		t.Errorf("Expected default 'Other', got '%s'", manager.GetDefault().Name)
	}

	if err := manager.SetDefault("missing"); err != ErrConfigNotFound {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, _ := NewManager(dir)

	t.Run("save json", func(t *testing.T) {
		if err := manager.SaveConfig("saved", createValidConfig()); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Errorf("Expected saved.json on disk: %v", err)
		}
	})

	t.Run("save yaml", func(t *testing.T) {
		cfg := createValidConfig()
		cfg.Name = "Saved YAML"
		if err := manager.SaveConfig("saved2.yaml", cfg); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "saved2.yaml"))
		if err != nil {
			t.Fatalf("Expected saved2.yaml on disk: %v", err)
		}
		if !strings.Contains(string(data), "name: Saved YAML") {
			t.Errorf("Expected YAML document, got:\n%s", data)
		}

		manager.RefreshCache()
		loaded, err := manager.LoadConfig("saved2")
		if err != nil {
			t.Fatalf("Failed to reload saved level: %v", err)
		}
		if loaded.Name != "Saved YAML" {
			t.Errorf("Expected 'Saved YAML', got '%s'", loaded.Name)
		}
	})

	t.Run("reject invalid level", func(t *testing.T) {
		cfg := createValidConfig()
		cfg.Layout = []string{"#@ #"}
		err := manager.SaveConfig("bad", cfg)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("reject path in name", func(t *testing.T) {
		err := manager.SaveConfig("../escape", createValidConfig())
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())
	manager, _ := NewManager(dir)

	first, _ := manager.LoadConfig("classic")

	updated := createValidConfig()
	updated.Name = "Updated"
	writeConfigFile(t, dir, "classic", updated)

	cached, _ := manager.LoadConfig("classic")
	if cached != first {
		t.Error("Expected cached level before refresh")
	}

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	reloaded, _ := manager.LoadConfig("classic")
	if reloaded.Name != "Updated" {
		t.Errorf("Expected updated level after refresh, got '%s'", reloaded.Name)
	}
	if manager.GetDefault().Name != "Updated" {
		t.Errorf("Expected default to be reloaded, got '%s'", manager.GetDefault().Name)
	}
}

func TestManager_ConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "classic", createValidConfig())
	manager, _ := NewManager(dir)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadConfig("classic"); err != nil {
				errs <- err
			}
			manager.ListConfigs()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent load failed: %v", err)
	}
}

func TestDecodeLevel(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		wantErr bool
	}{
		{"json", `{"name": "a", "layout": ["#@$.#"]}`, FormatJSON, false},
		{"yaml", "name: a\nlayout: ['#@$.#']\n", FormatYAML, false},
		{"yaml number name", "name: 5\nlayout: ['#@$.#']\n", FormatYAML, true},
		{"empty layout", `{"name": "a", "layout": []}`, FormatJSON, true},
		{"too many rows", `{"name": "a", "layout": [` + strings.Repeat(`"#",`, 64) + `"#"]}`, FormatJSON, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeLevel([]byte(test.data), test.format)
			if (err != nil) != test.wantErr {
				t.Errorf("Expected error=%v, got %v", test.wantErr, err)
			}
		})
	}
}

package cli

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir changes the working directory for the test and restores it afterwards.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore chdir %s: %v", prev, err)
		}
	})
}

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := CLIConfig{
		DBPath:        "/data/tracker.db",
		Dev:           true,
		UserCacheSize: 64,
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(tmp, ".config", "pt", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not found: %v", err)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg != (CLIConfig{}) {
		t.Error("expected zero-value config for missing file")
	}
}

func TestLoadSettingsPrecedence(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	unsetEnv(t, "PT_DB")
	unsetEnv(t, "PT_DEV")

	if err := saveConfig(CLIConfig{DBPath: "/from/file.db", UserCacheSize: 32}); err != nil {
		t.Fatalf("save: %v", err)
	}

	cfg, err := loadSettings(false)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if cfg.DBPath != "/from/file.db" || cfg.UserCacheSize != 32 || cfg.Dev {
		t.Errorf("file only: %+v", cfg)
	}

	t.Setenv("PT_DB", "/from/env.db")
	t.Setenv("PT_DEV", "true")
	cfg, err = loadSettings(false)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if cfg.DBPath != "/from/env.db" || !cfg.Dev {
		t.Errorf("env override: %+v", cfg)
	}

	oldDB, oldDev := flagDB, flagDev
	t.Cleanup(func() { flagDB, flagDev = oldDB, oldDev })
	flagDB, flagDev = "/from/flag.db", false
	cfg, err = loadSettings(true)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if cfg.DBPath != "/from/flag.db" || cfg.Dev {
		t.Errorf("flag override: %+v", cfg)
	}
}

func TestLoadSettingsInvalidDev(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PT_DEV", "sometimes")

	if _, err := loadSettings(false); err == nil {
		t.Error("expected error for invalid PT_DEV")
	}
}

func TestLoadSettingsFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	unsetEnv(t, "PT_DB")
	unsetEnv(t, "PT_DEV")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PT_DB=/from/dotenv.db\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := loadSettings(false)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if cfg.DBPath != "/from/dotenv.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/from/dotenv.db")
	}
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PT_DB", "/from/env.db")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PT_DB=/from/dotenv.db\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := loadSettings(false)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if cfg.DBPath != "/from/env.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/from/env.db")
	}
}

func TestConfigSet(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := runConfigSet("user_cache_size", "128"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := runConfigSet("dev", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UserCacheSize != 128 || !cfg.Dev {
		t.Errorf("cfg = %+v, want cache 128 and dev", cfg)
	}

	for _, tt := range [][2]string{{"colour", "blue"}, {"dev", "maybe"}, {"user_cache_size", "-1"}} {
		if err := runConfigSet(tt[0], tt[1]); err == nil {
			t.Errorf("set %s=%s: expected error", tt[0], tt[1])
		}
	}
}

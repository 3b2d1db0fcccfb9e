package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	sample, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	requireContains(t, string(sample), "[paths]")
}

func TestConfigInitRefusesExistingFile(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	if err := os.WriteFile(target, []byte("# keep me\n"), 0o644); err != nil {
		t.Fatalf("write existing config: %v", err)
	}

	_, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}
	requireContains(t, err.Error(), "--overwrite")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
	sample, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if string(sample) == "# keep me\n" {
		t.Fatal("expected --overwrite to replace the file")
	}
}

func TestConfigValidateWarnsWithoutAccounts(t *testing.T) {
	base := t.TempDir()
	content := "[paths]\nmedia_dir = \"" + filepath.Join(base, "media") + "\"\nlog_dir = \"" + filepath.Join(base, "logs") + "\"\n"
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := runCLI(t, []string{"config", "validate"}, configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "nobody can log in")
	requireContains(t, out, "auth.secret is unset")
	requireContains(t, out, "Configuration valid")
}

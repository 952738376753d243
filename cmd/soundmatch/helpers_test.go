package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundmatch/internal/config"
	"soundmatch/internal/resolve"
	"soundmatch/internal/soundtrack"
	"soundmatch/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	cachePath  string
	catalog    *testsupport.FakeCatalog
	deps       dependencies
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("NO_COLOR", "1")

	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		cachePath:  filepath.Join(base, "cache", "resolutions.db"),
		catalog:    testsupport.NewFakeCatalog(),
	}
	writeTestConfig(t, env.configPath, env.cachePath, true)
	env.deps = dependencies{
		newCatalog: func(*config.Config, *slog.Logger) (resolve.Catalog, error) {
			return env.catalog, nil
		},
		newComposers: func(*config.Config) (soundtrack.ComposerSource, error) {
			return nil, nil
		},
	}
	return env
}

func writeTestConfig(t *testing.T, path, cachePath string, withCredentials bool) {
	t.Helper()
	var b strings.Builder
	if withCredentials {
		b.WriteString("[spotify]\nclient_id = \"test-id\"\nclient_secret = \"test-secret\"\n\n")
	}
	fmt.Fprintf(&b, "[cache]\nenabled = true\npath = %q\n\n", cachePath)
	b.WriteString("[logging]\nlevel = \"error\"\n")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWith(env.deps)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n--- output ---\n%s", needle, haystack)
	}
}

var errCatalogUnavailable = errors.New("catalog must not be built")

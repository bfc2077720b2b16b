package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/config"
	"marquee/internal/daemon"
	"marquee/internal/logging"
	"marquee/internal/store"
	"marquee/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *store.Store
	daemon     *daemon.Daemon
	configPath string
	api        string
}

func clearMarqueeEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"ADMIN_PASSWORD", "API_BIND", "VIDEO_DIR", "DATA_DIR", "LOG_LEVEL"} {
		t.Setenv("MARQUEE_"+name, "")
		t.Setenv(name, "")
	}
	t.Setenv(tokenEnvVar, "")
	t.Setenv("NO_COLOR", "1")
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	clearMarqueeEnv(t)

	cfg := testsupport.NewConfig(t, testsupport.WithAdminPassword("hunter2"))
	testsupport.WriteVideo(t, cfg.Paths.VideoDir, "intro", "welcome.mp4")
	testsupport.WriteVideo(t, cfg.Paths.VideoDir, "intro", "cheers.mp4")
	testsupport.WriteVideo(t, cfg.Paths.VideoDir, "memories", "beach.mp4")

	configPath := filepath.Join(testsupport.BaseDir(cfg), "marquee.toml")
	writeTestConfig(t, configPath, cfg)

	st := testsupport.MustOpenStore(t, cfg)
	d, err := daemon.New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		store:      st,
		daemon:     d,
		configPath: configPath,
		api:        d.Addr(),
	}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	flags := []string{"--config", env.configPath, "--api", env.api}
	stdout, _, err := runCLI(t, append(flags, args...))
	return stdout, err
}

func (env *cliTestEnv) login(t *testing.T) string {
	t.Helper()
	out, err := env.run(t, "login", "--quiet")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	token := strings.TrimSpace(out)
	if token == "" {
		t.Fatal("login printed no token")
	}
	return token
}

func runCLI(t *testing.T, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nvideo_dir = %q\ndata_dir = %q\nlog_dir = %q\napi_bind = %q\n\n[admin]\npassword = %q\n",
		cfg.Paths.VideoDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.Admin.Password,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

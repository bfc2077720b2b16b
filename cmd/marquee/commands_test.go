package main

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"marquee/internal/api"
	"marquee/internal/testsupport"
)

func TestInventoryCommandListsVideos(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "inventory")
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	requireContains(t, out, "welcome.mp4")
	requireContains(t, out, "beach.mp4")
	requireContains(t, out, "2 categories, 3 videos, 0 plays")

	out, err = env.run(t, "inventory", "--json")
	if err != nil {
		t.Fatalf("inventory --json: %v", err)
	}
	var resp api.InventoryResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode inventory json: %v", err)
	}
	if resp.TotalVideos != 3 || resp.TotalCategories != 2 {
		t.Fatalf("unexpected totals: %+v", resp)
	}
}

func TestStateCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "state")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	requireContains(t, out, "Paused:      no")
	requireContains(t, out, "Hidden:      none")
}

func TestAdminCommandsRequireToken(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, args := range [][]string{
		{"control", "pause"},
		{"submissions", "list"},
		{"inventory", "reload"},
		{"logout"},
	} {
		_, err := env.run(t, args...)
		if err == nil || !strings.Contains(err.Error(), "admin token required") {
			t.Fatalf("%v: expected token error, got %v", args, err)
		}
	}

	_, err := env.run(t, "--token", "bogus", "control", "pause")
	if err == nil || !strings.Contains(err.Error(), "rejected the admin token") {
		t.Fatalf("expected rejected token error, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := env.run(t, "login", "--password", "nope")
	if err == nil || !strings.Contains(err.Error(), "invalid password") {
		t.Fatalf("expected invalid password error, got %v", err)
	}
}

func TestControlCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	token := env.login(t)

	out, err := env.run(t, "--token", token, "control", "pause")
	if err != nil {
		t.Fatalf("control pause: %v", err)
	}
	requireContains(t, out, "Paused:      yes")

	out, err = env.run(t, "--token", token, "control", "hide", "slide-2")
	if err != nil {
		t.Fatalf("control hide: %v", err)
	}
	requireContains(t, out, "Hidden:      slide-2")

	out, err = env.run(t, "--token", token, "control", "goto", "--index", "3", "--slide", "slide-4")
	if err != nil {
		t.Fatalf("control goto: %v", err)
	}
	requireContains(t, out, "slide-4 (index 3")

	if _, err := env.run(t, "--token", token, "control", "goto"); err == nil {
		t.Fatal("expected goto without a target to fail")
	}

	out, err = env.run(t, "state")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	requireContains(t, out, "Paused:      yes")
}

func TestSubmissionsModeration(t *testing.T) {
	env := setupCLITestEnv(t)
	token := env.login(t)

	sub := testsupport.NewSubmission(t, env.store, "Dancing on the pier", "Learn to surf", "Ada")

	out, err := env.run(t, "--token", token, "submissions", "list", "--status", "pending")
	if err != nil {
		t.Fatalf("submissions list: %v", err)
	}
	requireContains(t, out, "Dancing on the pier")
	requireContains(t, out, "Ada")

	id := strconv.FormatInt(sub.ID, 10)
	out, err = env.run(t, "--token", token, "submissions", "approve", id)
	if err != nil {
		t.Fatalf("submissions approve: %v", err)
	}
	requireContains(t, out, "Slides created: 2")

	out, err = env.run(t, "--token", token, "submissions", "reject", id)
	if err != nil {
		t.Fatalf("submissions reject: %v", err)
	}
	requireContains(t, out, "removed: 2")

	if _, err := env.run(t, "--token", token, "submissions", "delete", id); err != nil {
		t.Fatalf("submissions delete: %v", err)
	}
	if _, err := env.run(t, "--token", token, "submissions", "approve", id); err == nil {
		t.Fatal("expected approving a deleted submission to fail")
	}
	if _, err := env.run(t, "--token", token, "submissions", "approve", "abc"); err == nil {
		t.Fatal("expected invalid id to fail")
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	env := setupCLITestEnv(t)
	token := env.login(t)

	out, err := env.run(t, "--token", token, "logout")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	requireContains(t, out, "Logged out")

	if _, err := env.run(t, "--token", token, "submissions", "list"); err == nil {
		t.Fatal("expected token to be rejected after logout")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Daemon ==")
	requireContains(t, out, "(ok, up")
	requireContains(t, out, "Video directory:")
}

func TestStateCommandDaemonUnavailable(t *testing.T) {
	clearMarqueeEnv(t)
	_, _, err := runCLI(t, []string{"--api", "127.0.0.1:1", "state"})
	if err == nil || !strings.Contains(err.Error(), "not reachable") {
		t.Fatalf("expected unreachable error, got %v", err)
	}
}

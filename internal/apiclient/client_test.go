package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/api"
	"marquee/internal/apiclient"
	"marquee/internal/daemon"
	"marquee/internal/logging"
	"marquee/internal/store"
	"marquee/internal/testsupport"
)

func startDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	testsupport.WriteVideo(t, cfg.Paths.VideoDir, "intro", "a.mp4")
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	d, err := daemon.New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmptyBind(t *testing.T) {
	client, err := apiclient.New("")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client for empty bind")
	}
	if _, err := client.Health(context.Background()); !errors.Is(err, apiclient.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewNormalizesBind(t *testing.T) {
	client, err := apiclient.New("127.0.0.1:8000")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if got := client.BaseURL(); got != "http://127.0.0.1:8000" {
		t.Fatalf("BaseURL = %q", got)
	}
}

func TestClientModerationRoundTrip(t *testing.T) {
	srv := startDaemon(t)
	ctx := context.Background()

	public, err := apiclient.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := public.Submissions(ctx, ""); !apiclient.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := public.Login(ctx, "nope"); !apiclient.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized login, got %v", err)
	}

	login, err := public.Login(ctx, "test")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	admin, err := apiclient.New(srv.URL, apiclient.WithToken(login.Token))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ok, err := admin.Verify(ctx); err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}

	submitted, err := public.Submit(ctx, api.SubmissionRequest{Memory: "m", Resolution: "r"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	result, err := admin.Approve(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if result.SlidesCreated != 2 {
		t.Fatalf("slides created = %d", result.SlidesCreated)
	}

	list, err := admin.Submissions(ctx, "approved")
	if err != nil {
		t.Fatalf("Submissions: %v", err)
	}
	if len(list.Submissions) != 1 || list.Counts["approved"] != 1 {
		t.Fatalf("list = %+v", list)
	}

	if _, err := admin.ResetToPending(ctx, submitted.ID); err != nil {
		t.Fatalf("ResetToPending: %v", err)
	}
	if _, err := admin.Delete(ctx, submitted.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = admin.Reject(ctx, submitted.ID)
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}

	if err := admin.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ok, err := admin.Verify(ctx); err != nil || ok {
		t.Fatalf("Verify after logout = %v, %v", ok, err)
	}
}

func TestClientSlideshowCommands(t *testing.T) {
	srv := startDaemon(t)
	ctx := context.Background()

	public, _ := apiclient.New(srv.URL)
	login, err := public.Login(ctx, "test")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	admin, _ := apiclient.New(srv.URL, apiclient.WithToken(login.Token))

	state, err := admin.Control(ctx, api.ControlRequest{Action: "pause"})
	if err != nil || !state.IsPaused {
		t.Fatalf("pause = %+v, %v", state, err)
	}
	if _, err := admin.Control(ctx, api.ControlRequest{Action: "rewind"}); err == nil {
		t.Fatal("expected error for unknown action")
	}
	state, err = admin.Hide(ctx, "intro")
	if err != nil || !state.IsHidden("intro") {
		t.Fatalf("hide = %+v, %v", state, err)
	}
	state, err = admin.Unhide(ctx, "intro")
	if err != nil || state.IsHidden("intro") {
		t.Fatalf("unhide = %+v, %v", state, err)
	}

	polled, err := public.State(ctx)
	if err != nil || !polled.IsPaused {
		t.Fatalf("state = %+v, %v", polled, err)
	}

	inv, err := admin.Inventory(ctx)
	if err != nil || inv.TotalVideos != 1 {
		t.Fatalf("inventory = %+v, %v", inv, err)
	}
	reload, err := admin.ReloadInventory(ctx)
	if err != nil || reload.TotalVideos != 1 {
		t.Fatalf("reload = %+v, %v", reload, err)
	}
	health, err := public.Health(ctx)
	if err != nil || health.Status != "ok" {
		t.Fatalf("health = %+v, %v", health, err)
	}
}

func TestErrorMessageDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "bad things"})
	}))
	defer srv.Close()

	client, _ := apiclient.New(srv.URL)
	_, err := client.Slides(context.Background())
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "bad things" {
		t.Fatalf("expected decoded error, got %v", err)
	}
}

func TestIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, _ := apiclient.New(url)
	_, err := client.Health(context.Background())
	if !apiclient.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if apiclient.IsUnavailable(nil) {
		t.Fatal("nil error should not be unavailable")
	}
}

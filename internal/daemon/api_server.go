package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/deck"
	"marquee/internal/logging"
	"marquee/internal/slideshow"
	"marquee/internal/store"
)

const maxRequestBody = 64 << 10

type apiServer struct {
	cfg    *config.Config
	bind   string
	logger *slog.Logger
	daemon *Daemon
	root   http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		cfg:    cfg,
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	srv.handle(mux, "GET /api/health", srv.handleHealth)
	srv.handle(mux, "GET /api/config", srv.handleConfig)
	srv.handle(mux, "GET /api/slideshow/state", srv.handleState)
	srv.handle(mux, "POST /api/slideshow/sync", srv.handleSync)
	srv.handle(mux, "POST /api/slideshow/video-switched", srv.handleVideoSwitched)
	srv.handle(mux, "GET /api/slideshow/slides", srv.handleSlides)
	srv.handle(mux, "GET /api/injected-slides", srv.handleInjectedSlides)
	srv.handle(mux, "POST /api/submissions", srv.handleSubmit)
	srv.handle(mux, "GET /api/submissions/approved", srv.handleApproved)
	srv.handle(mux, "GET /api/video/{category}", srv.handleNextVideo)
	srv.handle(mux, "POST /api/video/{category}/played", srv.handleVideoPlayed)
	srv.handle(mux, "GET /api/inventory", srv.handleInventory)
	srv.handle(mux, "POST /api/admin/login", srv.handleLogin)

	srv.handle(mux, "POST /api/admin/logout", srv.requireAdmin(srv.handleLogout))
	srv.handle(mux, "GET /api/admin/verify", srv.requireAdmin(srv.handleVerify))
	srv.handle(mux, "POST /api/slideshow/control", srv.requireAdmin(srv.handleControl))
	srv.handle(mux, "POST /api/slideshow/hide/{id}", srv.requireAdmin(srv.handleHide))
	srv.handle(mux, "POST /api/slideshow/unhide/{id}", srv.requireAdmin(srv.handleUnhide))
	srv.handle(mux, "POST /api/slideshow/mute", srv.requireAdmin(srv.handleMute(true)))
	srv.handle(mux, "POST /api/slideshow/unmute", srv.requireAdmin(srv.handleMute(false)))
	srv.handle(mux, "GET /api/submissions", srv.requireAdmin(srv.handleListSubmissions))
	srv.handle(mux, "PUT /api/submissions/{id}/approve", srv.requireAdmin(srv.handleModeration("approve", d.moderation.Approve)))
	srv.handle(mux, "PUT /api/submissions/{id}/reject", srv.requireAdmin(srv.handleModeration("reject", d.moderation.Reject)))
	srv.handle(mux, "PUT /api/submissions/{id}/pending", srv.requireAdmin(srv.handleModeration("pending", d.moderation.ResetToPending)))
	srv.handle(mux, "DELETE /api/submissions/{id}", srv.requireAdmin(srv.handleModeration("delete", d.moderation.Delete)))
	srv.handle(mux, "POST /api/inventory/reload", srv.requireAdmin(srv.handleReload))

	metricsHandler := promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})
	mux.Handle("GET /metrics", metricsHandler)

	srv.root = srv.withCorrelationID(mux)
	return srv
}

// handle registers h under pattern and counts its responses by route and code.
func (s *apiServer) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	requests := s.daemon.metrics.httpRequests
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		requests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *apiServer) withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithCorrelationID(r.Context(), id)))
	})
}

func (s *apiServer) handler() http.Handler {
	return s.root
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api listen: api_bind is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.root,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_server_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check api_bind and restart the daemon"))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	server := s.server
	listener := s.listener
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	if listener != nil {
		_ = listener.Close()
	}
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := s.daemon.Status()
	var uptime int64
	if !status.StartedAt.IsZero() {
		uptime = int64(time.Since(status.StartedAt).Seconds())
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:          "ok",
		UptimeSeconds:   uptime,
		TotalCategories: status.TotalCategories,
		TotalVideos:     status.TotalVideos,
		TotalPlays:      status.TotalPlays,
		InjectedSlides:  status.InjectedSlides,
	})
}

func (s *apiServer) handleConfig(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.NewClientConfig(s.cfg))
}

func (s *apiServer) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.machine.State(r.Context()))
}

func (s *apiServer) handleSync(w http.ResponseWriter, r *http.Request) {
	var req api.SyncRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	slideID := strings.TrimSpace(req.SlideID)
	if slideID == "" {
		s.writeServiceError(w, r, fmt.Errorf("%w: slideId is required", store.ErrValidation))
		return
	}
	if req.SlideIndex == nil {
		s.writeServiceError(w, r, fmt.Errorf("%w: slideIndex is required", store.ErrValidation))
		return
	}
	state := s.daemon.machine.Sync(r.Context(), slideshow.SyncReport{
		SlideID:        slideID,
		SlideIndex:     *req.SlideIndex,
		SlideDuration:  req.SlideDuration,
		SlideStartedAt: req.SlideStartedAt,
		TotalSlides:    req.TotalSlides,
	})
	s.writeJSON(w, http.StatusOK, state)
}

func (s *apiServer) handleVideoSwitched(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.machine.ClearVideoSwitchRequest(r.Context()))
}

func (s *apiServer) handleSlides(w http.ResponseWriter, r *http.Request) {
	static, err := deck.LoadStatic(s.cfg.Paths.DeckFile)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	injected := s.daemon.injector.Snapshot()
	merged := deck.Merge(static, injected)
	s.writeJSON(w, http.StatusOK, api.SlidesResponse{
		Slides:        merged,
		Total:         len(merged),
		InjectedCount: len(injected),
	})
}

func (s *apiServer) handleInjectedSlides(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeServiceError(w, r, fmt.Errorf("%w: invalid since value %q", store.ErrValidation, raw))
			return
		}
		since = parsed
	}
	slides := s.daemon.injector.ListSince(since)
	if slides == nil {
		slides = []deck.Slide{}
	}
	s.writeJSON(w, http.StatusOK, api.InjectedSlidesResponse{Slides: slides})
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmissionRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	result, err := s.daemon.moderation.Submit(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.daemon.metrics.submissionsCreated.Inc()
	s.writeJSON(w, http.StatusOK, result)
}

func (s *apiServer) handleApproved(w http.ResponseWriter, r *http.Request) {
	list, err := s.daemon.moderation.Approved(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *apiServer) handleNextVideo(w http.ResponseWriter, r *http.Request) {
	pick := s.daemon.selector.Next(r.PathValue("category"))
	s.writeJSON(w, http.StatusOK, api.FromPick(pick))
}

func (s *apiServer) handleVideoPlayed(w http.ResponseWriter, r *http.Request) {
	var req api.PlayedRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}
	category := r.PathValue("category")
	play, err := s.daemon.selector.RecordPlay(category, req.VideoPath)
	if err != nil {
		// The count advanced in memory; the ledger already logged the failed save.
		logging.WithContext(r.Context(), s.logger).Debug("play count not persisted",
			logging.String(logging.FieldCategory, category),
			logging.Error(err))
	}
	if play.VideoPath != "" {
		s.daemon.metrics.videoPlays.WithLabelValues(category).Inc()
	}
	if play.Fallback {
		s.daemon.metrics.videoPlayFallbacks.Inc()
	}
	s.writeJSON(w, http.StatusOK, api.FromPlay(play))
}

func (s *apiServer) handleInventory(w http.ResponseWriter, _ *http.Request) {
	inv := s.daemon.scanner.Current()
	s.writeJSON(w, http.StatusOK, api.FromInventory(inv, s.daemon.ledger.Snapshot()))
}

func (s *apiServer) handleControl(w http.ResponseWriter, r *http.Request) {
	var req api.ControlRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	state, err := s.daemon.machine.Apply(r.Context(), slideshow.Command{
		Action:     req.Action,
		SlideID:    req.SlideID,
		SlideIndex: req.SlideIndex,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	s.daemon.metrics.slideshowCommands.WithLabelValues(action).Inc()
	logging.WithContext(r.Context(), s.logger).Info("slideshow command applied",
		logging.String(logging.FieldEventType, "slideshow_command"),
		logging.String("action", action))
	s.writeJSON(w, http.StatusOK, state)
}

func (s *apiServer) handleHide(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state := s.daemon.machine.Hide(r.Context(), id)
	s.daemon.metrics.slideshowCommands.WithLabelValues("hide").Inc()
	logging.WithContext(r.Context(), s.logger).Info("slide hidden",
		logging.String(logging.FieldEventType, "slide_hidden"),
		logging.String(logging.FieldSlideID, id))
	s.writeJSON(w, http.StatusOK, state)
}

func (s *apiServer) handleUnhide(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state := s.daemon.machine.Unhide(r.Context(), id)
	s.daemon.metrics.slideshowCommands.WithLabelValues("unhide").Inc()
	logging.WithContext(r.Context(), s.logger).Info("slide unhidden",
		logging.String(logging.FieldEventType, "slide_unhidden"),
		logging.String(logging.FieldSlideID, id))
	s.writeJSON(w, http.StatusOK, state)
}

func (s *apiServer) handleMute(muted bool) http.HandlerFunc {
	action := "unmute"
	if muted {
		action = "mute"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.daemon.machine.SetMuted(r.Context(), muted)
		s.daemon.metrics.slideshowCommands.WithLabelValues(action).Inc()
		s.writeJSON(w, http.StatusOK, state)
	}
}

func (s *apiServer) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	list, err := s.daemon.moderation.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

type moderationFunc func(ctx context.Context, id int64) (api.ModerationResult, error)

func (s *apiServer) handleModeration(action string, fn moderationFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			s.writeServiceError(w, r, fmt.Errorf("%w: invalid submission id %q", store.ErrValidation, r.PathValue("id")))
			return
		}
		result, err := fn(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.daemon.metrics.moderationActions.WithLabelValues(action).Inc()
		s.daemon.metrics.injectedSlides.Set(float64(s.daemon.injector.Len()))
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *apiServer) handleReload(w http.ResponseWriter, r *http.Request) {
	result, err := s.daemon.ReloadInventory()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	logging.WithContext(r.Context(), s.logger).Info("inventory reloaded",
		logging.String(logging.FieldEventType, "inventory_reloaded"),
		logging.Int("video_count", result.TotalVideos),
		logging.Int("pruned", result.PrunedCounts))
	s.writeJSON(w, http.StatusOK, result)
}

// decodeJSON reads a JSON request body into dst. An empty body is accepted
// only when optional is set.
func (s *apiServer) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	s.writeServiceError(w, r, fmt.Errorf("%w: invalid request body: %v", store.ErrValidation, err))
	return false
}

// writeServiceError maps domain errors onto HTTP status codes.
func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, slideshow.ErrInvalidCommand),
		errors.Is(err, slideshow.ErrUnknownAction):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, api.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errUnauthorized):
		s.writeError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "request failed", "api_request_failed",
			logging.Error(err),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String(logging.FieldErrorHint, "check the database and data directory"))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

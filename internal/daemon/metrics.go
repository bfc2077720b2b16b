package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors exported on /metrics.
type metrics struct {
	httpRequests *prometheus.CounterVec

	videoPlays         *prometheus.CounterVec
	videoPlayFallbacks prometheus.Counter

	submissionsCreated prometheus.Counter
	moderationActions  *prometheus.CounterVec
	slideshowCommands  *prometheus.CounterVec

	injectedSlides      prometheus.Gauge
	inventoryCategories prometheus.Gauge
	inventoryVideos     prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &metrics{
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marquee_http_requests_total",
				Help: "HTTP requests served, by route and status code",
			},
			[]string{"route", "code"},
		),
		videoPlays: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marquee_video_plays_total",
				Help: "recorded video plays, by category",
			},
			[]string{"category"},
		),
		videoPlayFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "marquee_video_play_fallbacks_total",
				Help: "played reports that named an unknown video and counted the least-played one instead",
			},
		),
		submissionsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "marquee_submissions_created_total",
				Help: "guest submissions received",
			},
		),
		moderationActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marquee_moderation_actions_total",
				Help: "admin moderation actions, by action",
			},
			[]string{"action"},
		),
		slideshowCommands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marquee_slideshow_commands_total",
				Help: "admin slideshow control commands, by action",
			},
			[]string{"action"},
		),
		injectedSlides: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "marquee_injected_slides",
				Help: "guest submission slides currently injected into the deck",
			},
		),
		inventoryCategories: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "marquee_inventory_categories",
				Help: "video categories found by the last inventory scan",
			},
		),
		inventoryVideos: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "marquee_inventory_videos",
				Help: "playable videos found by the last inventory scan",
			},
		),
	}
}

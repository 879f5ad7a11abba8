// Package metrics exposes Prometheus counters for assistant activity.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/execmind/execmind/internal/assistant"
)

const namespace = "execmind"

// Metrics records assistant session events. It implements
// assistant.Recorder.
type Metrics struct {
	phases         *prometheus.CounterVec
	captureFailure *prometheus.CounterVec
	restarts       *prometheus.CounterVec
	responses      *prometheus.CounterVec
	actionToggles  prometheus.Counter
	ideasCaptured  prometheus.Counter
}

var _ assistant.Recorder = (*Metrics)(nil)

// MustNew builds the collectors and registers them with reg. Registration
// errors panic, as with promauto.
func MustNew(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		phases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "phase_entered_total",
				Help:      "Number of times a dialog entered each phase.",
			},
			[]string{"mode", "phase"},
		),
		captureFailure: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "capture_failures_total",
				Help:      "Capture failures by stage: start, engine or restart.",
			},
			[]string{"mode", "reason"},
		),
		restarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "recognizer_restarts_total",
				Help:      "Recognizer restarts after an unexpected end.",
			},
			[]string{"mode"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assistant",
				Name:      "responses_served_total",
				Help:      "Responses shown to the user.",
			},
			[]string{"mode"},
		),
		actionToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "action_toggles_total",
			Help:      "Pending action completion toggles.",
		}),
		ideasCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "ideas_captured_total",
			Help:      "Ideas captured into the inbox.",
		}),
	}
	reg.MustRegister(m.phases, m.captureFailure, m.restarts, m.responses, m.actionToggles, m.ideasCaptured)
	return m
}

func (m *Metrics) PhaseEntered(mode assistant.Mode, phase assistant.Phase) {
	m.phases.WithLabelValues(string(mode), string(phase)).Inc()
}

func (m *Metrics) CaptureFailed(mode assistant.Mode, reason string) {
	m.captureFailure.WithLabelValues(string(mode), reason).Inc()
}

func (m *Metrics) RecognizerRestarted(mode assistant.Mode) {
	m.restarts.WithLabelValues(string(mode)).Inc()
}

func (m *Metrics) ResponseServed(mode assistant.Mode) {
	m.responses.WithLabelValues(string(mode)).Inc()
}

// ActionToggled counts a pending action toggle.
func (m *Metrics) ActionToggled() { m.actionToggles.Inc() }

// IdeaCaptured counts a captured idea.
func (m *Metrics) IdeaCaptured() { m.ideasCaptured.Inc() }

// Serve exposes g on addr at /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	}
}

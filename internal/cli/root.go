// Package cli defines the Cobra commands for the execmind binary.
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/execmind/execmind/internal/actions"
	"github.com/execmind/execmind/internal/app"
	"github.com/execmind/execmind/internal/assistant"
	"github.com/execmind/execmind/internal/config"
	"github.com/execmind/execmind/internal/db"
	"github.com/execmind/execmind/internal/ideas"
	"github.com/execmind/execmind/internal/logging"
	"github.com/execmind/execmind/internal/metrics"
	"github.com/execmind/execmind/internal/share"
	"github.com/execmind/execmind/internal/speech"
	"github.com/execmind/execmind/internal/timers"
)

var (
	configPath string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "execmind",
	Short: "Executive dashboard with a voice assistant",
	Long: `execmind shows pending actions and captured ideas, and opens a voice
assistant that answers post-meeting and pre-meeting questions.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runDashboard,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.execmind/config.yaml)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(mcpCmd)
}

// services holds the services shared by every command.
type services struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *db.Store
	actions  *actions.List
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	closeLog func() error
}

func setup() (*services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logging.New(logging.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		File:  cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	store, err := db.OpenMemory()
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening store: %w", err)
	}

	list, err := actions.NewList(store, actions.Defaults(), log)
	if err != nil {
		store.Close()
		closeLog()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	return &services{
		cfg:      cfg,
		log:      log,
		store:    store,
		actions:  list,
		registry: reg,
		metrics:  metrics.MustNew(reg),
		closeLog: closeLog,
	}, nil
}

// serveMetrics exposes the registry when an address is configured.
func (s *services) serveMetrics(ctx context.Context) {
	if s.cfg.MetricsAddr == "" {
		return
	}
	go func() {
		if err := metrics.Serve(ctx, s.cfg.MetricsAddr, s.registry, s.log); err != nil {
			s.log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

func (s *services) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close store")
	}
	s.closeLog()
}

func runDashboard(cmd *cobra.Command, args []string) error {
	svc, err := setup()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	svc.serveMetrics(ctx)

	cfg := svc.cfg
	changes := app.NewNotifier()
	sched := timers.Real{}

	ctrl, err := assistant.NewController(assistant.Options{
		Recognizer:      speech.New(cfg, sched, svc.log),
		Scheduler:       sched,
		ProcessingDelay: cfg.Timing.ProcessingDelay,
		Logger:          svc.log,
		Recorder:        svc.metrics,
		OnChange:        changes.Notify,
	})
	if err != nil {
		return err
	}

	model := app.New(app.Deps{
		Assistant: ctrl,
		Share: share.NewPanel(share.Options{
			Teams:         cfg.Teams,
			Scheduler:     sched,
			ToastDuration: cfg.Timing.ToastDuration,
			ShareDismiss:  cfg.Timing.ShareDismiss,
			Logger:        svc.log,
			OnChange:      changes.Notify,
		}),
		Actions:      svc.actions,
		Ideas:        ideas.NewInbox(svc.store, sched, cfg.Timing.IdeaProcessing, svc.log, changes.Notify),
		Changes:      changes,
		Counters:     svc.metrics,
		MeetingTitle: cfg.MeetingTitle,
		Log:          svc.log,
	})

	svc.log.Info().Str("version", version).Msg("dashboard starting")
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

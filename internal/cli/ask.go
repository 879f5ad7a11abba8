// ask.go implements "execmind ask", a headless run of the scripted assistant.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/execmind/execmind/internal/assistant"
	"github.com/execmind/execmind/internal/config"
	"github.com/execmind/execmind/internal/timers"
	"github.com/execmind/execmind/internal/ui"
)

var (
	askMode    string
	askTitle   string
	askInstant bool
	askWidth   int
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask the assistant its scripted question and print the answer",
	Long: `Run one assistant session without the dashboard: the scripted question is
dictated word by word, then the response is printed as rendered markdown.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askMode, "mode", string(assistant.ModePostMeeting), "assistant mode (post-meeting or pre-meeting)")
	askCmd.Flags().StringVar(&askTitle, "title", "", "meeting title for post-meeting summaries")
	askCmd.Flags().BoolVar(&askInstant, "instant", false, "skip the simulated delays")
	askCmd.Flags().IntVar(&askWidth, "width", 80, "word wrap width for the response")
}

func runAsk(cmd *cobra.Command, args []string) error {
	mode, err := assistant.ParseMode(askMode)
	if err != nil {
		return err
	}

	svc, err := setup()
	if err != nil {
		return err
	}
	defer svc.Close()

	title := askTitle
	if title == "" {
		title = svc.cfg.MeetingTitle
	}
	return ask(cmd.Context(), cmd.OutOrStdout(), askOptions{
		Mode:     mode,
		Title:    title,
		Timing:   svc.cfg.Timing,
		Instant:  askInstant,
		Width:    askWidth,
		Recorder: svc.metrics,
		Log:      svc.log,
	})
}

type askOptions struct {
	Mode     assistant.Mode
	Title    string
	Timing   config.Timing
	Instant  bool
	Width    int
	Recorder assistant.Recorder
	Log      zerolog.Logger
}

// ask drives one scripted session to its response, streaming the question to
// w as it is dictated. Instant runs use a manual clock.
func ask(ctx context.Context, w io.Writer, opts askOptions) error {
	var (
		sched  timers.Scheduler = timers.Real{}
		manual *timers.Manual
	)
	if opts.Instant {
		manual = timers.NewManual()
		sched = manual
	}

	changes := make(chan struct{}, 1)
	ctrl, err := assistant.NewController(assistant.Options{
		Recognizer:      assistant.NewScripted(sched, opts.Timing.WordLeadIn, opts.Timing.WordInterval),
		Scheduler:       sched,
		ProcessingDelay: opts.Timing.ProcessingDelay,
		Logger:          opts.Log,
		Recorder:        opts.Recorder,
		OnChange: func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	printed := 0
	waitFor := func(done func(assistant.Session) bool) error {
		for {
			s := ctrl.Snapshot()
			for ; printed < len(s.Transcript); printed++ {
				sep := " "
				if printed == 0 {
					sep = "Q: "
				}
				fmt.Fprint(w, sep+s.Transcript[printed])
			}
			if done(s) {
				return nil
			}

			if manual != nil {
				manual.Advance(opts.Timing.WordInterval)
				continue
			}
			select {
			case <-changes:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	ctrl.Open(opts.Mode, opts.Title)
	if err := ctrl.StartCapture(); err != nil {
		return err
	}

	words := len(strings.Fields(assistant.Question(opts.Mode)))
	if err := waitFor(func(s assistant.Session) bool { return len(s.Transcript) >= words }); err != nil {
		return err
	}
	fmt.Fprintln(w)

	ctrl.StopCapture()
	if err := waitFor(func(s assistant.Session) bool { return s.Phase == assistant.PhaseResponse }); err != nil {
		return err
	}

	resp := ctrl.Snapshot().Response
	out, err := ui.RenderMarkdown(resp.Markdown(), opts.Width)
	if err != nil {
		return fmt.Errorf("rendering response: %w", err)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, out)
	return nil
}

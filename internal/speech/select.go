package speech

import (
	"github.com/rs/zerolog"

	"github.com/execmind/execmind/internal/assistant"
	"github.com/execmind/execmind/internal/config"
	"github.com/execmind/execmind/internal/daemon"
	"github.com/execmind/execmind/internal/timers"
)

// New picks the recognizer for cfg. In auto mode the live daemon is used when
// its socket exists at startup; otherwise the scripted playback is used for
// the whole run.
func New(cfg *config.Config, sched timers.Scheduler, log zerolog.Logger) assistant.Recognizer {
	live := cfg.Capture == config.CaptureLive ||
		(cfg.Capture == config.CaptureAuto && daemon.Available(cfg.SpeechSocket))

	if live {
		log.Info().Str("socket", cfg.SpeechSocket).Msg("using live speech capture")
		return NewLive(cfg.SpeechSocket, log)
	}
	log.Info().Msg("using scripted speech capture")
	return assistant.NewScripted(sched, cfg.Timing.WordLeadIn, cfg.Timing.WordInterval)
}

package orchestrator

import "github.com/bjesus/levin/internal/statemachine"

// onTransition is the state machine's synchronous callback; it applies the
// session action table from the orchestration design. It must never call
// back into the machine.
func (o *Orchestrator) onTransition(old, new statemachine.State) {
	o.log.Info().Str("from", old.String()).Str("to", new.String()).Msg("state transition")

	switch new {
	case statemachine.Off, statemachine.Paused:
		o.sess.PauseSession()
	case statemachine.Idle:
		o.sess.ResumeSession()
	case statemachine.Seeding:
		o.sess.ResumeSession()
		o.sess.PauseDownloads()
	case statemachine.Downloading:
		o.sess.ResumeSession()
		if o.cfg.MaxDownloadKbps == 0 {
			o.sess.ResumeDownloads()
		} else {
			o.sess.SetDownloadRateLimit(o.cfg.MaxDownloadKbps * 1024)
		}
	}

	if o.gauges != nil {
		o.gauges.State.Set(float64(new))
	}
}

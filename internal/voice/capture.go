package voice

import (
	"log"
	"strings"
	"time"
)

// MicOn starts a capture session. A platform that cannot start capture is a
// recoverable condition: the failure is logged and the phase stays idle.
func (o *Orchestrator) MicOn() {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return
	}
	o.finals = o.finals[:0]
	o.stopSilenceLocked()
	o.mu.Unlock()

	if err := o.capture.Start(); err != nil {
		log.Printf("[voice] capture start failed: %v", err)
	}
}

// MicOff stops the capture session. The engine's end callback finalizes any
// outstanding transcript.
func (o *Orchestrator) MicOff() {
	o.capture.Stop()

	var fx []func()
	o.mu.Lock()
	if o.phase == PhaseListening {
		o.setPhaseLocked(PhaseIdle, &fx)
	}
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}
}

// OnCaptureStart is invoked by the engine once the session is live.
func (o *Orchestrator) OnCaptureStart() {
	var fx []func()
	o.mu.Lock()
	o.setPhaseLocked(PhaseListening, &fx)
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}
	o.events.CaptureStarted()
}

// OnResult handles one incremental recognition result: any pending silence
// timer is cancelled, finalized fragments are appended to the buffer, the
// visible text is recomputed, and the silence timer restarts.
func (o *Orchestrator) OnResult(finals []string, interim string) {
	var fx []func()
	o.mu.Lock()
	o.stopSilenceLocked()
	o.finals = append(o.finals, finals...)
	full := strings.TrimSpace(strings.Join(o.finals, "") + interim)

	if target := o.dictation; target != nil {
		fx = append(fx, func() { target.SetText(full) })
	} else {
		fx = append(fx, func() { o.events.InterimTranscript(full) })
	}
	o.silence = time.AfterFunc(o.cfg.SilenceWindow, o.finalizeUtterance)
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}
}

// OnCaptureEnd is invoked when the session ends for any reason, including
// the platform ending it unexpectedly. Outstanding transcript is finalized
// before the phase flips.
func (o *Orchestrator) OnCaptureEnd() {
	o.mu.Lock()
	pending := o.silence != nil
	o.stopSilenceLocked()
	o.mu.Unlock()

	o.events.CaptureStopped()
	if pending {
		o.finalizeUtterance()
	}

	var fx []func()
	o.mu.Lock()
	if o.phase == PhaseListening {
		o.setPhaseLocked(PhaseIdle, &fx)
	}
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}
}

// OnCaptureError handles recognition errors, permission revocation
// included. Recoverable: the user must re-trigger the mic.
func (o *Orchestrator) OnCaptureError(code string) {
	log.Printf("[voice] capture error: %s", code)
	var fx []func()
	o.mu.Lock()
	o.setPhaseLocked(PhaseIdle, &fx)
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}
}

// finalizeUtterance is the utterance boundary. It runs exactly once per
// utterance: a second trigger finds the buffer empty and does nothing.
func (o *Orchestrator) finalizeUtterance() {
	var fx []func()
	o.mu.Lock()
	text := strings.TrimSpace(strings.Join(o.finals, ""))
	o.finals = o.finals[:0]
	o.silence = nil
	dictating := o.dictation != nil

	if text == "" {
		// A lost finalize race (timer fired while the end callback was
		// already draining the buffer) must not disturb a phase that has
		// moved on.
		if !dictating && o.phase == PhaseListening {
			o.setPhaseLocked(PhaseIdle, &fx)
		}
		o.mu.Unlock()
		for _, f := range fx {
			f()
		}
		return
	}
	o.mu.Unlock()

	metricUtterances.Inc()
	if dictating {
		// Text was already mirrored into the focused field; nothing to
		// interpret.
		metricDictationUtterances.Inc()
		o.MicOff()
		return
	}
	o.handleCommand(text)
}

func (o *Orchestrator) stopSilenceLocked() {
	if o.silence != nil {
		o.silence.Stop()
		o.silence = nil
	}
}

package voice

import (
	"log"
	"strings"

	"github.com/google/uuid"
)

// Speak sanitizes text and appends it to the playback queue. Text that is
// empty after sanitization is dropped with a warning and the phase reverts
// to idle.
func (o *Orchestrator) Speak(text string) {
	if strings.TrimSpace(text) == "" {
		log.Printf("[voice] speak called with empty text; ignoring")
		return
	}

	sanitized := SanitizeForSpeech(text)
	if sanitized == "" {
		log.Printf("[voice] speak text empty after sanitization; dropping")
		var fx []func()
		o.mu.Lock()
		o.setPhaseLocked(PhaseIdle, &fx)
		o.mu.Unlock()
		for _, f := range fx {
			f()
		}
		return
	}

	// The UI shows the original text; only the engine gets the sanitized
	// form.
	o.events.AssistantSaid(text)

	o.mu.Lock()
	u := Utterance{
		ID:      uuid.New().String(),
		Text:    sanitized,
		Lang:    o.lang,
		Rate:    o.cfg.Rate,
		Pitch:   o.cfg.Pitch,
		OnStart: o.onSpeechStart,
		OnEnd:   o.onSpeechEnd,
		OnError: o.onSpeechError,
	}
	o.queue = append(o.queue, u)
	o.mu.Unlock()

	o.drainQueue()
}

// CancelSpeech clears the entire queue and stops the active utterance.
// Partial utterances are not resumed.
func (o *Orchestrator) CancelSpeech() {
	o.mu.Lock()
	busy := o.synth.Speaking() || len(o.queue) > 0
	o.queue = nil
	o.mu.Unlock()

	if busy {
		o.synth.Cancel()
	}
}

// drainQueue starts the next utterance unless the engine is already
// speaking or nothing is queued.
func (o *Orchestrator) drainQueue() {
	o.mu.Lock()
	if o.synth.Speaking() || len(o.queue) == 0 {
		o.mu.Unlock()
		return
	}
	u := o.queue[0]
	o.queue = o.queue[1:]
	o.mu.Unlock()

	if err := o.synth.Speak(u); err != nil {
		log.Printf("[voice] synthesis start failed: %v", err)
		o.onSpeechError("start_failed")
	}
}

func (o *Orchestrator) onSpeechStart() {
	var fx []func()
	o.mu.Lock()
	o.setPhaseLocked(PhaseSpeaking, &fx)
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}
	o.events.SpeechStarted()
}

func (o *Orchestrator) onSpeechEnd() {
	o.mu.Lock()
	empty := len(o.queue) == 0
	o.mu.Unlock()

	if !empty {
		// Move straight to the next entry; the phase stays SPEAKING with
		// no flicker between queued items.
		o.drainQueue()
		return
	}

	o.events.SpeechEnded()
	var fx []func()
	o.mu.Lock()
	o.setPhaseLocked(PhaseIdle, &fx)
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}
}

// onSpeechError distinguishes deliberate interruption from genuine engine
// failure. Both clear the remaining queue; only genuine failure emits the
// error event.
func (o *Orchestrator) onSpeechError(reason string) {
	if reason == ReasonInterrupted {
		log.Printf("[voice] synthesis interrupted")
		metricSynthesisErrors.WithLabelValues("interrupted").Inc()
	} else {
		log.Printf("[voice] synthesis error: %s", reason)
		metricSynthesisErrors.WithLabelValues("failed").Inc()
		o.events.SpeechError()
	}

	o.mu.Lock()
	o.queue = nil
	o.mu.Unlock()

	o.events.SpeechEnded()
	var fx []func()
	o.mu.Lock()
	o.setPhaseLocked(PhaseIdle, &fx)
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}
}

package voice

import (
	"log"
	"sync"
	"time"
)

// Config controls the orchestrator's timing and synthesis parameters.
type Config struct {
	Lang string

	// SilenceWindow is the inter-utterance quiet period that marks the
	// utterance boundary.
	SilenceWindow time.Duration

	// InterpreterTimeout bounds one interpreter call; expiry is handled
	// like any interpreter failure.
	InterpreterTimeout time.Duration

	// RestartDelay is how long a mic toggle waits after cancelling
	// playback before restarting capture, so cancellation callbacks can
	// settle.
	RestartDelay time.Duration

	// SettleDelay is the equivalent window for the hard-interrupt gesture.
	SettleDelay time.Duration

	Rate  float64
	Pitch float64
}

func (c *Config) applyDefaults() {
	if c.Lang == "" {
		c.Lang = "en-US"
	}
	if c.SilenceWindow <= 0 {
		c.SilenceWindow = 4 * time.Second
	}
	if c.InterpreterTimeout <= 0 {
		c.InterpreterTimeout = 15 * time.Second
	}
	if c.RestartDelay <= 0 {
		c.RestartDelay = 50 * time.Millisecond
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 100 * time.Millisecond
	}
	if c.Rate <= 0 {
		c.Rate = 0.9
	}
	if c.Pitch <= 0 {
		c.Pitch = 0.8
	}
}

// Orchestrator coordinates speech capture, command interpretation, and
// speech playback across one session phase. All collaborators are injected.
type Orchestrator struct {
	capture CaptureEngine
	synth   SynthesisEngine
	interp  Interpreter
	archive ConversationLog
	events  EventSink
	cfg     Config

	mu        sync.Mutex
	phase     Phase
	finals    []string
	silence   *time.Timer
	dictation DictationTarget
	queue     []Utterance
	view      string
	flow      int
	audience  Audience
	lang      string
}

// New constructs an orchestrator and registers it as the capture engine's
// handler. All dependencies are required.
func New(capture CaptureEngine, synth SynthesisEngine, interp Interpreter, archive ConversationLog, events EventSink, cfg Config) *Orchestrator {
	cfg.applyDefaults()
	o := &Orchestrator{
		capture:  capture,
		synth:    synth,
		interp:   interp,
		archive:  archive,
		events:   events,
		cfg:      cfg,
		phase:    PhaseIdle,
		view:     "pulse",
		flow:     50,
		audience: AudiencePG,
		lang:     cfg.Lang,
	}
	capture.SetHandler(o)
	return o
}

// Phase returns the current session phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// SetContext records the UI view supplied to the interpreter.
func (o *Orchestrator) SetContext(view string) {
	o.mu.Lock()
	o.view = view
	o.mu.Unlock()
}

// SetPersonality records the flow level and audience supplied to the
// interpreter. Orchestration logic itself is unaffected.
func (o *Orchestrator) SetPersonality(flow int, audience Audience) {
	o.mu.Lock()
	o.flow = flow
	o.audience = audience
	o.mu.Unlock()
}

// Personality returns the current flow level and audience.
func (o *Orchestrator) Personality() (int, Audience) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flow, o.audience
}

// SetLanguage switches the capture/synthesis language. An active capture
// session is stopped; the user re-triggers the mic in the new language.
func (o *Orchestrator) SetLanguage(lang string) {
	o.mu.Lock()
	if o.lang == lang {
		o.mu.Unlock()
		return
	}
	o.lang = lang
	o.mu.Unlock()
	o.MicOff()
	log.Printf("[voice] language set to %s", lang)
}

// SetDictationTarget sets or clears the focused text field. Presence of a
// target always wins over command interpretation.
func (o *Orchestrator) SetDictationTarget(t DictationTarget) {
	var fx []func()
	o.mu.Lock()
	o.dictation = t
	if t != nil && o.phase == PhaseListening {
		fx = append(fx, o.events.DictationStarted)
	}
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}
}

// ToggleMic is the normal mic gesture.
func (o *Orchestrator) ToggleMic() {
	o.mu.Lock()
	p := o.phase
	o.mu.Unlock()

	switch p {
	case PhaseIdle:
		o.MicOn()
	case PhaseListening:
		o.MicOff()
	case PhaseSpeaking:
		o.CancelSpeech()
		// Let the cancellation callbacks flip the phase back to idle
		// before the mic restarts.
		time.AfterFunc(o.cfg.RestartDelay, o.MicOn)
	}
}

// HardInterrupt cancels all playback, stops capture if active, and restarts
// capture once in-flight callbacks have settled.
func (o *Orchestrator) HardInterrupt() {
	metricInterrupts.Inc()
	o.mu.Lock()
	busy := o.synth.Speaking() || len(o.queue) > 0
	listening := o.phase == PhaseListening
	o.mu.Unlock()

	if busy {
		o.CancelSpeech()
	}
	if listening {
		// Discard the half-captured transcript; a panic stop must not
		// reach the interpreter.
		o.mu.Lock()
		o.finals = o.finals[:0]
		o.stopSilenceLocked()
		o.mu.Unlock()
		o.MicOff()
	}
	time.AfterFunc(o.cfg.SettleDelay, o.MicOn)
}

// setPhaseLocked flips the phase and queues the change notification.
// Re-entering the current phase is a no-op. Caller holds o.mu.
func (o *Orchestrator) setPhaseLocked(p Phase, fx *[]func()) {
	if o.phase == p {
		return
	}
	metricPhaseTransitions.WithLabelValues(string(o.phase), string(p)).Inc()
	o.phase = p
	*fx = append(*fx, func() { o.events.PhaseChanged(p) })
}

package voice

import (
	"testing"
	"time"
)

func TestInitialPhaseIdle(t *testing.T) {
	r := newRig(t, Config{})
	if got := r.orch.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %q, want IDLE", got)
	}
}

func TestDuplicatePhaseSuppressed(t *testing.T) {
	r := newRig(t, Config{})
	var fx []func()
	r.orch.mu.Lock()
	r.orch.setPhaseLocked(PhaseListening, &fx)
	r.orch.setPhaseLocked(PhaseListening, &fx)
	r.orch.mu.Unlock()
	for _, f := range fx {
		f()
	}
	if got := r.sink.count("phase:" + string(PhaseListening)); got != 1 {
		t.Fatalf("LISTENING published %d times, want 1", got)
	}
}

func TestToggleMicFromIdleStartsListening(t *testing.T) {
	r := newRig(t, Config{})
	r.orch.ToggleMic()
	if got := r.orch.Phase(); got != PhaseListening {
		t.Fatalf("phase = %q, want LISTENING", got)
	}
	if got := r.sink.count("capture_start"); got != 1 {
		t.Fatalf("capture_start count = %d", got)
	}
}

func TestToggleMicWhileListeningStops(t *testing.T) {
	r := newRig(t, Config{SilenceWindow: time.Hour})
	r.orch.ToggleMic()
	r.orch.ToggleMic()
	if got := r.orch.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %q, want IDLE", got)
	}
	if got := r.sink.count("capture_stop"); got != 1 {
		t.Fatalf("capture_stop count = %d", got)
	}
}

func TestToggleMicWhileSpeakingBargesIn(t *testing.T) {
	r := newRig(t, Config{RestartDelay: 5 * time.Millisecond})
	r.orch.Speak("a long announcement")
	if got := r.orch.Phase(); got != PhaseSpeaking {
		t.Fatalf("phase = %q, want SPEAKING", got)
	}

	r.orch.ToggleMic()

	// Playback cancels, then the mic comes back after the restart delay.
	waitFor(t, func() bool { return r.orch.Phase() == PhaseListening })
	if got := r.sink.count("speech_error"); got != 0 {
		t.Fatalf("barge-in reported a synthesis error")
	}
}

func TestHardInterruptWhileSpeaking(t *testing.T) {
	r := newRig(t, Config{SettleDelay: 5 * time.Millisecond})
	r.orch.Speak("first")
	r.orch.Speak("second")

	r.orch.HardInterrupt()

	waitFor(t, func() bool { return r.orch.Phase() == PhaseListening })
	// The queued second utterance died with the first.
	if got := r.synth.spokenTexts(); len(got) != 1 {
		t.Fatalf("spoken = %v after hard interrupt", got)
	}
}

func TestHardInterruptWhileListeningRestartsCapture(t *testing.T) {
	r := newRig(t, Config{SilenceWindow: time.Hour, SettleDelay: 5 * time.Millisecond})
	r.orch.MicOn()
	r.orch.OnResult([]string{"half a tho"}, "")

	r.orch.HardInterrupt()

	waitFor(t, func() bool { return r.capture.startCount() == 2 })
	// The half-captured transcript is not interpreted.
	time.Sleep(20 * time.Millisecond)
	if got := r.interp.callCount(); got != 0 {
		t.Fatalf("interpreter called %d times after interrupt", got)
	}
}

func TestHardInterruptWhileIdleJustRestartsMic(t *testing.T) {
	r := newRig(t, Config{SettleDelay: 5 * time.Millisecond})
	r.orch.HardInterrupt()
	waitFor(t, func() bool { return r.orch.Phase() == PhaseListening })
}

func TestSetLanguageStopsActiveCapture(t *testing.T) {
	r := newRig(t, Config{SilenceWindow: time.Hour})
	r.orch.MicOn()

	r.orch.SetLanguage("fr-FR")
	if got := r.orch.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %q, want IDLE after language switch", got)
	}

	// Same language again is a no-op.
	r.capture.mu.Lock()
	stops := r.capture.stops
	r.capture.mu.Unlock()
	r.orch.SetLanguage("fr-FR")
	r.capture.mu.Lock()
	after := r.capture.stops
	r.capture.mu.Unlock()
	if after != stops {
		t.Fatalf("no-op language set stopped capture")
	}
}

func TestUtteranceCarriesLanguageAndProsody(t *testing.T) {
	r := newRig(t, Config{Lang: "en-GB", Rate: 1.1, Pitch: 0.7})
	r.orch.Speak("hello")

	r.synth.mu.Lock()
	u := r.synth.spoken[0]
	r.synth.mu.Unlock()
	if u.Lang != "en-GB" || u.Rate != 1.1 || u.Pitch != 0.7 {
		t.Fatalf("utterance = %+v", u)
	}
	if u.ID == "" {
		t.Fatal("utterance missing ID")
	}
}

// Full round trip: mic on, speech, silence, interpretation, spoken reply,
// back to idle.
func TestCommandRoundTrip(t *testing.T) {
	r := newRig(t, Config{SilenceWindow: 20 * time.Millisecond})
	r.interp.fn = func(text string, ic IntentContext) (Intent, error) {
		return Intent{Kind: IntentNavigate, Reply: "On our way.", Page: "campus"}, nil
	}

	r.orch.ToggleMic()
	r.orch.OnResult([]string{"take me to campus"}, "")

	waitFor(t, func() bool { return r.orch.Phase() == PhaseSpeaking })
	r.synth.finish()

	if got := r.orch.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %q, want IDLE after reply", got)
	}
	r.sink.mu.Lock()
	pages := append([]string(nil), r.sink.pages...)
	r.sink.mu.Unlock()
	if len(pages) != 1 || pages[0] != "campus" {
		t.Fatalf("navigated = %v", pages)
	}
}

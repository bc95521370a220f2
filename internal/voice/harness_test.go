package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var errTest = errors.New("engine unavailable")

// fakeCapture drives the handler synchronously the way a browser engine
// delivers its events on one thread.
type fakeCapture struct {
	mu      sync.Mutex
	h       CaptureHandler
	starts  int
	stops   int
	failErr error
}

func (f *fakeCapture) SetHandler(h CaptureHandler) { f.h = h }

func (f *fakeCapture) Start() error {
	f.mu.Lock()
	f.starts++
	err := f.failErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.h.OnCaptureStart()
	return nil
}

func (f *fakeCapture) Stop() {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
	f.h.OnCaptureEnd()
}

func (f *fakeCapture) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

// fakeSynth records spoken utterances. Start fires synchronously; the test
// drives completion with finish() or failure with fail().
type fakeSynth struct {
	mu       sync.Mutex
	speaking bool
	active   Utterance
	spoken   []Utterance
	startErr error
}

func (f *fakeSynth) Speak(u Utterance) error {
	f.mu.Lock()
	if f.startErr != nil {
		err := f.startErr
		f.mu.Unlock()
		return err
	}
	f.speaking = true
	f.active = u
	f.spoken = append(f.spoken, u)
	f.mu.Unlock()
	u.OnStart()
	return nil
}

func (f *fakeSynth) Cancel() {
	f.mu.Lock()
	if !f.speaking {
		f.mu.Unlock()
		return
	}
	f.speaking = false
	u := f.active
	f.mu.Unlock()
	u.OnError(ReasonInterrupted)
}

func (f *fakeSynth) Speaking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speaking
}

func (f *fakeSynth) finish() {
	f.mu.Lock()
	u := f.active
	f.speaking = false
	f.mu.Unlock()
	u.OnEnd()
}

func (f *fakeSynth) fail(reason string) {
	f.mu.Lock()
	u := f.active
	f.speaking = false
	f.mu.Unlock()
	u.OnError(reason)
}

func (f *fakeSynth) spokenTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.spoken))
	for i, u := range f.spoken {
		out[i] = u.Text
	}
	return out
}

type fakeInterp struct {
	mu    sync.Mutex
	fn    func(text string, ic IntentContext) (Intent, error)
	calls []string
	last  IntentContext
}

func (f *fakeInterp) Interpret(ctx context.Context, text string, ic IntentContext) (Intent, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.last = ic
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return Intent{Kind: IntentTalk, Reply: "noted"}, nil
	}
	return fn(text, ic)
}

func (f *fakeInterp) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeArchive struct {
	mu   sync.Mutex
	recs []Record
	err  error
}

func (f *fakeArchive) Append(ctx context.Context, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeArchive) records() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Record(nil), f.recs...)
}

// recSink records every event name in order.
type recSink struct {
	mu      sync.Mutex
	names   []string
	phases  []Phase
	interim []string
	pages   []string
	cmds    []string
	said    []string
}

func (s *recSink) add(name string) {
	s.mu.Lock()
	s.names = append(s.names, name)
	s.mu.Unlock()
}

func (s *recSink) PhaseChanged(p Phase) {
	s.mu.Lock()
	s.names = append(s.names, "phase:"+string(p))
	s.phases = append(s.phases, p)
	s.mu.Unlock()
}
func (s *recSink) CaptureStarted() { s.add("capture_start") }
func (s *recSink) CaptureStopped() { s.add("capture_stop") }
func (s *recSink) InterimTranscript(text string) {
	s.mu.Lock()
	s.names = append(s.names, "interim")
	s.interim = append(s.interim, text)
	s.mu.Unlock()
}
func (s *recSink) UserSaid(text string) { s.add("user_said") }
func (s *recSink) AssistantSaid(text string) {
	s.mu.Lock()
	s.names = append(s.names, "assistant_said")
	s.said = append(s.said, text)
	s.mu.Unlock()
}
func (s *recSink) Navigated(page string) {
	s.mu.Lock()
	s.names = append(s.names, "navigated")
	s.pages = append(s.pages, page)
	s.mu.Unlock()
}
func (s *recSink) ContextualCommand(command string, payload map[string]any) {
	s.mu.Lock()
	s.names = append(s.names, "contextual")
	s.cmds = append(s.cmds, command)
	s.mu.Unlock()
}
func (s *recSink) SpeechStarted()    { s.add("speech_start") }
func (s *recSink) SpeechEnded()      { s.add("speech_end") }
func (s *recSink) SpeechError()      { s.add("speech_error") }
func (s *recSink) DictationStarted() { s.add("dictation_started") }

func (s *recSink) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.names {
		if e == name {
			n++
		}
	}
	return n
}

func (s *recSink) lastInterim() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.interim) == 0 {
		return ""
	}
	return s.interim[len(s.interim)-1]
}

// memTarget is a dictation target capturing the mirrored text.
type memTarget struct {
	mu   sync.Mutex
	text string
}

func (m *memTarget) SetText(text string) {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
}

func (m *memTarget) get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

type rig struct {
	capture *fakeCapture
	synth   *fakeSynth
	interp  *fakeInterp
	archive *fakeArchive
	sink    *recSink
	orch    *Orchestrator
}

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := &rig{
		capture: &fakeCapture{},
		synth:   &fakeSynth{},
		interp:  &fakeInterp{},
		archive: &fakeArchive{},
		sink:    &recSink{},
	}
	if cfg.SilenceWindow == 0 {
		cfg.SilenceWindow = 30 * time.Millisecond
	}
	if cfg.RestartDelay == 0 {
		cfg.RestartDelay = 5 * time.Millisecond
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = 5 * time.Millisecond
	}
	r.orch = New(r.capture, r.synth, r.interp, r.archive, r.sink, cfg)
	return r
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

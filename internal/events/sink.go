package events

import "opscenter/lex/internal/voice"

// Event type names match the browser-side listener registrations.
const (
	TypePhaseChange       = "lex.phase.change"
	TypeCaptureStart      = "lex.stt.start"
	TypeCaptureStop       = "lex.stt.stop"
	TypeInterim           = "lex.stt.interim"
	TypeUserSaid          = "lex.chat.send"
	TypeAssistantSaid     = "lex.ui.chat.show"
	TypeSpeechStart       = "lex.tts.start"
	TypeSpeechEnd         = "lex.tts.end"
	TypeSpeechError       = "lex.tts.error"
	TypeDictationStarted  = "lex.dictation.started"
	TypeNavigate          = "cue.navigate"
	TypeContextualCommand = "cue.contextual.command"
	TypeVoiceOverride     = "lex.voice.override"
)

// Sink publishes the orchestrator's events onto the bus.
type Sink struct {
	bus *Bus
}

func NewSink(bus *Bus) *Sink {
	return &Sink{bus: bus}
}

func (s *Sink) PhaseChanged(p voice.Phase) {
	s.bus.Publish(TypePhaseChange, map[string]any{"phase": string(p)})
}

func (s *Sink) CaptureStarted() {
	s.bus.Publish(TypeCaptureStart, nil)
}

func (s *Sink) CaptureStopped() {
	s.bus.Publish(TypeCaptureStop, nil)
}

func (s *Sink) InterimTranscript(text string) {
	s.bus.Publish(TypeInterim, map[string]any{"transcript": text})
}

func (s *Sink) UserSaid(text string) {
	s.bus.Publish(TypeUserSaid, map[string]any{"text": text})
}

func (s *Sink) AssistantSaid(text string) {
	s.bus.Publish(TypeAssistantSaid, map[string]any{"role": "assistant", "text": text})
}

func (s *Sink) Navigated(page string) {
	s.bus.Publish(TypeNavigate, map[string]any{"to": page})
}

func (s *Sink) ContextualCommand(command string, payload map[string]any) {
	s.bus.Publish(TypeContextualCommand, map[string]any{"command": command, "payload": payload})
}

func (s *Sink) SpeechStarted() {
	s.bus.Publish(TypeSpeechStart, nil)
}

func (s *Sink) SpeechEnded() {
	s.bus.Publish(TypeSpeechEnd, nil)
}

func (s *Sink) SpeechError() {
	s.bus.Publish(TypeSpeechError, nil)
}

func (s *Sink) DictationStarted() {
	s.bus.Publish(TypeDictationStarted, nil)
}

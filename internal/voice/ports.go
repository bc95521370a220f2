package voice

import "context"

// CaptureHandler receives the speech-capture session's lifecycle callbacks.
// The orchestrator implements it; engines must deliver callbacks one at a
// time, never concurrently.
type CaptureHandler interface {
	OnCaptureStart()
	OnResult(finals []string, interim string)
	OnCaptureEnd()
	OnCaptureError(code string)
}

// CaptureEngine owns one continuous speech-to-text session.
type CaptureEngine interface {
	SetHandler(h CaptureHandler)
	Start() error
	Stop()
}

// ReasonInterrupted marks a synthesis error caused by deliberate
// cancellation rather than engine failure.
const ReasonInterrupted = "interrupted"

// Utterance is one queued synthesis request. The callbacks are registered
// before the engine starts speaking.
type Utterance struct {
	ID       string
	Text     string
	Lang     string
	Rate     float64
	Pitch    float64
	VoiceURI string

	OnStart func()
	OnEnd   func()
	OnError func(reason string)
}

// SynthesisEngine plays at most one utterance at a time.
type SynthesisEngine interface {
	Speak(u Utterance) error
	Cancel()
	Speaking() bool
}

// IntentKind tags the interpreter's outcome.
type IntentKind string

const (
	IntentTalk       IntentKind = "talk"
	IntentNavigate   IntentKind = "navigate"
	IntentContextual IntentKind = "contextual_command"
)

// Intent is the structured result of interpreting an utterance.
type Intent struct {
	Kind    IntentKind
	Reply   string
	Page    string
	Command string
	Payload map[string]any
}

// Audience adjusts spoken-reply content.
type Audience string

const (
	AudiencePG      Audience = "pg"
	AudienceGeneral Audience = "general"
)

// IntentContext is the UI context supplied to the interpreter.
type IntentContext struct {
	View     string
	Flow     int
	Audience Audience
	Language string
}

// Interpreter converts a finalized utterance into an intent. Failures are
// recovered by the pipeline, never propagated to the UI.
type Interpreter interface {
	Interpret(ctx context.Context, utterance string, ic IntentContext) (Intent, error)
}

// Record is one archived conversational exchange.
type Record struct {
	Title     string
	View      string
	Intent    string
	UserText  string
	ReplyText string
}

// ConversationLog appends conversational records.
type ConversationLog interface {
	Append(ctx context.Context, rec Record) error
}

// DictationTarget is the currently focused text field. While one is set,
// transcript text is mirrored into it instead of being interpreted.
type DictationTarget interface {
	SetText(text string)
}

// EventSink receives the named events the core exposes to the UI layer.
type EventSink interface {
	PhaseChanged(p Phase)
	CaptureStarted()
	CaptureStopped()
	InterimTranscript(text string)
	UserSaid(text string)
	AssistantSaid(text string)
	Navigated(page string)
	ContextualCommand(command string, payload map[string]any)
	SpeechStarted()
	SpeechEnded()
	SpeechError()
	DictationStarted()
}

package voice

// Phase is the orchestrator's current mode. Exactly one phase is active at
// any time; transitions are totally ordered and redundant transitions are
// suppressed.
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseListening Phase = "LISTENING"
	PhaseThinking  Phase = "THINKING"
	PhaseSpeaking  Phase = "SPEAKING"
	PhasePaused    Phase = "PAUSED"
)

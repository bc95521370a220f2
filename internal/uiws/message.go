// Package uiws bridges the browser speech worker onto the orchestrator
// over one websocket connection.
package uiws

import (
	"encoding/json"

	"opscenter/lex/internal/voices"
)

// Message is the wire envelope for both directions of the worker channel.
type Message struct {
	Type        string          `json:"type"`
	TsMs        int64           `json:"ts_ms,omitempty"`
	UtteranceID string          `json:"utterance_id,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// Worker → server message types.
const (
	msgHello        = "worker_hello"
	msgCaptureLive  = "stt_started"
	msgResult       = "stt_result"
	msgCaptureEnded = "stt_ended"
	msgCaptureError = "stt_error"
	msgSpeechBegan  = "tts_started"
	msgSpeechEnded  = "tts_ended"
	msgSpeechError  = "tts_error"
	msgVoices       = "voices"
	msgGesture      = "gesture"
	msgDictation    = "dictation"
)

// Server → worker message types.
const (
	msgStartCapture  = "start_capture"
	msgStopCapture   = "stop_capture"
	msgSpeak         = "speak"
	msgCancelSpeech  = "cancel_tts"
	msgDictationText = "dictation_text"
)

type helloPayload struct {
	UserAgent string `json:"user_agent"`
}

type resultPayload struct {
	Finals  []string `json:"finals"`
	Interim string   `json:"interim"`
}

type errorPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type voicesPayload struct {
	Voices []voices.Descriptor `json:"voices"`
}

type gesturePayload struct {
	Kind string `json:"kind"` // "mic_toggle" | "hard_interrupt"
}

type dictationPayload struct {
	Active bool `json:"active"`
}

type startCapturePayload struct {
	Lang string `json:"lang"`
}

type speakPayload struct {
	Text     string  `json:"text"`
	Lang     string  `json:"lang"`
	Rate     float64 `json:"rate"`
	Pitch    float64 `json:"pitch"`
	VoiceURI string  `json:"voice_uri,omitempty"`
}

type textPayload struct {
	Text string `json:"text"`
}

func mustRaw(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

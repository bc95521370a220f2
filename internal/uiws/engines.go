package uiws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"opscenter/lex/internal/voice"
	"opscenter/lex/internal/voices"
)

const sendTimeout = 5 * time.Second

// Engines implements the orchestrator's capture and synthesis engines on
// top of the worker connection. The browser owns the platform speech APIs;
// this side only issues commands and routes lifecycle messages back into
// the orchestrator's callbacks.
type Engines struct {
	reg *Registry
	sel *voices.Selector

	mu       sync.Mutex
	handler  voice.CaptureHandler
	lang     string
	speaking bool
	active   bool
	current  voice.Utterance
}

func NewEngines(reg *Registry, sel *voices.Selector, lang string) *Engines {
	return &Engines{reg: reg, sel: sel, lang: lang}
}

// SetLanguage switches the language sent with capture start commands.
func (e *Engines) SetLanguage(lang string) {
	e.mu.Lock()
	e.lang = lang
	e.mu.Unlock()
	if e.sel != nil {
		e.sel.SetLanguage(lang)
	}
}

// SetHandler registers the orchestrator's capture callbacks.
func (e *Engines) SetHandler(h voice.CaptureHandler) {
	e.mu.Lock()
	e.handler = h
	e.mu.Unlock()
}

// Start asks the worker to begin a recognition session.
func (e *Engines) Start() error {
	e.mu.Lock()
	lang := e.lang
	e.mu.Unlock()
	return e.send(Message{Type: msgStartCapture, Payload: mustRaw(startCapturePayload{Lang: lang})})
}

// Stop ends the recognition session. Best effort: a vanished worker has
// already ended the session on its own.
func (e *Engines) Stop() {
	if err := e.send(Message{Type: msgStopCapture}); err != nil {
		log.Printf("[uiws] stop capture: %v", err)
	}
}

// Speak sends one utterance to the worker, resolving the preferred voice
// first.
func (e *Engines) Speak(u voice.Utterance) error {
	if e.sel != nil {
		if d, ok := e.sel.Preferred(); ok {
			u.VoiceURI = d.VoiceURI
		}
	}

	e.mu.Lock()
	e.current = u
	e.active = true
	e.mu.Unlock()

	err := e.send(Message{
		Type:        msgSpeak,
		UtteranceID: u.ID,
		Payload: mustRaw(speakPayload{
			Text:     u.Text,
			Lang:     u.Lang,
			Rate:     u.Rate,
			Pitch:    u.Pitch,
			VoiceURI: u.VoiceURI,
		}),
	})
	if err != nil {
		e.mu.Lock()
		e.active = false
		e.mu.Unlock()
	}
	return err
}

// Cancel stops the active utterance immediately.
func (e *Engines) Cancel() {
	if err := e.send(Message{Type: msgCancelSpeech}); err != nil {
		log.Printf("[uiws] cancel speech: %v", err)
	}
}

// Speaking reports whether the worker's synthesis engine is mid-utterance.
func (e *Engines) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaking
}

// OnMessage routes one worker message into the engine callbacks.
func (e *Engines) OnMessage(msg Message) {
	switch msg.Type {
	case msgHello:
		var p helloPayload
		decode(msg.Payload, &p)
		if e.sel != nil {
			e.sel.SetEnvironment(voices.DetectPlatform(p.UserAgent), voices.DetectBrowser(p.UserAgent))
		}

	case msgCaptureLive:
		if h := e.captureHandler(); h != nil {
			h.OnCaptureStart()
		}

	case msgResult:
		var p resultPayload
		decode(msg.Payload, &p)
		if h := e.captureHandler(); h != nil {
			h.OnResult(p.Finals, p.Interim)
		}

	case msgCaptureEnded:
		if h := e.captureHandler(); h != nil {
			h.OnCaptureEnd()
		}

	case msgCaptureError:
		var p errorPayload
		decode(msg.Payload, &p)
		if h := e.captureHandler(); h != nil {
			h.OnCaptureError(p.Code)
		}

	case msgSpeechBegan:
		cb := e.takeCallback(msg.UtteranceID, func(u voice.Utterance) func() { return u.OnStart })
		e.setSpeaking(true)
		if cb != nil {
			cb()
		}

	case msgSpeechEnded:
		cb := e.finishUtterance(msg.UtteranceID, func(u voice.Utterance) func() { return u.OnEnd })
		if cb != nil {
			cb()
		}

	case msgSpeechError:
		var p errorPayload
		decode(msg.Payload, &p)
		reason := p.Reason
		if reason == "" {
			reason = "synthesis_failed"
		}
		var onErr func(string)
		e.mu.Lock()
		if e.active && (msg.UtteranceID == "" || msg.UtteranceID == e.current.ID) {
			onErr = e.current.OnError
			e.active = false
		}
		e.speaking = false
		e.mu.Unlock()
		if onErr != nil {
			onErr(reason)
		}

	case msgVoices:
		var p voicesPayload
		decode(msg.Payload, &p)
		if e.sel != nil {
			e.sel.Update(p.Voices)
		}
	}
}

// OnDisconnect handles the worker vanishing mid-utterance: the engine can
// no longer finish the queue, so the active utterance fails.
func (e *Engines) OnDisconnect() {
	var onErr func(string)
	e.mu.Lock()
	if e.active {
		onErr = e.current.OnError
		e.active = false
	}
	e.speaking = false
	e.mu.Unlock()
	if onErr != nil {
		onErr("worker_disconnected")
	}
}

func (e *Engines) captureHandler() voice.CaptureHandler {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handler
}

func (e *Engines) setSpeaking(v bool) {
	e.mu.Lock()
	e.speaking = v
	e.mu.Unlock()
}

func (e *Engines) takeCallback(utteranceID string, pick func(voice.Utterance) func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || (utteranceID != "" && utteranceID != e.current.ID) {
		return nil
	}
	return pick(e.current)
}

func (e *Engines) finishUtterance(utteranceID string, pick func(voice.Utterance) func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || (utteranceID != "" && utteranceID != e.current.ID) {
		e.speaking = false
		return nil
	}
	e.active = false
	e.speaking = false
	return pick(e.current)
}

func (e *Engines) send(msg Message) error {
	msg.TsMs = time.Now().UnixMilli()
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return e.reg.SendJSON(ctx, msg)
}

func contextWithSendTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), sendTimeout)
}

func decode(raw json.RawMessage, v any) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("[uiws] payload decode: %v", err)
	}
}

package uiws

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	ws "nhooyr.io/websocket"

	"opscenter/lex/internal/auth"
	"opscenter/lex/internal/config"
	"opscenter/lex/internal/events"
	"opscenter/lex/internal/voice"
)

// Gestures is the slice of the orchestrator the worker channel drives
// directly.
type Gestures interface {
	ToggleMic()
	HardInterrupt()
	SetDictationTarget(t voice.DictationTarget)
}

// Server accepts the speech worker's websocket connection and routes its
// messages.
type Server struct {
	cfg     config.Config
	reg     *Registry
	engines *Engines
	orch    Gestures
	bus     *events.Bus
}

func NewServer(cfg config.Config, reg *Registry, eng *Engines, orch Gestures, bus *events.Bus) *Server {
	return &Server{cfg: cfg, reg: reg, engines: eng, orch: orch, bus: bus}
}

func (s *Server) HandleWorkerWS(w http.ResponseWriter, r *http.Request) {
	workerID := r.URL.Query().Get("worker_id")
	if workerID == "" {
		http.Error(w, "missing worker_id", http.StatusBadRequest)
		return
	}
	if s.cfg.Worker.TokenSecret == "" {
		http.Error(w, "worker auth not configured", http.StatusUnauthorized)
		return
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		token = strings.TrimPrefix(authz, "Bearer ")
	}
	if _, _, err := auth.ValidateWorkerToken(s.cfg.Worker.TokenSecret, token, workerID, time.Now(), s.cfg.Worker.TokenSkewSecs); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	c, err := ws.Accept(w, r, nil)
	if err != nil {
		log.Printf("[uiws] ws accept: %v", err)
		return
	}
	if s.reg.Replace(c) {
		s.bus.Publish("worker_replaced", nil)
	}
	s.bus.Publish("worker_connected", map[string]any{"worker_id": workerID})

	ctx := r.Context()
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			break
		}
		if typ != ws.MessageText && typ != ws.MessageBinary {
			continue
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.bus.Publish("worker_msg_invalid", map[string]any{"error": err.Error()})
			continue
		}
		s.route(msg)
	}

	_ = c.Close(ws.StatusNormalClosure, "done")
	s.reg.Remove(c)
	s.engines.OnDisconnect()
	s.bus.Publish("worker_disconnected", nil)
}

func (s *Server) route(msg Message) {
	switch msg.Type {
	case msgGesture:
		var p gesturePayload
		decode(msg.Payload, &p)
		switch p.Kind {
		case "mic_toggle":
			s.orch.ToggleMic()
		case "hard_interrupt":
			s.orch.HardInterrupt()
		default:
			log.Printf("[uiws] unknown gesture %q", p.Kind)
		}

	case msgDictation:
		var p dictationPayload
		decode(msg.Payload, &p)
		if p.Active {
			s.orch.SetDictationTarget(&fieldTarget{reg: s.reg})
		} else {
			s.orch.SetDictationTarget(nil)
		}

	default:
		s.engines.OnMessage(msg)
	}
}

// fieldTarget mirrors transcript text back into the focused browser field.
type fieldTarget struct {
	reg *Registry
}

func (t *fieldTarget) SetText(text string) {
	ctx, cancel := contextWithSendTimeout()
	defer cancel()
	err := t.reg.SendJSON(ctx, Message{
		Type:    msgDictationText,
		TsMs:    time.Now().UnixMilli(),
		Payload: mustRaw(textPayload{Text: text}),
	})
	if err != nil {
		log.Printf("[uiws] dictation mirror: %v", err)
	}
}

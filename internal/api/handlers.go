package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"opscenter/lex/internal/auth"
	"opscenter/lex/internal/config"
	"opscenter/lex/internal/convlog"
	"opscenter/lex/internal/events"
	"opscenter/lex/internal/health"
	"opscenter/lex/internal/voice"
	"opscenter/lex/internal/voices"
)

type Handlers struct {
	cfg  config.Config
	orch *voice.Orchestrator
	bus  *events.Bus
	log  *convlog.Store
	sel  *voices.Selector
	db   *sql.DB
}

func NewHandlers(cfg config.Config, o *voice.Orchestrator, b *events.Bus, cl *convlog.Store, sel *voices.Selector, db *sql.DB) *Handlers {
	return &Handlers{cfg: cfg, orch: o, bus: b, log: cl, sel: sel, db: db}
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := health.CheckAll(r.Context(), h.cfg, h.db)
	code := http.StatusOK
	if !st.OK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}

func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"phase":      h.orch.Phase(),
		"latest_seq": h.bus.Latest(),
	})
}

func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "bad since value", http.StatusBadRequest)
			return
		}
		since = n
	}
	evs := h.bus.Since(since)
	writeJSON(w, http.StatusOK, map[string]any{
		"events":     evs,
		"latest_seq": h.bus.Latest(),
	})
}

func (h *Handlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			http.Error(w, "bad limit value", http.StatusBadRequest)
			return
		}
		limit = n
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	recs, err := h.log.Recent(ctx, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": recs})
}

func (h *Handlers) HandleListVoices(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"voices": h.sel.Ranked()}
	if pref, ok := h.sel.Preferred(); ok {
		resp["preferred"] = pref
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) HandleSetVoiceOverride(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "body must be {\"name\": ...}", http.StatusBadRequest)
		return
	}
	if err := h.sel.SetOverride(req.Name); err != nil {
		if errors.Is(err, voices.ErrUnknownVoice) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.bus.Publish(events.TypeVoiceOverride, map[string]any{"name": req.Name})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleClearVoiceOverride(w http.ResponseWriter, r *http.Request) {
	if err := h.sel.ClearOverride(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.bus.Publish(events.TypeVoiceOverride, map[string]any{"name": ""})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleSay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		http.Error(w, "body must be {\"text\": ...}", http.StatusBadRequest)
		return
	}
	h.orch.Speak(req.Text)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleSetContext(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View     *string `json:"view"`
		Flow     *int    `json:"flow"`
		Audience *string `json:"audience"`
		Lang     *string `json:"lang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if req.View != nil {
		h.orch.SetContext(*req.View)
	}
	if req.Flow != nil || req.Audience != nil {
		// Partial update: fields absent from the request keep their
		// current values.
		flow, aud := h.orch.Personality()
		if req.Flow != nil {
			flow = *req.Flow
		}
		if req.Audience != nil {
			aud = voice.Audience(*req.Audience)
		}
		h.orch.SetPersonality(flow, aud)
	}
	if req.Lang != nil {
		h.orch.SetLanguage(*req.Lang)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) HandleMintWorkerToken(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Worker.TokenSecret == "" {
		http.Error(w, "worker token secret not configured", http.StatusBadRequest)
		return
	}
	var req struct {
		WorkerID string `json:"worker_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WorkerID == "" {
		http.Error(w, "body must be {\"worker_id\": ...}", http.StatusBadRequest)
		return
	}
	exp := time.Now().Add(time.Duration(h.cfg.Worker.TokenExpMin) * time.Minute).Unix()
	token := auth.GenerateWorkerToken(h.cfg.Worker.TokenSecret, req.WorkerID, exp)
	writeJSON(w, http.StatusOK, map[string]any{
		"worker_id": req.WorkerID,
		"token":     token,
		"exp":       exp,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

package voice

import (
	"context"
	"log"
	"time"
)

const (
	apologyReply = "I'm sorry, I had trouble with that one. Could you try again?"
	clarifyReply = "I'm not sure where you wanted to go. Could you say that again?"

	archiveTimeout = 5 * time.Second
)

// handleCommand runs the command pipeline for one finalized utterance:
// stop capture, announce the utterance, interpret it, archive
// action-bearing exchanges, dispatch the intent, and always speak a reply.
func (o *Orchestrator) handleCommand(text string) {
	o.MicOff()
	o.events.UserSaid(text)

	var fx []func()
	o.mu.Lock()
	o.setPhaseLocked(PhaseThinking, &fx)
	ic := IntentContext{View: o.view, Flow: o.flow, Audience: o.audience, Language: o.lang}
	o.mu.Unlock()
	for _, f := range fx {
		f()
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.InterpreterTimeout)
	start := time.Now()
	intent, err := o.interp.Interpret(ctx, text, ic)
	cancel()
	metricInterpreterLatency.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		log.Printf("[voice] interpreter failed: %v", err)
		metricInterpreterFailures.Inc()
		intent = Intent{Kind: IntentTalk, Reply: apologyReply}
	}
	if intent.Kind == IntentNavigate && intent.Page == "" {
		intent = Intent{Kind: IntentTalk, Reply: clarifyReply}
	}

	// Only action-bearing exchanges are archived; navigation confirmations
	// carry no content worth keeping.
	if intent.Kind == IntentTalk || intent.Kind == IntentContextual {
		rec := Record{
			Title:     recordTitle(text),
			View:      ic.View,
			Intent:    string(intent.Kind),
			UserText:  text,
			ReplyText: intent.Reply,
		}
		actx, acancel := context.WithTimeout(context.Background(), archiveTimeout)
		if err := o.archive.Append(actx, rec); err != nil {
			log.Printf("[voice] archive append failed: %v", err)
		}
		acancel()
	}

	switch intent.Kind {
	case IntentNavigate:
		o.events.Navigated(intent.Page)
	case IntentContextual:
		o.events.ContextualCommand(intent.Command, intent.Payload)
	}

	o.Speak(intent.Reply)
}

func recordTitle(text string) string {
	const max = 40
	if r := []rune(text); len(r) > max {
		text = string(r[:max])
	}
	return "Voice Query: " + text + "..."
}

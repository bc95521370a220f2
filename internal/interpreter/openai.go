// Package interpreter classifies finalized utterances into structured
// intents with a chat-completion model.
package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"opscenter/lex/internal/voice"
)

// ValidPages are the views the assistant may navigate to.
var ValidPages = []string{
	"pulse", "magna_carta", "grind", "lab", "intel",
	"analyzer", "campus", "garage", "playbook",
}

var ErrNoAPIKey = errors.New("interpreter api key not configured")

// Client calls the chat-completion API and parses its strict-JSON reply.
type Client struct {
	api   openai.Client
	model string
	ready bool
}

func New(apiKey, model string) *Client {
	if apiKey == "" {
		return &Client{model: model}
	}
	return &Client{
		api:   openai.NewClient(option.WithAPIKey(apiKey)),
		model: model,
		ready: true,
	}
}

// Ready reports whether the client is configured with an API key.
func (c *Client) Ready() bool { return c.ready }

func (c *Client) Interpret(ctx context.Context, utterance string, ic voice.IntentContext) (voice.Intent, error) {
	if !c.ready {
		return voice.Intent{}, ErrNoAPIKey
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(ic)),
			openai.UserMessage(fmt.Sprintf("User request: %q", utterance)),
		},
		Model: openai.ChatModel(c.model),
	})
	if err != nil {
		return voice.Intent{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return voice.Intent{}, errors.New("no choices in response")
	}
	return ParseIntent(resp.Choices[0].Message.Content)
}

// wireIntent is the model's reply schema.
type wireIntent struct {
	Action         string         `json:"action"`
	SpokenResponse string         `json:"spokenResponse"`
	Page           string         `json:"page,omitempty"`
	Command        string         `json:"command,omitempty"`
	Payload        map[string]any `json:"payload,omitempty"`
}

// ParseIntent decodes the model's JSON reply. Unknown actions degrade to a
// plain spoken reply.
func ParseIntent(raw string) (voice.Intent, error) {
	raw = stripFences(strings.TrimSpace(raw))

	var w wireIntent
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return voice.Intent{}, fmt.Errorf("unmarshal intent: %w", err)
	}

	switch w.Action {
	case "navigate":
		return voice.Intent{Kind: voice.IntentNavigate, Reply: w.SpokenResponse, Page: w.Page}, nil
	case "contextual_command":
		return voice.Intent{Kind: voice.IntentContextual, Reply: w.SpokenResponse, Command: w.Command, Payload: w.Payload}, nil
	default:
		return voice.Intent{Kind: voice.IntentTalk, Reply: w.SpokenResponse}, nil
	}
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func systemPrompt(ic voice.IntentContext) string {
	var b strings.Builder
	b.WriteString("You are the brain of a voice assistant named LEX, integrated into an academic operations app. ")
	b.WriteString(flowInstruction(ic.Flow))
	fmt.Fprintf(&b, " The current view is '%s'. The audience setting is '%s'; adjust your spoken response content appropriately. ", ic.View, ic.Audience)
	b.WriteString("Understand the user's request and return ONLY a JSON object, no markdown, with fields: ")
	b.WriteString(`"action" ("navigate" | "contextual_command" | "talk"), "spokenResponse" (string), and optionally "page", "command", "payload". `)
	b.WriteString("Do not use asterisks or any markdown for emphasis in spokenResponse.\n\n")

	fmt.Fprintf(&b, "- Navigation: only when the user gives an explicit command like \"take me to\", \"let's go to\", \"navigate to\", or \"open\". Valid pages are: %s. A page name mentioned without a navigation command is not navigation.\n", strings.Join(ValidPages, ", "))
	b.WriteString("- Contextual commands: interpret requests in the context of the current view. On 'intel', a search request means action 'contextual_command', command 'search', payload {\"query\": ...}. On 'analyzer', asking what you see means command 'analyze_camera_view'.\n")
	b.WriteString("- General talk: anything else is action 'talk' with a helpful, concise answer.")
	return b.String()
}

func flowInstruction(flow int) string {
	switch {
	case flow <= 33:
		return "Keep your tone formal, precise, and to the point."
	case flow <= 66:
		return "Keep your tone balanced: friendly but focused."
	default:
		return "Keep your tone loose, playful, and conversational."
	}
}

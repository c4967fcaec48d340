// Package llm implements ports.Extractor on top of an OpenAI-compatible chat API.
// The model is forced to call a single tool whose arguments carry the slot diff.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/bytedance/sonic"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	DefaultModel = openai.GPT4oMini
	toolName     = "record_slots"
)

// ErrBadResponse is returned when the model answer cannot be used.
var ErrBadResponse = errors.New("unusable model response")

// Config configures the extractor.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Extractor asks a chat model for the slot diff of an utterance.
type Extractor struct {
	client  *openai.Client
	model   string
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an extractor for cat.
func New(cfg Config, cat *catalog.Catalog, opts ...Option) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	e := &Extractor{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		catalog: cat,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// slotArg is one entry of the tool arguments.
type slotArg struct {
	Key          string   `json:"key"`
	Value        string   `json:"value,omitempty"`
	Values       []string `json:"values,omitempty"`
	NoPreference bool     `json:"no_preference,omitempty"`
	Correction   bool     `json:"correction,omitempty"`
}

type toolArgs struct {
	Domain  string    `json:"domain"`
	Intent  string    `json:"intent"`
	Unclear bool      `json:"unclear"`
	Slots   []slotArg `json:"slots"`
}

// Extract implements ports.Extractor.
func (e *Extractor) Extract(ctx context.Context, req domain.ExtractRequest) (*domain.ExtractResult, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: e.systemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Utterance},
		},
		Tools: []openai.Tool{{Type: openai.ToolTypeFunction, Function: e.tool()}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: toolName},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("%w: no tool call", ErrBadResponse)
	}

	var args toolArgs
	if err := sonic.UnmarshalString(resp.Choices[0].Message.ToolCalls[0].Function.Arguments, &args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	res, err := e.convert(req, args)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Extracted slots", "model", e.model, "keys", res.Diff.Keys(), "intent", res.Intent, "unclear", res.Unclear)
	return res, nil
}

// convert validates the tool arguments against the catalog. Unknown keys are dropped.
func (e *Extractor) convert(req domain.ExtractRequest, args toolArgs) (*domain.ExtractResult, error) {
	res := &domain.ExtractResult{Unclear: args.Unclear}
	switch domain.Intent(args.Intent) {
	case domain.IntentAffirm, domain.IntentCorrection:
		res.Intent = domain.Intent(args.Intent)
	}

	name := req.Domain
	if name == "" {
		if _, ok := e.catalog.Domain(args.Domain); ok {
			res.DomainGuess = args.Domain
		}
		name = res.DomainGuess
		if name == "" {
			name = e.catalog.Default
		}
	}
	def, ok := e.catalog.Domain(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDomain, name)
	}

	for _, s := range args.Slots {
		key := domain.SlotKey(s.Key)
		if _, ok := def.Slot(key); !ok || res.Diff.Touches(key) {
			continue
		}
		var slot domain.Slot
		switch {
		case s.NoPreference:
			slot = domain.NoPreference(domain.SourceExtracted)
		case len(s.Values) > 0:
			slot = domain.FilledList(s.Values, domain.SourceExtracted)
		case strings.TrimSpace(s.Value) != "":
			slot = domain.Filled(strings.TrimSpace(s.Value), domain.SourceExtracted)
		default:
			continue
		}
		correction := s.Correction && req.Slots.Answered(key)
		if correction {
			slot.Source = domain.SourceCorrection
		}
		res.Diff = append(res.Diff, domain.SlotUpdate{Key: key, Slot: slot, Correction: correction})
	}
	if len(res.Diff) > 0 {
		res.Unclear = false
	}
	return res, nil
}

func (e *Extractor) tool() *openai.FunctionDefinition {
	var keys []string
	for _, d := range e.catalog.Domains {
		for _, s := range d.Slots {
			if !slices.Contains(keys, string(s.Key)) {
				keys = append(keys, string(s.Key))
			}
		}
	}
	return &openai.FunctionDefinition{
		Name:        toolName,
		Description: "Record the planning facts stated in the user's message.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"domain":  {Type: jsonschema.String, Enum: e.catalog.Names(), Description: "Planning domain of the conversation."},
				"intent":  {Type: jsonschema.String, Enum: []string{"", "affirm", "correction"}, Description: "affirm when the user agrees, correction when they change an earlier answer."},
				"unclear": {Type: jsonschema.Boolean, Description: "True when the message does not answer the pending question."},
				"slots": {
					Type: jsonschema.Array,
					Items: &jsonschema.Definition{
						Type: jsonschema.Object,
						Properties: map[string]jsonschema.Definition{
							"key":           {Type: jsonschema.String, Enum: keys},
							"value":         {Type: jsonschema.String},
							"values":        {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
							"no_preference": {Type: jsonschema.Boolean, Description: "The user explicitly has no preference (flexible, none, doesn't matter)."},
							"correction":    {Type: jsonschema.Boolean},
						},
						Required: []string{"key"},
					},
				},
			},
			Required: []string{"domain", "slots"},
		},
	}
}

func (e *Extractor) systemPrompt(req domain.ExtractRequest) string {
	var b strings.Builder
	b.WriteString("You extract facts for a planning assistant. Only record what the user states; never guess.\n")
	b.WriteString("People who are flying in or arriving are companions, not the user's starting point.\n\n")

	for _, d := range e.catalog.Domains {
		if req.Domain != "" && d.Name != req.Domain {
			continue
		}
		fmt.Fprintf(&b, "Domain %q slots:\n", d.Name)
		for _, s := range d.Slots {
			fmt.Fprintf(&b, "- %s (%s)\n", s.Key, s.Label)
		}
	}
	if req.PendingQuestion != "" {
		if def, ok := e.catalog.Domain(req.Domain); ok {
			if q, ok := def.Question(req.PendingQuestion); ok {
				fmt.Fprintf(&b, "\nThe assistant just asked: %q (slot %s).\n", q.Prompt, q.Slot)
			}
		}
	}
	var answered []string
	for k := range req.Slots {
		if req.Slots.Answered(k) {
			answered = append(answered, string(k))
		}
	}
	if len(answered) > 0 {
		slices.Sort(answered)
		fmt.Fprintf(&b, "Already answered: %s. Mark changes to these as corrections.\n", strings.Join(answered, ", "))
	}
	return b.String()
}

package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/google/uuid"
)

// DefaultClarifyTolerance is how many unclear answers a question gets before the
// engine records no-preference and moves on.
const DefaultClarifyTolerance = 2

const (
	greetingMessage    = "Hi! What would you like to plan?"
	confirmPrompt      = `Reply "yes" to save it.`
	lockedDraftMessage = "This plan is ready to save. Start a new conversation if you want to change it."
	confirmedMessage   = "This plan is already saved. Start a new conversation to plan something else."
	errorPhaseMessage  = "Something went wrong with this conversation. Please start a new one."
	unrecoverableReply = "Sorry, I couldn't understand that conversation well enough to continue. Please start a new one."
	fallbackAck        = "No problem, we'll keep that open."
)

// Engine is the dialogue controller. It keeps no per-conversation state: every call
// receives the conversation and returns an updated copy.
type Engine struct {
	catalog          *catalog.Catalog
	extractor        ports.Extractor
	enricher         ports.Enricher
	topics           ports.TopicDetector
	activities       ports.ActivityStore
	logger           *slog.Logger
	hooks            domain.LifecycleHooks
	clarifyTolerance int
	now              func() time.Time
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithActivityStore sets where confirmed plans are persisted.
func WithActivityStore(store ports.ActivityStore) EngineOption {
	return func(e *Engine) {
		e.activities = store
	}
}

// WithEnricher replaces the default profile-based enricher.
func WithEnricher(enricher ports.Enricher) EngineOption {
	return func(e *Engine) {
		if enricher != nil {
			e.enricher = enricher
		}
	}
}

// WithTopicDetector enables topic switches before any budgeted question is answered.
func WithTopicDetector(detector ports.TopicDetector) EngineOption {
	return func(e *Engine) {
		e.topics = detector
	}
}

// WithClarifyTolerance sets how many unclear answers a question tolerates. Values below 1 are raised to 1.
func WithClarifyTolerance(n int) EngineOption {
	return func(e *Engine) {
		e.clarifyTolerance = max(n, 1)
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a dialogue controller for the given catalog and extractor.
func NewEngine(cat *catalog.Catalog, extractor ports.Extractor, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:          cat,
		extractor:        extractor,
		enricher:         ProfileEnricher{},
		logger:           slog.New(slog.DiscardHandler),
		clarifyTolerance: DefaultClarifyTolerance,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// turn carries the working copy and bookkeeping of a single Process call.
type turn struct {
	req     domain.TurnRequest
	conv    *domain.Conversation
	def     *catalog.Domain
	started time.Time

	message  string
	question string
	unclear  bool
	phases   []domain.PhaseEvent

	activity *domain.Activity
	tasks    []domain.Task
}

func (t *turn) advance(next domain.Phase) error {
	from := t.conv.Phase
	if from == next {
		return nil
	}
	if !from.CanAdvanceTo(next) {
		return fmt.Errorf("%w: cannot move from %s to %s", domain.ErrMalformedState, from, next)
	}
	t.conv.Phase = next
	t.phases = append(t.phases, domain.PhaseEvent{From: from, To: next})
	return nil
}

// Process runs one dialogue turn. The input conversation is never modified: on success
// the response carries an updated copy, on error the caller keeps its previous state.
func (e *Engine) Process(ctx context.Context, req domain.TurnRequest) (*domain.TurnResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in := req.Conversation
	if in == nil {
		in = domain.NewConversation("")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	mode, err := resolveMode(req.Mode, in.Mode)
	if err != nil {
		return nil, err
	}

	t := &turn{req: req, conv: in.Clone(), started: e.now()}
	t.conv.Mode = mode
	if t.conv.ID == "" {
		t.conv.ID = uuid.NewString()
	}
	if t.conv.Phase == "" {
		t.conv.Phase = domain.PhaseGathering
	}
	if t.conv.Domain != "" {
		def, ok := e.catalog.Domain(t.conv.Domain)
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDomain, t.conv.Domain)
		}
		t.def = def
	}

	switch t.conv.Phase {
	case domain.PhaseConfirmed:
		t.message = confirmedMessage
	case domain.PhaseError:
		t.message = errorPhaseMessage
	case domain.PhaseConfirming:
		err = e.confirm(ctx, t)
	default:
		err = e.gather(ctx, t)
	}
	if err != nil {
		e.logger.Warn("Turn failed", "conversation", in.ID, "phase", in.Phase, "err", err)
		return nil, err
	}
	return e.finish(ctx, t), nil
}

func resolveMode(requested, stored domain.Mode) (domain.Mode, error) {
	switch {
	case requested == "" && stored == "":
		return "", fmt.Errorf("%w: mode is required", domain.ErrInvalidMode)
	case requested == "":
		return stored, nil
	case !requested.Valid():
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidMode, requested)
	case stored != "" && requested != stored:
		return "", fmt.Errorf("%w: conversation uses %s, got %s", domain.ErrModeChanged, stored, requested)
	}
	return requested, nil
}

func (e *Engine) gather(ctx context.Context, t *turn) error {
	conv := t.conv
	input := strings.TrimSpace(t.req.Input)
	hint := strings.TrimSpace(t.req.DomainHint)

	if hint != "" {
		if t.def == nil {
			def, ok := e.catalog.Domain(hint)
			if !ok {
				return fmt.Errorf("%w: %q", domain.ErrUnknownDomain, hint)
			}
			t.def = def
		} else if hint != t.def.Name {
			e.logger.Debug("Ignoring domain hint", "conversation", conv.ID, "domain", t.def.Name, "hint", hint)
		}
	}

	if input == "" && t.def == nil {
		t.message = greetingMessage
		return nil
	}

	res, err := e.extract(ctx, t, input)
	if err != nil {
		if errors.Is(err, domain.ErrUnrecoverable) {
			e.logger.Error("Extraction failed", "conversation", conv.ID, "err", err)
			t.message = unrecoverableReply
			return t.advance(domain.PhaseError)
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	if t.def == nil {
		name := res.DomainGuess
		if name == "" {
			name = e.catalog.Default
		}
		def, ok := e.catalog.Domain(name)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownDomain, name)
		}
		t.def = def
	} else if e.topics != nil && ComputeProgress(conv.Slots, conv.Mode, t.def).Answered == 0 && input != "" {
		if res, err = e.switchTopic(ctx, t, input, res); err != nil {
			return err
		}
	}
	conv.Domain = t.def.Name

	diff := filterDiff(t.def, res.Diff)
	conv.Slots = domain.Merge(conv.Slots, diff)
	profileDefaults(conv, t.req.Profile, t.def)

	ack := acknowledge(diff)
	if conv.PendingQuestion != "" {
		q, ok := t.def.Question(conv.PendingQuestion)
		switch {
		case !ok || conv.Slots.Answered(q.Slot):
			conv.PendingQuestion = ""
		case res.Unclear:
			t.unclear = true
			conv.Clarifications[q.ID]++
			if conv.Clarifications[q.ID] < e.clarifyTolerance {
				t.message = q.Clarify
				t.question = q.ID
				return nil
			}
			e.logger.Debug("Clarification limit reached", "conversation", conv.ID, "question", q.ID)
			conv.Slots = domain.Merge(conv.Slots, domain.SlotDiff{{Key: q.Slot, Slot: domain.NoPreference(domain.SourceFallback)}})
			conv.PendingQuestion = ""
			ack = fallbackAck
		default:
			conv.PendingQuestion = ""
		}
	}

	if q := NextQuestion(conv.Slots, conv.Asked, conv.Mode, t.def); q != nil {
		conv.Asked.MarkAsked(q.ID)
		conv.PendingQuestion = q.ID
		t.question = q.ID
		t.message = joinMessage(ack, q.Prompt)
		if e.hooks.OnQuestionAsked != nil {
			e.hooks.OnQuestionAsked(ctx, &domain.QuestionEvent{EventBase: e.base(conv, domain.EventQuestionAsked), QuestionID: q.ID})
		}
		return nil
	}
	return e.complete(ctx, t, ack)
}

func (e *Engine) extract(ctx context.Context, t *turn, input string) (*domain.ExtractResult, error) {
	name := ""
	if t.def != nil {
		name = t.def.Name
	}
	res, err := e.extractor.Extract(ctx, domain.ExtractRequest{
		Utterance:       input,
		Domain:          name,
		Slots:           t.conv.Slots.Clone(),
		PendingQuestion: t.conv.PendingQuestion,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &domain.ExtractResult{}
	}
	return res, nil
}

// switchTopic asks the detector whether the user changed subject. The asked questions
// are kept so a switch can never make the engine repeat itself.
func (e *Engine) switchTopic(ctx context.Context, t *turn, input string, res *domain.ExtractResult) (*domain.ExtractResult, error) {
	next, switched, err := e.topics.DetectTopic(ctx, input, t.def.Name)
	if err != nil {
		return nil, fmt.Errorf("topic detection failed: %w", err)
	}
	if !switched || next == t.def.Name {
		return res, nil
	}
	def, ok := e.catalog.Domain(next)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDomain, next)
	}
	e.logger.Info("Topic switched", "conversation", t.conv.ID, "from", t.def.Name, "to", next)
	t.def = def
	t.conv.PendingQuestion = ""
	return e.extract(ctx, t, input)
}

// filterDiff drops keys the domain does not track. Clearing a budgeted slot is recorded
// as no-preference so progress never moves backwards.
func filterDiff(def *catalog.Domain, diff domain.SlotDiff) domain.SlotDiff {
	budgeted := make(map[domain.SlotKey]bool)
	for _, mode := range []domain.Mode{domain.ModeQuick, domain.ModeSmart} {
		for _, q := range def.Budget(mode) {
			budgeted[q.Slot] = true
		}
	}
	out := make(domain.SlotDiff, 0, len(diff))
	for _, u := range diff {
		if _, ok := def.Slot(u.Key); !ok {
			continue
		}
		if u.Clear && budgeted[u.Key] {
			u = domain.SlotUpdate{Key: u.Key, Slot: domain.NoPreference(domain.SourceCorrection), Correction: true}
		}
		out = append(out, u)
	}
	return out
}

func profileDefaults(conv *domain.Conversation, profile domain.UserProfile, def *catalog.Domain) {
	if profile.Location == "" || conv.Slots.Get(domain.SlotOrigin).Status != domain.SlotUnset {
		return
	}
	if _, ok := def.Slot(domain.SlotOrigin); !ok {
		return
	}
	conv.Slots[domain.SlotOrigin] = domain.Filled(profile.Location, domain.SourceProfile)
}

// acknowledge repeats back the values a turn filled. No-preference answers get a
// generic reply that never names the slot.
func acknowledge(diff domain.SlotDiff) string {
	var filled []string
	noPref, corrected := false, false
	for _, u := range diff {
		corrected = corrected || u.Correction
		switch {
		case u.Slot.IsFilled():
			filled = append(filled, u.Slot.Display())
		case u.Slot.Status == domain.SlotNoPreference:
			noPref = true
		}
	}
	switch {
	case len(filled) > 0 && corrected:
		return "Updated: " + strings.Join(filled, "; ") + "."
	case len(filled) > 0:
		return "Got it: " + strings.Join(filled, "; ") + "."
	case noPref:
		return fallbackAck
	}
	return ""
}

func joinMessage(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// complete leaves gathering: unanswered budgeted slots become no-preference, the
// enricher runs, and the draft is synthesized for confirmation.
func (e *Engine) complete(ctx context.Context, t *turn, ack string) error {
	conv := t.conv
	var fallback domain.SlotDiff
	for _, q := range t.def.Budget(conv.Mode) {
		if !conv.Slots.Answered(q.Slot) {
			fallback = append(fallback, domain.SlotUpdate{Key: q.Slot, Slot: domain.NoPreference(domain.SourceFallback)})
		}
	}
	conv.Slots = domain.Merge(conv.Slots, fallback)
	conv.PendingQuestion = ""

	if err := t.advance(domain.PhaseEnrichment); err != nil {
		return err
	}
	enr, err := e.enricher.Enrich(ctx, conv.Clone(), t.req.Profile)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}
	conv.Enrichment = enr

	if err := t.advance(domain.PhaseSynthesis); err != nil {
		return err
	}
	conv.Draft = Synthesize(t.def, conv.Slots, enr)

	if err := t.advance(domain.PhaseConfirming); err != nil {
		return err
	}
	t.message = joinMessage(ack, "Here's your plan:\n\n"+RenderDraft(conv.Draft)+"\n\n"+confirmPrompt)
	return nil
}

func (e *Engine) confirm(ctx context.Context, t *turn) error {
	res, err := e.extract(ctx, t, strings.TrimSpace(t.req.Input))
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if res.Intent != domain.IntentAffirm {
		t.message = joinMessage(lockedDraftMessage, RenderDraft(t.conv.Draft), confirmPrompt)
		return nil
	}

	activity, tasks, err := e.persist(ctx, t.conv, t.req.Profile.ID)
	if err != nil {
		return err
	}
	t.activity = activity
	t.tasks = tasks
	t.conv.CreatedActivityID = activity.ID
	if err := t.advance(domain.PhaseConfirmed); err != nil {
		return err
	}
	t.message = fmt.Sprintf("Saved %q with %d tasks.", activity.Title, len(tasks))
	if e.hooks.OnPlanCreated != nil {
		e.hooks.OnPlanCreated(ctx, &domain.PlanEvent{
			EventBase:  e.base(t.conv, domain.EventPlanCreated),
			ActivityID: activity.ID,
			Tasks:      len(tasks),
		})
	}
	return nil
}

func (e *Engine) finish(ctx context.Context, t *turn) *domain.TurnResponse {
	conv := t.conv
	now := e.now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now
	if input := strings.TrimSpace(t.req.Input); input != "" {
		conv.History = append(conv.History, domain.Turn{Role: domain.RoleUser, Content: input})
	}
	conv.History = append(conv.History, domain.Turn{Role: domain.RoleAssistant, Content: t.message})

	progress := ComputeProgress(conv.Slots, conv.Mode, t.def)
	for i := range t.phases {
		ev := t.phases[i]
		ev.EventBase = e.base(conv, domain.EventPhaseChange)
		e.logger.Debug("Phase changed", "conversation", conv.ID, "from", ev.From, "to", ev.To)
		if e.hooks.OnPhaseChange != nil {
			e.hooks.OnPhaseChange(ctx, &ev)
		}
	}
	if e.hooks.OnTurn != nil {
		e.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase: e.base(conv, domain.EventTurn),
			Phase:     conv.Phase,
			Progress:  progress,
			Unclear:   t.unclear,
			Duration:  now.Sub(t.started),
		})
	}

	resp := &domain.TurnResponse{
		Message:         t.message,
		Phase:           conv.Phase,
		Domain:          conv.Domain,
		Conversation:    conv,
		Progress:        progress,
		Question:        t.question,
		CreatedActivity: t.activity,
		CreatedTasks:    t.tasks,
	}
	if conv.Phase == domain.PhaseConfirming || conv.Phase == domain.PhaseConfirmed {
		resp.Draft = conv.Draft.Clone()
	}
	return resp
}

func (e *Engine) base(conv *domain.Conversation, typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:      e.now(),
		Type:           typ,
		ConversationID: conv.ID,
		Domain:         conv.Domain,
		Mode:           conv.Mode,
	}
}

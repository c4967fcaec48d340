package waypoint

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/extract"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
)

// Version is the library version reported by the CLI and the servers.
const Version = "0.3.0"

// Client is the high-level entry point for the Waypoint library.
// It wraps the dialogue engine and a session manager that stores conversations between turns.
type Client struct {
	engine     *runtime.Engine
	sessions   *session.Manager
	activities ports.ActivityStore
	catalog    *catalog.Catalog

	extractor     ports.Extractor
	conversations ports.ConversationStore
	locker        ports.DistributedLocker
	enricher      ports.Enricher
	topics        ports.TopicDetector
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	tolerance     int

	mode    domain.Mode
	domain  string
	profile domain.UserProfile
}

var _ ports.DialogueEngine = (*Client)(nil)

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCatalog replaces the embedded domain catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(c *Client) {
		c.catalog = cat
	}
}

// WithExtractor replaces the rule-based extractor.
func WithExtractor(e ports.Extractor) Option {
	return func(c *Client) {
		c.extractor = e
	}
}

// WithConversationStore sets where conversations are kept between turns (default: memory).
func WithConversationStore(store ports.ConversationStore) Option {
	return func(c *Client) {
		c.conversations = store
	}
}

// WithActivityStore sets where confirmed plans are written (default: memory).
func WithActivityStore(store ports.ActivityStore) Option {
	return func(c *Client) {
		c.activities = store
	}
}

// WithLocker adds a distributed lock around session-backed turns.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *Client) {
		c.locker = locker
	}
}

// WithEnricher replaces the profile enricher.
func WithEnricher(e ports.Enricher) Option {
	return func(c *Client) {
		c.enricher = e
	}
}

// WithTopicDetector enables topic switches before the first answer.
func WithTopicDetector(d ports.TopicDetector) Option {
	return func(c *Client) {
		c.topics = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = hooks
	}
}

// WithClarifyTolerance sets how many unclear answers a question tolerates.
func WithClarifyTolerance(n int) Option {
	return func(c *Client) {
		c.tolerance = n
	}
}

// WithMode sets the mode used when a new conversation does not name one (default: quick).
func WithMode(mode domain.Mode) Option {
	return func(c *Client) {
		c.mode = mode
	}
}

// WithDomain sets the domain hint used for new conversations.
func WithDomain(name string) Option {
	return func(c *Client) {
		c.domain = name
	}
}

// WithProfile sets the profile used by Turn.
func WithProfile(p domain.UserProfile) Option {
	return func(c *Client) {
		c.profile = p
	}
}

// New builds a client. Without options it runs fully in memory with the embedded catalog.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		mode:      domain.ModeQuick,
		tolerance: runtime.DefaultClarifyTolerance,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.mode.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, c.mode)
	}
	if c.catalog == nil {
		c.catalog = catalog.Default()
	}
	if c.domain != "" {
		if _, ok := c.catalog.Domain(c.domain); !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDomain, c.domain)
		}
	}
	if c.extractor == nil {
		c.extractor = extract.NewRules(c.catalog, extract.WithRulesLogger(c.logger))
	}
	if c.conversations == nil {
		c.conversations = memory.NewStore()
	}
	if c.activities == nil {
		c.activities = memory.NewActivityStore()
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
		runtime.WithActivityStore(c.activities),
		runtime.WithClarifyTolerance(c.tolerance),
	}
	if c.enricher != nil {
		engineOpts = append(engineOpts, runtime.WithEnricher(c.enricher))
	}
	if c.topics != nil {
		engineOpts = append(engineOpts, runtime.WithTopicDetector(c.topics))
	}
	c.engine = runtime.NewEngine(c.catalog, c.extractor, engineOpts...)

	sessionOpts := []session.Option{session.WithLogger(c.logger)}
	if c.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(c.locker))
	}
	c.sessions = session.NewManager(c.conversations, sessionOpts...)
	return c, nil
}

// Process runs one stateless turn. The caller keeps resp.Conversation and sends it back
// with the next input. An empty req.Mode on a new conversation uses the client's mode.
func (c *Client) Process(ctx context.Context, req domain.TurnRequest) (*domain.TurnResponse, error) {
	if req.Conversation == nil || req.Conversation.Mode == "" {
		if req.Mode == "" {
			req.Mode = c.mode
		}
		if req.DomainHint == "" {
			req.DomainHint = c.domain
		}
	}
	return c.engine.Process(ctx, req)
}

// TurnInput is one session-backed turn.
type TurnInput struct {
	Input      string
	Mode       domain.Mode
	DomainHint string
	// Profile overrides the client's profile when set.
	Profile *domain.UserProfile
}

// Turn runs one turn of the stored conversation id with the client's profile,
// creating the conversation on first use.
func (c *Client) Turn(ctx context.Context, id, input string) (*domain.TurnResponse, error) {
	return c.Converse(ctx, id, TurnInput{Input: input})
}

// Converse runs one turn of the stored conversation id. Turns on the same id are
// serialized and a failed turn leaves the stored conversation unchanged.
func (c *Client) Converse(ctx context.Context, id string, in TurnInput) (*domain.TurnResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: conversation id is required", domain.ErrMalformedState)
	}
	profile := c.profile
	if in.Profile != nil {
		profile = *in.Profile
	}

	var resp *domain.TurnResponse
	_, err := c.sessions.Update(ctx, id, true, func(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
		var err error
		resp, err = c.Process(ctx, domain.TurnRequest{
			Input:        in.Input,
			Conversation: conv,
			Profile:      profile,
			Mode:         in.Mode,
			DomainHint:   in.DomainHint,
		})
		if err != nil {
			return nil, err
		}
		return resp.Conversation, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Conversation loads a stored conversation.
func (c *Client) Conversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return c.sessions.Load(ctx, id)
}

// Conversations lists stored conversation IDs.
func (c *Client) Conversations(ctx context.Context) ([]string, error) {
	return c.sessions.List(ctx)
}

// DeleteConversation removes a stored conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.sessions.Delete(ctx, id)
}

// Activity returns a saved plan and its tasks in order.
func (c *Client) Activity(ctx context.Context, id string) (*domain.Activity, []domain.Task, error) {
	a, err := c.activities.GetActivity(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := c.activities.GetActivityTasks(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return a, tasks, nil
}

// Catalog returns the domain catalog in use.
func (c *Client) Catalog() *catalog.Catalog {
	return c.catalog
}

// Mode returns the default mode for new conversations.
func (c *Client) Mode() domain.Mode {
	return c.mode
}

// internal/engine/chat/controller.go
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"segment-insights/internal/common/errors"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/common/metrics"
	"segment-insights/internal/engine/analytics"
	"segment-insights/internal/engine/contextdoc"
	"segment-insights/internal/engine/entities"
	"segment-insights/internal/engine/fallback"
	"segment-insights/internal/engine/intent"
	"segment-insights/internal/engine/llm"
	"segment-insights/internal/engine/memory"
	"segment-insights/internal/engine/transcript"
)

const troubleMessage = "❌ I'm experiencing technical difficulties. " +
	"Please try rephrasing your question or check if the customer data is properly loaded."

// Options wires a Controller. Engine, Generator, Store and Indexer are
// all optional; the controller degrades instead of failing.
type Options struct {
	Engine         *analytics.Engine
	Generator      llm.Generator
	MaxMemoryTurns int
	SessionID      string
	Store          *memory.RedisStore
	Indexer        *transcript.Indexer
	Logger         logger.Logger
}

// Controller runs one conversation: it classifies the query, grounds
// the prompt in real analytics, calls the generator and falls back to
// deterministic answers when generation fails. Respond never returns
// an error.
type Controller struct {
	engine    *analytics.Engine
	generator llm.Generator
	assembler *contextdoc.Assembler
	synth     *fallback.Synthesizer
	memory    *memory.Memory
	store     *memory.RedisStore
	indexer   *transcript.Indexer
	sessionID string
	logger    logger.Logger
}

// Result carries a response and how it was produced.
type Result struct {
	Response string        `json:"response"`
	Intent   intent.Intent `json:"intent"`
	Segments []int         `json:"segments"`
	Fallback bool          `json:"fallback"`
}

// Status reports the controller's wiring for health inspection.
type Status struct {
	SessionID         string          `json:"session_id"`
	GeneratorReady    bool            `json:"generator_ready"`
	DataConnected     bool            `json:"data_connected"`
	ConversationTurns int             `json:"conversation_turns"`
	SupportedIntents  []intent.Intent `json:"supported_intents"`
}

func NewController(opts Options) *Controller {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	return &Controller{
		engine:    opts.Engine,
		generator: opts.Generator,
		assembler: contextdoc.NewAssembler(opts.Engine),
		synth:     fallback.NewSynthesizer(opts.Engine),
		memory:    memory.New(opts.MaxMemoryTurns),
		store:     opts.Store,
		indexer:   opts.Indexer,
		sessionID: sessionID,
		logger: opts.Logger.With(map[string]interface{}{
			"sessionId": sessionID,
		}),
	}
}

func (c *Controller) SessionID() string {
	return c.sessionID
}

// RestoreHistory reloads this session's transcript from the store so a
// conversation survives a process restart. Without a store it is a
// no-op.
func (c *Controller) RestoreHistory(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	turns, err := c.store.Load(ctx, c.sessionID)
	if err != nil {
		return err
	}
	c.memory.Restore(turns)
	return nil
}

// Respond answers one query. Generation failures degrade to the
// deterministic synthesizer, so the caller always gets an answer.
func (c *Controller) Respond(ctx context.Context, query string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("response pipeline panicked", map[string]interface{}{
				"panic": r,
			})
			result = Result{Response: troubleMessage, Intent: intent.General, Fallback: true}
		}
	}()

	it := intent.Classify(query)
	segments := c.extractSegments(query)
	metrics.ChatQueriesTotal.WithLabelValues(string(it)).Inc()

	c.logger.Info("processing query", map[string]interface{}{
		"intent":   string(it),
		"segments": segments,
	})

	response, usedFallback := c.generate(ctx, query, it, segments)

	c.memory.AppendExchange(query, response)
	c.persist(ctx, query, response, it, segments, usedFallback)

	return Result{
		Response: response,
		Intent:   it,
		Segments: segments,
		Fallback: usedFallback,
	}
}

func (c *Controller) generate(ctx context.Context, query string, it intent.Intent, segments []int) (string, bool) {
	if c.generator == nil {
		metrics.ChatFallbacksTotal.WithLabelValues("no_generator").Inc()
		return fallback.PostProcess(c.synth.Respond(it, segments), it), true
	}

	contextDoc := c.assembler.Build(it, segments)
	prompt := llm.BuildPrompt(query, contextDoc, c.memory.Turns())

	text, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		metrics.ChatFallbacksTotal.WithLabelValues(string(errors.CodeOf(err))).Inc()
		c.logger.Warn("generation failed, using deterministic answer", map[string]interface{}{
			"error": err.Error(),
		})
		return fallback.PostProcess(c.synth.Respond(it, segments), it), true
	}
	return fallback.PostProcess(text, it), false
}

// persist writes the exchange to the session store and the transcript
// index. Both are best effort.
func (c *Controller) persist(ctx context.Context, query, response string, it intent.Intent, segments []int, usedFallback bool) {
	if c.store != nil {
		if err := c.store.AppendExchange(ctx, c.sessionID, query, response); err != nil {
			c.logger.Warn("session store write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if c.indexer != nil {
		entry := transcript.Entry{
			SessionID: c.sessionID,
			Query:     query,
			Response:  response,
			Intent:    it,
			Segments:  segments,
			Fallback:  usedFallback,
			Timestamp: time.Now().UTC(),
		}
		if err := c.indexer.Index(ctx, entry); err != nil {
			c.logger.Warn("transcript indexing failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (c *Controller) extractSegments(query string) []int {
	if c.engine == nil {
		return entities.Extract(query)
	}
	return entities.ExtractKnown(query, c.engine.Segments())
}

// ClearMemory drops the conversation, in process and in the store.
func (c *Controller) ClearMemory(ctx context.Context) error {
	c.memory.Clear()
	if c.store != nil {
		return c.store.Clear(ctx, c.sessionID)
	}
	return nil
}

// ConversationSummary reports the buffered conversation statistics.
func (c *Controller) ConversationSummary() memory.Summary {
	return c.memory.Summarize()
}

// SystemStatus reports what the controller is wired to.
func (c *Controller) SystemStatus() Status {
	return Status{
		SessionID:         c.sessionID,
		GeneratorReady:    c.generator != nil,
		DataConnected:     c.engine != nil,
		ConversationTurns: c.memory.Len(),
		SupportedIntents:  intent.Supported(),
	}
}

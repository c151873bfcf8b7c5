package nlq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fieldops/backend/internal/ai"
	"github.com/fieldops/backend/internal/metrics"
	"github.com/fieldops/backend/internal/models"
)

// ErrEmptyQuestion is returned when a question normalizes to no tokens.
var ErrEmptyQuestion = errors.New("empty question")

// assistantHistory is how many stored chat messages go with an assistant call.
const assistantHistory = 4

// RecordSource is the data store collaborator. Both reads return the full
// table; the engine never writes.
type RecordSource interface {
	ListSalesmen(ctx context.Context) ([]models.Salesman, error)
	ListRepairDevices(ctx context.Context) ([]models.RepairDevice, error)
}

type ReplySource string

const (
	SourceGreeting  ReplySource = "greeting"
	SourceRules     ReplySource = "rules"
	SourceContext   ReplySource = "context"
	SourceFallback  ReplySource = "fallback"
	SourceAssistant ReplySource = "assistant"
)

type Reply struct {
	Answer     string      `json:"answer"`
	Intent     Intent      `json:"intent"`
	EntityKind EntityKind  `json:"entity_kind,omitempty"`
	Matched    int         `json:"matched"`
	Source     ReplySource `json:"source"`
}

// Engine answers questions for one service. Contexts, Assistant and
// Metrics are optional.
type Engine struct {
	Source    RecordSource
	Contexts  ContextStore
	Assistant ai.Assistant
	Vocab     *Vocabulary
	Metrics   *metrics.Metrics
	Now       func() time.Time

	log zerolog.Logger
}

func NewEngine(source RecordSource, contexts ContextStore, vocab *Vocabulary, logger zerolog.Logger) *Engine {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Engine{
		Source:   source,
		Contexts: contexts,
		Vocab:    vocab,
		Now:      time.Now,
		log:      logger.With().Str("component", "nlq").Logger(),
	}
}

// Answer runs one question through the rules for the given session. The
// returned error is either ErrEmptyQuestion or a wrapped fetch failure;
// every other outcome is an answer.
func (e *Engine) Answer(ctx context.Context, sessionID, question string) (Reply, error) {
	start := time.Now()
	reply, err := e.answer(ctx, sessionID, question)
	if err == nil {
		e.Metrics.ObserveQuestion(string(reply.Intent), string(reply.Source), time.Since(start))
	}
	e.log.Debug().
		Str("session_id", sessionID).
		Str("intent", string(reply.Intent)).
		Str("entity_kind", string(reply.EntityKind)).
		Str("source", string(reply.Source)).
		Int("matched", reply.Matched).
		Err(err).
		Msg("question answered")
	return reply, err
}

func (e *Engine) answer(ctx context.Context, sessionID, question string) (Reply, error) {
	tokens := Normalize(question, e.Vocab.Typos)
	if len(tokens) == 0 {
		return Reply{}, ErrEmptyQuestion
	}
	q := NewQuestion(tokens)

	// Greeting is terminal: no context read, no fetch, no state change.
	if isGreeting(q) {
		return Reply{Answer: GreetingMessage, Intent: IntentGreeting, Source: SourceGreeting}, nil
	}

	conv := e.load(ctx, sessionID)
	ents := Extract(tokens, e.Vocab)
	intent := Classify(tokens)

	if refersBack(q, ents, intent) && conv.ResultSize() > 0 {
		return e.answerFromContext(ctx, sessionID, conv, q, intent), nil
	}

	if intent == IntentUnknown || intent == IntentComparison {
		return e.fallback(ctx, sessionID, conv, question, intent)
	}

	kind := ents.Kind
	filters := ents.Filters()
	if kind == KindNone {
		if conv == nil || conv.EntityKind == KindNone {
			return Reply{Answer: ClarifyKindMessage, Intent: intent, Source: SourceFallback}, nil
		}
		kind = conv.EntityKind
		filters = filters.inherit(conv.Filters)
	}
	// SOTI is a salesman flag; devices have nothing to filter it on.
	if kind == KindDevices {
		filters.NoSOTI = false
	}

	salesmen, devices, err := e.fetch(ctx)
	if err != nil {
		return Reply{Intent: intent, EntityKind: kind}, err
	}
	if len(salesmen) == 0 && len(devices) == 0 {
		return Reply{Answer: NoDataMessage, Intent: intent, EntityKind: kind, Source: SourceFallback}, nil
	}

	next := &Conversation{EntityKind: kind, Intent: intent, Filters: filters, UpdatedAt: e.Now()}
	if conv != nil {
		next.History = conv.History
	}
	switch kind {
	case KindSalesmen:
		next.Salesmen = FilterSalesmen(salesmen, filters)
	case KindDevices:
		next.Devices = FilterDevices(devices, filters)
	}
	recs := recordsOf(kind, next.Salesmen, next.Devices)

	var answer string
	switch intent {
	case IntentCounting:
		answer = countAnswer(kind, len(recs), filters)
	case IntentDuration:
		answer = durationAnswer(kind, recs, filters, e.Now())
	case IntentListing:
		answer = listAnswer(kind, recs, filters)
	case IntentExistence:
		answer = existenceAnswer(kind, len(recs), filters)
	default:
		answer = detailAnswer(kind, recs, q, filters)
	}

	e.save(ctx, sessionID, next)
	return Reply{Answer: answer, Intent: intent, EntityKind: kind, Matched: len(recs), Source: SourceRules}, nil
}

// answerFromContext resolves "it"/"that" against the previous turn. Only a
// single stored record is resolvable.
func (e *Engine) answerFromContext(ctx context.Context, sessionID string, conv *Conversation, q Question, intent Intent) Reply {
	reply := Reply{Intent: IntentPronoun, EntityKind: conv.EntityKind, Matched: conv.ResultSize(), Source: SourceContext}
	if conv.ResultSize() > 1 {
		reply.Answer = ClarifyPronounMessage
		return reply
	}

	recs := recordsOf(conv.EntityKind, conv.Salesmen, conv.Devices)
	if intent == IntentDuration {
		reply.Answer = durationAnswer(conv.EntityKind, recs, conv.Filters, e.Now())
	} else {
		reply.Answer = detailAnswer(conv.EntityKind, recs, q, conv.Filters)
	}
	conv.UpdatedAt = e.Now()
	e.save(ctx, sessionID, conv)
	return reply
}

// fallback answers questions no rule understands, through the assistant
// when one is configured.
func (e *Engine) fallback(ctx context.Context, sessionID string, conv *Conversation, question string, intent Intent) (Reply, error) {
	if e.Assistant == nil {
		return Reply{Answer: HelpMessage, Intent: intent, Source: SourceFallback}, nil
	}

	salesmen, devices, err := e.fetch(ctx)
	if err != nil {
		return Reply{Intent: intent}, err
	}
	system, err := ai.SystemPrompt(salesmen, devices)
	if err != nil {
		return Reply{Intent: intent}, fmt.Errorf("build assistant prompt: %w", err)
	}

	next := &Conversation{UpdatedAt: e.Now()}
	if conv != nil {
		c := *conv
		next = &c
		next.UpdatedAt = e.Now()
	}
	history := []ai.ChatMessage{{Role: ai.RoleSystem, Content: system}}
	history = append(history, recent(next.History, assistantHistory)...)

	answer, err := e.Assistant.Ask(ctx, question, history)
	if err != nil {
		e.log.Warn().Err(err).Str("session_id", sessionID).Msg("assistant call failed")
		e.Metrics.AssistantCall(assistantOutcome(err))
		return Reply{Answer: "Sorry, I hit an AI snag: " + err.Error(), Intent: intent, Source: SourceAssistant}, nil
	}
	e.Metrics.AssistantCall("ok")

	next.appendHistory(
		ai.ChatMessage{Role: ai.RoleUser, Content: question},
		ai.ChatMessage{Role: ai.RoleAssistant, Content: answer},
	)
	e.save(ctx, sessionID, next)
	return Reply{Answer: answer, Intent: intent, Source: SourceAssistant}, nil
}

// refersBack reports whether the question points at the previous result.
// "that" also opens relative clauses ("list devices that ..."), so it only
// counts outside counting and listing questions.
func refersBack(q Question, ents Entities, intent Intent) bool {
	if !ents.Pronoun || ents.HasConstraint() {
		return false
	}
	if q.Has("it") {
		return true
	}
	return intent != IntentCounting && intent != IntentListing
}

func assistantOutcome(err error) string {
	var rl ai.RateLimitError
	if errors.As(err, &rl) {
		return "rate_limited"
	}
	return "error"
}

// fetch reads both tables concurrently. Either failure fails the request.
func (e *Engine) fetch(ctx context.Context) ([]models.Salesman, []models.RepairDevice, error) {
	var (
		salesmen []models.Salesman
		devices  []models.RepairDevice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := e.Source.ListSalesmen(gctx)
		if err != nil {
			e.Metrics.FetchError("salesmen")
			return fmt.Errorf("salesmen fetch failed: %w", err)
		}
		salesmen = rows
		return nil
	})
	g.Go(func() error {
		rows, err := e.Source.ListRepairDevices(gctx)
		if err != nil {
			e.Metrics.FetchError("repair_devices")
			return fmt.Errorf("repair devices fetch failed: %w", err)
		}
		devices = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return salesmen, devices, nil
}

// load returns the stored conversation, or nil. Store errors degrade to
// "no context".
func (e *Engine) load(ctx context.Context, sessionID string) *Conversation {
	if e.Contexts == nil {
		return nil
	}
	conv, err := e.Contexts.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNoConversation) {
			e.log.Warn().Err(err).Str("session_id", sessionID).Msg("load conversation")
		}
		return nil
	}
	return conv
}

func (e *Engine) save(ctx context.Context, sessionID string, conv *Conversation) {
	if e.Contexts == nil {
		return
	}
	if err := e.Contexts.Save(ctx, sessionID, conv); err != nil {
		e.log.Warn().Err(err).Str("session_id", sessionID).Msg("save conversation")
	}
}

// Reset forgets the session's conversation.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	if e.Contexts == nil {
		return nil
	}
	return e.Contexts.Reset(ctx, sessionID)
}

// Explanation is the classifier's view of a question, without data access.
type Explanation struct {
	Tokens   []string `json:"tokens"`
	Entities Entities `json:"entities"`
	Intent   Intent   `json:"intent"`
}

func (e *Engine) Explain(question string) Explanation {
	tokens := Normalize(question, e.Vocab.Typos)
	return Explanation{
		Tokens:   tokens,
		Entities: Extract(tokens, e.Vocab),
		Intent:   Classify(tokens),
	}
}

func recent(history []ai.ChatMessage, n int) []ai.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sayeesck/portfolio-chatbot-go/internal/chat/search"
	"github.com/sayeesck/portfolio-chatbot-go/internal/config"
	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/metrics"
	"github.com/sayeesck/portfolio-chatbot-go/internal/profile"
	"github.com/sayeesck/portfolio-chatbot-go/internal/stringutil"
)

// Completer is an optional generative backend used to rephrase an
// already-correct templated reply. It is never on the critical path:
// any failure or delay falls back to the templated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	IsEnabled() bool
}

// Engine is the dialogue controller. It orchestrates one message at a
// time: normalize, resolve the state machine, match intent, generate a
// reply, and record the transcript. The engine itself is stateless;
// all mutable dialogue state lives in the Session.
type Engine struct {
	profile    *profile.Profile
	normalizer *Normalizer
	matcher    *Matcher
	responder  *Responder
	completer  Completer
	logger     *logger.Logger
	metrics    *metrics.Metrics

	historyWindow     int
	maxMessageLength  int
	completionTimeout time.Duration
}

// NewEngine wires the dialogue engine over a loaded profile.
// index and m may be nil.
func NewEngine(p *profile.Profile, index *search.ProjectIndex, cfg config.EngineConfig, log *logger.Logger, m *metrics.Metrics) *Engine {
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = config.CompletionTimeout
	}
	return &Engine{
		profile:           p,
		normalizer:        NewNormalizer(DefaultSpellings(), TriggerKeywords(), cfg.SpellingSensitivity),
		matcher:           NewMatcher(cfg.ConfidenceThreshold),
		responder:         NewResponder(p, index, cfg.ProjectThreshold),
		logger:            log.WithModule("chat"),
		metrics:           m,
		historyWindow:     cfg.HistoryWindow,
		maxMessageLength:  cfg.MaxMessageLength,
		completionTimeout: timeout,
	}
}

// SetCompleter attaches an optional generative backend for reply polish.
func (e *Engine) SetCompleter(c Completer) {
	e.completer = c
}

// NewSession creates a session sized to the engine's history window.
func (e *Engine) NewSession() *Session {
	return NewSession(e.historyWindow)
}

// ProcessMessage is the single entry point for a user message. It never
// panics past this boundary: unexpected handler failures become a fixed
// apology reply and reset the clarification state. Every call appends
// exactly two transcript entries, user then bot.
func (e *Engine) ProcessMessage(ctx context.Context, sess *Session, raw string) (reply string) {
	// Overlapping requests for one session queue up here: a turn runs
	// start to finish before the next begins, so racing clients cannot
	// interleave state machine transitions.
	sess.BeginTurn()
	defer sess.EndTurn()

	start := time.Now()
	userText := stringutil.Truncate(strings.TrimSpace(raw), e.maxMessageLength)
	topicLabel := TopicUnknown.String()
	outcome := "matched"
	recorded := false

	defer func() {
		if rec := recover(); rec != nil {
			e.logger.WithSessionID(sess.ID()).WithField("panic", rec).Errorf("handler failure, replying with apology")
			sess.SetState(StateIdle)
			reply = e.responder.ApologyReply()
			outcome = "error"
			if !recorded {
				sess.Record(userText, reply)
			}
		}
		if e.metrics != nil {
			e.metrics.RecordMessage(topicLabel, outcome, time.Since(start).Seconds())
		}
	}()

	normalized := e.normalizer.Normalize(userText)

	var allowPolish bool
	switch {
	case sess.State() == StateAwaitingProjectChoice:
		topicLabel = TopicProjects.String()
		if strings.Contains(normalized, "list projects") {
			// Re-emit the list and keep waiting for a choice.
			reply = e.responder.ProjectList()
			outcome = "clarification"
		} else {
			// The clarification is single-shot: consumed whether or not
			// the lookup succeeds.
			var ok bool
			reply, ok = e.responder.ProjectDetail(normalized, sess)
			sess.SetState(StateIdle)
			if ok {
				allowPolish = true
			} else {
				outcome = "fallback"
			}
		}

	default:
		match := e.matcher.Classify(normalized)
		topicLabel = match.Topic.String()
		if e.metrics != nil && !match.Exact {
			e.metrics.RecordMatchConfidence(match.Confidence)
		}

		switch match.Topic {
		case TopicProjects:
			reply = e.responder.ProjectList()
			if len(e.profile.Projects) > 0 {
				sess.SetState(StateAwaitingProjectChoice)
				outcome = "clarification"
			}
		case TopicUnknown:
			reply = e.responder.Generate(TopicUnknown, sess)
			outcome = "fallback"
		case TopicInappropriate, TopicGreeting, TopicFarewell, TopicHelp:
			reply = e.responder.Generate(match.Topic, sess)
		default:
			reply = e.responder.Generate(match.Topic, sess)
			allowPolish = true
		}
	}

	if allowPolish {
		reply = e.polish(ctx, sess, userText, reply)
	}

	sess.Record(userText, reply)
	recorded = true
	return reply
}

// Greeting produces an opening line without recording a turn.
// The terminal client prints it before the first prompt.
func (e *Engine) Greeting(sess *Session) string {
	return e.responder.Generate(TopicGreeting, sess)
}

// Farewell produces a closing line without recording a turn.
func (e *Engine) Farewell(sess *Session) string {
	return e.responder.Generate(TopicFarewell, sess)
}

// History returns the session transcript in chronological order.
func (e *Engine) History(sess *Session) []Turn {
	return sess.History()
}

// ClearHistory empties the session transcript and resets its state.
func (e *Engine) ClearHistory(sess *Session) {
	sess.Clear()
}

// polish asks the generative backend to rephrase the templated reply.
// The templated reply stays authoritative: any error, timeout, or empty
// result returns it unchanged.
func (e *Engine) polish(ctx context.Context, sess *Session, userText, reply string) string {
	if e.completer == nil || !e.completer.IsEnabled() {
		return reply
	}

	cctx, cancel := context.WithTimeout(ctx, e.completionTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"You are a portfolio chatbot. Rephrase the reply below in a friendly, natural tone. "+
			"Keep every fact exactly as given, add nothing, and answer with the rephrased text only.\n\n"+
			"Visitor message: %s\nReply: %s",
		userText, reply,
	)

	polished, err := e.completer.Complete(cctx, prompt)
	if err != nil {
		e.logger.WithSessionID(sess.ID()).WithError(err).Debugf("reply polish failed, using templated reply")
		return reply
	}
	polished = strings.TrimSpace(polished)
	if polished == "" {
		return reply
	}
	return polished
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"askstream/internal/llm"
	"askstream/internal/models"
	"askstream/internal/search"
	"askstream/pkg/logger"
)

// Sink receives events as the pipeline emits them. An Emit error means
// the client is gone and remaining work should stop. Close is called
// exactly once per run, on every exit path.
type Sink interface {
	Emit(event models.StreamEvent) error
	Close() error
}

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Searcher resolves a query into results. It never fails: degraded
// responses carry an explanatory summary instead.
type Searcher interface {
	Search(ctx context.Context, query string) *models.SearchResponse
}

// Pipeline states, in strict forward order. One pass per request, no
// loops, which keeps "at most one tool_call, exactly one terminal event"
// true by construction.
type state int

const (
	stateValidate state = iota
	stateAcknowledge
	stateDecide
	stateToolCall
	stateSynthesize
	stateFinalize
	stateDone
)

// errEmit marks a broken sink; the run aborts without a terminal event
// because there is nobody left to read it.
var errEmit = errors.New("event sink broken")

// errBlankQuery rejects empty or whitespace-only queries.
var errBlankQuery = errors.New("query must not be empty")

// emptyAnswerFallback is sent when the model returns no text at all.
const emptyAnswerFallback = "I was unable to generate an answer for this query. Please try rephrasing it."

// Orchestrator drives one query through decide -> search -> synthesize,
// emitting progress events along the way. It holds no per-request state;
// concurrent runs are independent.
type Orchestrator struct {
	completer Completer
	searcher  Searcher
}

// New creates an orchestrator over the two external clients.
func New(completer Completer, searcher Searcher) *Orchestrator {
	return &Orchestrator{completer: completer, searcher: searcher}
}

// run carries the mutable state of a single request between steps.
type run struct {
	ctx         context.Context
	query       string
	sink        Sink
	start       time.Time
	needsSearch bool
	citations   string
}

func (r *run) emit(event models.StreamEvent) error {
	if err := r.sink.Emit(event); err != nil {
		return fmt.Errorf("%w: %v", errEmit, err)
	}
	return nil
}

// Run executes the pipeline for query. All outcomes are reported through
// sink; the sink is closed exactly once before Run returns.
func (o *Orchestrator) Run(ctx context.Context, query string, sink Sink) {
	defer sink.Close()

	r := &run{
		ctx:   ctx,
		query: strings.TrimSpace(query),
		sink:  sink,
		start: time.Now(),
	}

	log := logger.WithTraceID(logger.TraceIDFromContext(ctx))

	for s := stateValidate; s != stateDone; {
		next, err := o.step(r, s)
		if err != nil {
			if errors.Is(err, errEmit) {
				log.Warn("client disconnected mid-stream", zap.Error(err))
				return
			}
			log.Error("pipeline failed",
				zap.String("query", r.query),
				zap.Int("state", int(s)),
				zap.Error(err),
			)
			_ = sink.Emit(models.ErrorEvent(userMessage(err)))
			return
		}
		s = next
	}
}

// step runs one state and names the next. Returning an error transitions
// to the single terminal error event in Run.
func (o *Orchestrator) step(r *run, s state) (state, error) {
	switch s {
	case stateValidate:
		if r.query == "" {
			return stateDone, errBlankQuery
		}
		return stateAcknowledge, nil

	case stateAcknowledge:
		return stateDecide, r.emit(models.ReasoningEvent(fmt.Sprintf("Received query: %q", r.query)))

	case stateDecide:
		raw, err := o.completer.Complete(r.ctx, buildDecisionPrompt(r.query, time.Now()))
		if err != nil {
			return stateDone, fmt.Errorf("decide whether to search: %w", err)
		}
		r.needsSearch = parseDecision(raw)

		msg := "The query can be answered from stable knowledge; skipping web search."
		if r.needsSearch {
			msg = "The query needs current information; a web search is required."
		}
		return stateToolCall, r.emit(models.ReasoningEvent(msg))

	case stateToolCall:
		if !r.needsSearch {
			return stateSynthesize, nil
		}
		if err := r.emit(models.ReasoningEvent(fmt.Sprintf("Searching the web for %q...", r.query))); err != nil {
			return stateDone, err
		}
		resp := o.searcher.Search(r.ctx, r.query)
		r.citations = search.FormatCitations(resp)
		return stateSynthesize, r.emit(models.ToolCallEvent(r.query, resp))

	case stateSynthesize:
		answer, err := o.completer.Complete(r.ctx, buildSynthesisPrompt(r.query, r.citations, time.Now()))
		if err != nil {
			return stateDone, fmt.Errorf("synthesize answer: %w", err)
		}
		if err := r.emit(models.ReasoningEvent("Refining the answer...")); err != nil {
			return stateDone, err
		}
		if answer == "" {
			answer = emptyAnswerFallback
		}
		return stateFinalize, r.emit(models.ResponseEvent(answer))

	case stateFinalize:
		elapsed := time.Since(r.start).Milliseconds()
		if err := r.emit(models.ReasoningEvent(fmt.Sprintf("Completed in %d ms.", elapsed))); err != nil {
			return stateDone, err
		}
		return stateDone, r.emit(models.DoneEvent())
	}

	return stateDone, fmt.Errorf("unknown pipeline state %d", s)
}

// userMessage maps internal failures to the non-sensitive text sent on
// the error event. Full detail stays in the server logs.
func userMessage(err error) string {
	var unavailable *llm.UnavailableError
	switch {
	case errors.Is(err, errBlankQuery):
		return "Please provide a non-empty query."
	case errors.As(err, &unavailable):
		return "The generation service is currently unavailable. Please try again shortly."
	case errors.Is(err, llm.ErrInvalidResponseShape):
		return "The generation service returned an unexpected response. Please try again."
	default:
		return "Something went wrong while processing your query. Please try again."
	}
}

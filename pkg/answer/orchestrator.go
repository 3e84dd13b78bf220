// Package answer turns a user question into a streamed, grounded reply:
// retrieve context, compose a grounding prompt, stream the completion.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xhad/recall/internal/models"
	"github.com/xhad/recall/internal/types"
	"github.com/xhad/recall/pkg/rag"
)

// State tracks a single orchestrator invocation. Completed, Failed and
// Cancelled are terminal.
type State string

const (
	StateIdle       State = "idle"
	StateRetrieving State = "retrieving"
	StateComposing  State = "composing"
	StateStreaming  State = "streaming"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// NoContextResponse is streamed when retrieval finds nothing relevant.
// Deterministic for every empty-context case.
const NoContextResponse = "I don't have enough information in my knowledge base to answer that."

const promptTemplate = `Answer the question based only on the following context:
%s

Question: %s`

// Retriever is the retrieval surface the orchestrator needs; satisfied by
// *rag.Engine.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.StoredDocument, error)
}

type Config struct {
	Retriever Retriever
	Completer types.Completer
	// TopK is the number of passages retrieved for grounding. Zero means
	// rag.DefaultTopK.
	TopK   int
	Logger *slog.Logger
}

type Orchestrator struct {
	config Config
}

func NewOrchestrator(config Config) (*Orchestrator, error) {
	if config.Retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if config.Completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if config.TopK <= 0 {
		config.TopK = rag.DefaultTopK
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Orchestrator{config: config}, nil
}

// Answer runs one invocation end to end, pushing every fragment to sink in
// arrival order. It returns the terminal state, with the triggering error
// for StateFailed. After cancellation is observed the sink is not invoked
// again; the backend call itself is aborted best-effort through ctx.
func (o *Orchestrator) Answer(ctx context.Context, query string, sink func(fragment string) error) (State, error) {
	o.config.Logger.Debug("answering", slog.String("query", query))

	// Retrieving.
	docs, err := o.config.Retriever.Retrieve(ctx, query, o.config.TopK)
	if err != nil && !errors.Is(err, rag.ErrEmptyKnowledgeBase) {
		return o.fail(ctx, err)
	}

	// Composing.
	if len(docs) == 0 {
		// Nothing relevant stored: short-circuit to the canned reply
		// instead of letting the model guess.
		if err := sink(NoContextResponse); err != nil {
			return o.fail(ctx, err)
		}
		return StateCompleted, nil
	}
	prompt := composePrompt(docs, query)

	// Streaming. The guard stops sink delivery the moment cancellation is
	// observed, even if the backend has fragments buffered.
	guarded := func(fragment string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return sink(fragment)
	}
	if err := o.config.Completer.Complete(ctx, prompt, guarded); err != nil {
		return o.fail(ctx, err)
	}

	return StateCompleted, nil
}

func (o *Orchestrator) fail(ctx context.Context, err error) (State, error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return StateCancelled, nil
	}
	o.config.Logger.Warn("answer failed", slog.String("error", err.Error()))
	return StateFailed, err
}

// composePrompt concatenates the retrieved passages in rank order under the
// grounding instruction, followed by the literal question.
func composePrompt(docs []models.StoredDocument, query string) string {
	passages := make([]string, len(docs))
	for i, doc := range docs {
		passages[i] = doc.Content
	}
	return fmt.Sprintf(promptTemplate, strings.Join(passages, "\n\n"), query)
}

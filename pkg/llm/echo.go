package llm

import (
	"context"
	"strings"
	"time"
)

const echoPreamble = "Based on the knowledge base, here is what I found:\n\n"

// EchoCompleter answers by echoing the context passages out of the
// grounding prompt. It needs no backend and is deterministic, so the whole
// retrieval pipeline can be demonstrated offline. It expects the prompt
// layout produced by the answer orchestrator: an instruction line, the
// passages, then a trailing "Question:" block.
type EchoCompleter struct {
	FragmentSize int
	Delay        time.Duration
}

func (e *EchoCompleter) Complete(ctx context.Context, prompt string, onChunk func(chunk string) error) error {
	passages := prompt
	if i := strings.Index(passages, "\n"); i >= 0 {
		passages = passages[i+1:]
	}
	if i := strings.LastIndex(passages, "\n\nQuestion:"); i >= 0 {
		passages = passages[:i]
	}

	scripted := ScriptedCompleter{
		Response:     echoPreamble + strings.TrimSpace(passages),
		FragmentSize: e.FragmentSize,
		Delay:        e.Delay,
	}
	return scripted.Complete(ctx, prompt, onChunk)
}

package answer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/recall/internal/models"
	"github.com/xhad/recall/pkg/answer"
	"github.com/xhad/recall/pkg/llm"
	"github.com/xhad/recall/pkg/rag"
)

type fakeRetriever struct {
	docs []models.StoredDocument
	err  error
}

func (f *fakeRetriever) Retrieve(context.Context, string, int) ([]models.StoredDocument, error) {
	return f.docs, f.err
}

func newOrchestrator(t *testing.T, r *fakeRetriever, c *llm.ScriptedCompleter) *answer.Orchestrator {
	t.Helper()
	o, err := answer.NewOrchestrator(answer.Config{Retriever: r, Completer: c})
	require.NoError(t, err)
	return o
}

func TestAnswer_StreamsGroundedResponse(t *testing.T) {
	retriever := &fakeRetriever{docs: []models.StoredDocument{
		{Content: "passage one"},
		{Content: "passage two"},
	}}
	completer := &llm.ScriptedCompleter{Response: "grounded answer", FragmentSize: 5}
	o := newOrchestrator(t, retriever, completer)

	var b strings.Builder
	state, err := o.Answer(context.Background(), "question?", func(fragment string) error {
		b.WriteString(fragment)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, answer.StateCompleted, state)
	assert.Equal(t, "grounded answer", b.String())
}

type capturingCompleter struct {
	prompt string
}

func (c *capturingCompleter) Complete(_ context.Context, prompt string, onChunk func(string) error) error {
	c.prompt = prompt
	return onChunk("ok")
}

func TestAnswer_PromptGroundsPassagesInRankOrder(t *testing.T) {
	retriever := &fakeRetriever{docs: []models.StoredDocument{
		{Content: "first ranked"},
		{Content: "second ranked"},
	}}
	completer := &capturingCompleter{}
	o, err := answer.NewOrchestrator(answer.Config{Retriever: retriever, Completer: completer})
	require.NoError(t, err)

	_, err = o.Answer(context.Background(), "the question", func(string) error { return nil })
	require.NoError(t, err)

	assert.Contains(t, completer.prompt, "Answer the question based only on the following context:")
	assert.Contains(t, completer.prompt, "first ranked\n\nsecond ranked")
	assert.Contains(t, completer.prompt, "Question: the question")
	assert.Less(t,
		strings.Index(completer.prompt, "first ranked"),
		strings.Index(completer.prompt, "second ranked"))
}

func TestAnswer_EmptyContextGivesCannedReply(t *testing.T) {
	o := newOrchestrator(t, &fakeRetriever{}, &llm.ScriptedCompleter{Response: "should not be used"})

	var got []string
	state, err := o.Answer(context.Background(), "anything", func(fragment string) error {
		got = append(got, fragment)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, answer.StateCompleted, state)
	assert.Equal(t, []string{answer.NoContextResponse}, got)
}

func TestAnswer_EmptyKnowledgeBaseErrorGivesCannedReply(t *testing.T) {
	retriever := &fakeRetriever{err: rag.ErrEmptyKnowledgeBase}
	o := newOrchestrator(t, retriever, &llm.ScriptedCompleter{Response: "should not be used"})

	var got []string
	state, err := o.Answer(context.Background(), "anything", func(fragment string) error {
		got = append(got, fragment)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, answer.StateCompleted, state)
	assert.Equal(t, []string{answer.NoContextResponse}, got)
}

func TestAnswer_RetrievalFailureIsTerminalFailed(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("store offline")}
	o := newOrchestrator(t, retriever, &llm.ScriptedCompleter{})

	state, err := o.Answer(context.Background(), "q", func(string) error {
		t.Fatal("sink must not be called on retrieval failure")
		return nil
	})
	assert.Equal(t, answer.StateFailed, state)
	assert.ErrorContains(t, err, "store offline")
}

func TestAnswer_CancelledAfterFirstFragment(t *testing.T) {
	retriever := &fakeRetriever{docs: []models.StoredDocument{{Content: "ctx"}}}
	completer := &llm.ScriptedCompleter{Response: "abcdefgh", FragmentSize: 1}
	o := newOrchestrator(t, retriever, completer)

	ctx, cancel := context.WithCancel(context.Background())
	var fragments int
	state, err := o.Answer(ctx, "q", func(fragment string) error {
		fragments++
		cancel()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, answer.StateCancelled, state)
	assert.Equal(t, 1, fragments, "sink must receive exactly one fragment")
}

func TestAnswer_SinkErrorIsFailed(t *testing.T) {
	retriever := &fakeRetriever{docs: []models.StoredDocument{{Content: "ctx"}}}
	completer := &llm.ScriptedCompleter{Response: "abc", FragmentSize: 1}
	o := newOrchestrator(t, retriever, completer)

	state, err := o.Answer(context.Background(), "q", func(string) error {
		return errors.New("sink broken")
	})
	assert.Equal(t, answer.StateFailed, state)
	assert.ErrorContains(t, err, "sink broken")
}

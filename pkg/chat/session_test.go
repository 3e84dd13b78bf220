package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/recall/internal/models"
	"github.com/xhad/recall/pkg/answer"
	"github.com/xhad/recall/pkg/chat"
)

type fakeAnswerer struct {
	fragments []string
	state     answer.State
	err       error
}

func (f *fakeAnswerer) Answer(_ context.Context, _ string, sink func(string) error) (answer.State, error) {
	for _, frag := range f.fragments {
		if err := sink(frag); err != nil {
			return answer.StateFailed, err
		}
	}
	return f.state, f.err
}

func TestSession_CreateAndSwitchConversations(t *testing.T) {
	s := chat.NewSession(&fakeAnswerer{state: answer.StateCompleted})

	first := s.CreateConversation()
	second := s.CreateConversation()

	assert.Equal(t, second.ID, s.Active().ID)
	require.NoError(t, s.SetActive(first.ID))
	assert.Equal(t, first.ID, s.Active().ID)
	assert.Error(t, s.SetActive("missing"))

	// Newest first.
	convs := s.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, second.ID, convs[0].ID)
}

func TestSession_DeleteConversation(t *testing.T) {
	s := chat.NewSession(&fakeAnswerer{state: answer.StateCompleted})
	first := s.CreateConversation()
	second := s.CreateConversation()

	s.DeleteConversation(second.ID)
	assert.Equal(t, first.ID, s.Active().ID)

	s.DeleteConversation(first.ID)
	assert.Nil(t, s.Active())
	assert.Empty(t, s.Conversations())
}

func TestSession_SendStreamsIntoAssistantMessage(t *testing.T) {
	s := chat.NewSession(&fakeAnswerer{
		fragments: []string{"Hel", "lo ", "there"},
		state:     answer.StateCompleted,
	})

	msg, err := s.Send(context.Background(), "greet me", nil)
	require.NoError(t, err)

	assert.Equal(t, models.RoleAssistant, msg.Role)
	assert.Equal(t, models.StatusSent, msg.Status)
	assert.Equal(t, "Hello there", msg.Content)

	conv := s.Active()
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, models.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, models.StatusSent, conv.Messages[0].Status)
	assert.Equal(t, "greet me", conv.Messages[0].Content)
}

func TestSession_OnFragmentObservesStream(t *testing.T) {
	s := chat.NewSession(&fakeAnswerer{
		fragments: []string{"a", "b", "c"},
		state:     answer.StateCompleted,
	})

	var seen []string
	s.OnFragment = func(fragment string) { seen = append(seen, fragment) }

	_, err := s.Send(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestSession_SendCreatesConversationAndTitle(t *testing.T) {
	s := chat.NewSession(&fakeAnswerer{state: answer.StateCompleted})

	_, err := s.Send(context.Background(), "what is a vector store?", nil)
	require.NoError(t, err)

	conv := s.Active()
	require.NotNil(t, conv)
	assert.Equal(t, "what is a vector store?", conv.Title)
}

func TestSession_SendTruncatesLongTitle(t *testing.T) {
	s := chat.NewSession(&fakeAnswerer{state: answer.StateCompleted})

	long := "this is a very long opening question that should not become a full title"
	_, err := s.Send(context.Background(), long, nil)
	require.NoError(t, err)

	title := s.Active().Title
	assert.NotEqual(t, long, title)
	assert.Less(t, len([]rune(title)), len([]rune(long)))
}

func TestSession_FailureMarksOnlyAssistantMessage(t *testing.T) {
	wantErr := errors.New("backend down")
	s := chat.NewSession(&fakeAnswerer{state: answer.StateFailed, err: wantErr})

	msg, err := s.Send(context.Background(), "hello?", nil)
	require.ErrorIs(t, err, wantErr)

	assert.Equal(t, models.StatusError, msg.Status)
	assert.Equal(t, "backend down", msg.Content)

	conv := s.Active()
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, models.StatusSent, conv.Messages[0].Status, "user message stays intact")
}

func TestSession_CancelledKeepsPartialContent(t *testing.T) {
	s := chat.NewSession(&fakeAnswerer{
		fragments: []string{"partial "},
		state:     answer.StateCancelled,
	})

	msg, err := s.Send(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, msg.Status)
	assert.Equal(t, "partial ", msg.Content)
}

func TestSession_UpdatedAtBumpsOnSend(t *testing.T) {
	s := chat.NewSession(&fakeAnswerer{state: answer.StateCompleted})
	conv := s.CreateConversation()
	created := conv.UpdatedAt

	_, err := s.Send(context.Background(), "bump it", nil)
	require.NoError(t, err)
	assert.True(t, conv.UpdatedAt.After(created) || conv.UpdatedAt.Equal(created))
	require.Len(t, conv.Messages, 2)
}

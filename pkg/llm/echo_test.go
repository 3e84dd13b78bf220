package llm_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/recall/pkg/llm"
)

func TestEchoCompleter_EchoesContextPassages(t *testing.T) {
	prompt := fmt.Sprintf("Answer the question based only on the following context:\n%s\n\nQuestion: %s",
		"the cat sat on the mat\n\nthe dog ran in the park", "where is the cat?")

	c := &llm.EchoCompleter{FragmentSize: 16}
	var b strings.Builder
	err := c.Complete(context.Background(), prompt, func(chunk string) error {
		b.WriteString(chunk)
		return nil
	})
	require.NoError(t, err)

	got := b.String()
	assert.Contains(t, got, "the cat sat on the mat")
	assert.Contains(t, got, "the dog ran in the park")
	assert.NotContains(t, got, "where is the cat?")
}

package llm

import (
	"context"
	"time"
)

const defaultScriptedResponse = "This is a demo response generated without a " +
	"completion backend. Configure an API key in settings to get real answers."

// ScriptedCompleter streams a canned response fragment by fragment. It is
// deterministic for a given configuration, which makes it suitable for the
// demo mode and for exercising streaming consumers in tests.
type ScriptedCompleter struct {
	// Response is the text to stream. Empty means a fixed demo response.
	Response string
	// FragmentSize is the number of runes per fragment. Zero means 1,
	// mirroring character-by-character streaming.
	FragmentSize int
	// Delay paces fragments to imitate network latency. Zero streams
	// immediately.
	Delay time.Duration
}

func (s *ScriptedCompleter) Complete(ctx context.Context, _ string, onChunk func(chunk string) error) error {
	response := s.Response
	if response == "" {
		response = defaultScriptedResponse
	}
	size := s.FragmentSize
	if size <= 0 {
		size = 1
	}

	runes := []rune(response)
	for start := 0; start < len(runes); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Delay > 0 {
			select {
			case <-time.After(s.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if err := onChunk(string(runes[start:end])); err != nil {
			return err
		}
	}
	return nil
}

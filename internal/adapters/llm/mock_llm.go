package llm

import (
	"context"
	"strings"

	"github.com/nexuspro/nexus/internal/domain"
)

// MockStreamer yields a scripted fragment sequence, optionally terminated
// by an error. With no script it chunks a canned reply, which keeps local
// dev usable without any provider key.
type MockStreamer struct {
	Fragments []string
	Err       error
}

func NewMockStreamer(fragments ...string) *MockStreamer {
	return &MockStreamer{Fragments: fragments}
}

// StreamCompletion implements domain.CompletionStreamer.
func (m *MockStreamer) StreamCompletion(ctx context.Context, req domain.CompletionRequest) (<-chan domain.Fragment, error) {
	fragments := m.Fragments
	if len(fragments) == 0 {
		fragments = splitIntoChunks("You said: "+req.UserText+". This is a mock reply from "+req.ModelID+".", 10)
	}

	out := make(chan domain.Fragment)
	go func() {
		defer close(out)

		for _, text := range fragments {
			if !emit(ctx, out, domain.Fragment{Text: text}) {
				return
			}
		}
		if m.Err != nil {
			emit(ctx, out, domain.Fragment{Err: m.Err})
		}
	}()

	return out, nil
}

func splitIntoChunks(s string, size int) []string {
	var chunks []string
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		if b.Len() >= size {
			chunks = append(chunks, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

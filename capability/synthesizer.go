package capability

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agentiq/agentiq/core"
	"github.com/agentiq/agentiq/model"
)

const synthesizerInstructions = `You are a synthesis assistant. Combine the task results below into a single coherent answer to the user's query. Cite figures from the results rather than inventing new ones.`

// ModelSynthesizerOptions configures the model-backed synthesizer.
type ModelSynthesizerOptions struct {
	// MaxTokens caps the answer completion. Defaults to 2048.
	MaxTokens int64
}

// ModelSynthesizer produces the final answer by prompting a model with the
// query and all task results. It implements core.Synthesizer.
type ModelSynthesizer struct {
	model model.Model
	opts  ModelSynthesizerOptions
}

var _ core.Synthesizer = (*ModelSynthesizer)(nil)

// NewModelSynthesizer creates a synthesizer backed by m.
func NewModelSynthesizer(m model.Model, optFns ...func(o *ModelSynthesizerOptions)) *ModelSynthesizer {
	opts := ModelSynthesizerOptions{MaxTokens: 2048}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelSynthesizer{model: m, opts: opts}
}

// Synthesize implements core.Synthesizer. Results are rendered in task index
// order so the prompt is deterministic.
func (s *ModelSynthesizer) Synthesize(ctx context.Context, query string, results map[int]any) (string, error) {
	resp, err := s.model.Generate(ctx, model.Request{
		Instructions: synthesizerInstructions,
		Prompt:       renderResults(query, results),
		MaxTokens:    s.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("synthesizer model: %w", err)
	}
	return resp.Text, nil
}

func renderResults(query string, results map[int]any) string {
	indices := make([]int, 0, len(results))
	for i := range results {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nTask results:\n", query)
	for _, i := range indices {
		fmt.Fprintf(&b, "[%d] %v\n", i, results[i])
	}
	return b.String()
}

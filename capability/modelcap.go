package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentiq/agentiq/core"
	"github.com/agentiq/agentiq/model"
)

// ModelCapabilityOptions configures a generic model-backed capability.
type ModelCapabilityOptions struct {
	// Instructions is the system text steering this capability's role.
	Instructions string

	// MaxTokens caps task completions. Defaults to 2048.
	MaxTokens int64
}

// ModelCapability performs tasks by prompting a model with the task text and
// the serialized dependency context. It backs agents like data_analysis that
// need no external tooling.
type ModelCapability struct {
	model model.Model
	opts  ModelCapabilityOptions
}

var _ core.Capability = (*ModelCapability)(nil)

// NewModelCapability creates a capability backed by m.
func NewModelCapability(m model.Model, optFns ...func(o *ModelCapabilityOptions)) *ModelCapability {
	opts := ModelCapabilityOptions{MaxTokens: 2048}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelCapability{model: m, opts: opts}
}

// Execute implements core.Capability.
func (c *ModelCapability) Execute(ctx context.Context, task string, depContext map[int]any) (any, error) {
	prompt := task
	if len(depContext) > 0 {
		data, err := json.Marshal(depContext)
		if err == nil {
			prompt = fmt.Sprintf("%s\n\nContext from earlier tasks:\n%s", task, data)
		}
	}
	resp, err := c.model.Generate(ctx, model.Request{
		Instructions: c.opts.Instructions,
		Prompt:       prompt,
		MaxTokens:    c.opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return resp.Text, nil
}

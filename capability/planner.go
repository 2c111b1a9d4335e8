package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/agentiq/agentiq/core"
	"github.com/agentiq/agentiq/model"
)

const plannerInstructions = `You are a planning assistant. Decompose the user's query into a JSON array of tasks.

Each task is an object with:
  "task": a self-contained description of the work
  "agent": the agent to perform it, one of: %s
  "depends_on": array of zero-based indices of tasks whose results this task needs (omit if none)

Respond with ONLY the JSON array, no prose.`

// ModelPlannerOptions configures the model-backed planner.
type ModelPlannerOptions struct {
	// MaxTokens caps the plan completion. Defaults to 1024.
	MaxTokens int64
}

// ModelPlanner produces task plans by prompting a model and parsing its JSON
// output. It implements core.Planner.
type ModelPlanner struct {
	model  model.Model
	agents []string
	opts   ModelPlannerOptions
}

var _ core.Planner = (*ModelPlanner)(nil)

// NewModelPlanner creates a planner restricted to the given agent names.
func NewModelPlanner(m model.Model, agents []string, optFns ...func(o *ModelPlannerOptions)) *ModelPlanner {
	opts := ModelPlannerOptions{MaxTokens: 1024}
	for _, fn := range optFns {
		fn(&opts)
	}
	names := append([]string(nil), agents...)
	sort.Strings(names)
	return &ModelPlanner{model: m, agents: names, opts: opts}
}

// Plan implements core.Planner.
func (p *ModelPlanner) Plan(ctx context.Context, query string) ([]core.Task, error) {
	resp, err := p.model.Generate(ctx, model.Request{
		Instructions: fmt.Sprintf(plannerInstructions, strings.Join(p.agents, ", ")),
		Prompt:       query,
		MaxTokens:    p.opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("planner model: %w", err)
	}
	tasks, err := ParsePlan(resp.Text)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ParsePlan extracts a task array from model output. Models frequently wrap
// JSON in markdown code fences or surround it with prose, so parsing locates
// the outermost array rather than requiring clean JSON.
func ParsePlan(text string) ([]core.Task, error) {
	cleaned := stripCodeFences(text)
	begin := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if begin == -1 || end <= begin {
		return nil, fmt.Errorf("no JSON array in planner output")
	}
	var tasks []core.Task
	if err := json.Unmarshal([]byte(cleaned[begin:end+1]), &tasks); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	for i, task := range tasks {
		if task.Description == "" {
			return nil, fmt.Errorf("task %d has no description", i)
		}
		if task.AgentName == "" {
			return nil, fmt.Errorf("task %d has no agent", i)
		}
	}
	return tasks, nil
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx != -1 {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

package core

import "github.com/google/uuid"

// Task is one unit of work assigned to a named capability. Index is the
// task's position in the plan, assigned by the orchestrator on ingestion.
// DependsOn lists indices of earlier tasks whose results this task consumes.
type Task struct {
	Index       int    `json:"index"`
	Description string `json:"task"`
	AgentName   string `json:"agent"`
	DependsOn   []int  `json:"depends_on,omitempty"`
}

// Plan is the ordered task sequence produced for one query. It is created
// once by the planner and treated as immutable afterwards.
type Plan []Task

// NewPlan ingests planner output assigning each task its list position as
// Index. Any index already present on the tasks is overwritten; the plan's
// list order is the single source of truth.
func NewPlan(tasks []Task) Plan {
	plan := make(Plan, len(tasks))
	copy(plan, tasks)
	for i := range plan {
		plan[i].Index = i
	}
	return plan
}

// AgentNames returns the distinct capability names referenced by the plan in
// first-appearance order.
func (p Plan) AgentNames() []string {
	seen := make(map[string]bool, len(p))
	var names []string
	for _, t := range p {
		if !seen[t.AgentName] {
			seen[t.AgentName] = true
			names = append(names, t.AgentName)
		}
	}
	return names
}

// NewID returns a new unique identifier (UUID v4 string) used for query IDs.
func NewID() string { return uuid.NewString() }

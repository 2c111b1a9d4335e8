package orchestrator

import (
	"fmt"

	"github.com/agentiq/agentiq/core"
)

// ValidatePlan checks a plan's dependency graph under strict validation.
// It rejects out-of-range and self-referencing dependency indices and any
// dependency cycle. When sequential is true it additionally rejects forward
// references, since list-order execution can never satisfy them.
//
// Lenient mode skips this entirely: unsatisfiable dependencies are silently
// omitted from a task's dependency context at execution time.
func ValidatePlan(plan core.Plan, sequential bool) error {
	for _, task := range plan {
		for _, dep := range task.DependsOn {
			switch {
			case dep < 0 || dep >= len(plan):
				return &core.InvalidPlanError{
					TaskIndex: task.Index,
					Detail:    fmt.Sprintf("dependency %d is out of range [0, %d)", dep, len(plan)),
				}
			case dep == task.Index:
				return &core.InvalidPlanError{
					TaskIndex: task.Index,
					Detail:    "task depends on itself",
				}
			case sequential && dep > task.Index:
				return &core.InvalidPlanError{
					TaskIndex: task.Index,
					Detail:    fmt.Sprintf("forward reference to task %d cannot be satisfied in sequential order", dep),
				}
			}
		}
	}
	return detectCycle(plan)
}

// detectCycle runs a three-color depth-first search over the dependency
// graph. Dependency indices are assumed in range.
func detectCycle(plan core.Plan) error {
	const (
		white = iota // unvisited
		gray         // on the current DFS path
		black        // fully explored
	)
	color := make([]int, len(plan))

	var visit func(i int) error
	visit = func(i int) error {
		color[i] = gray
		for _, dep := range plan[i].DependsOn {
			switch color[dep] {
			case gray:
				return &core.InvalidPlanError{
					TaskIndex: i,
					Detail:    fmt.Sprintf("dependency cycle through task %d", dep),
				}
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		color[i] = black
		return nil
	}

	for i := range plan {
		if color[i] == white {
			if err := visit(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// readyTasks returns the tasks whose dependencies are all completed, among
// those not yet started. Out-of-range dependency indices never become
// completable and are ignored here; lenient mode tolerates them and strict
// mode has already rejected the plan.
func readyTasks(plan core.Plan, started map[int]bool, execCtx *ExecutionContext) []core.Task {
	var ready []core.Task
	for _, task := range plan {
		if started[task.Index] {
			continue
		}
		ok := true
		for _, dep := range task.DependsOn {
			if dep < 0 || dep >= len(plan) || dep == task.Index {
				continue
			}
			if !execCtx.Completed(dep) {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, task)
		}
	}
	return ready
}

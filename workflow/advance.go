package workflow

import (
	"fmt"

	lanes "github.com/lanesdev/lanes"
)

// Advance is the core transition. It stores output under the current
// step's path key, computes the next cursor per the step kind's rules,
// resets ContextActionExecuted, and returns the resulting status.
//
// Step kinds are modeled as a tagged sum over StepType rather than
// runtime subtype checks: action, loop, and ralph each have their own
// branch below, matched exhaustively.
func (m *Machine) Advance(output string) (StatusResponse, error) {
	if err := m.checkStarted(); err != nil {
		return StatusResponse{}, err
	}
	if err := m.checkTerminal(); err != nil {
		return StatusResponse{}, err
	}

	cur, ok := m.template.StepByID(m.state.Step)
	if !ok {
		return StatusResponse{}, lanes.NewSubjectError(lanes.KindReference, "current step not found in template", m.state.Step)
	}

	m.state.Outputs[m.outputKey(cur)] = output

	switch cur.Type {
	case StepAction:
		m.advanceToNextTopLevelStep(cur.ID)
	case StepRalph:
		if m.state.RalphIteration < m.state.RalphTotal {
			m.state.RalphIteration++
		} else {
			m.advanceToNextTopLevelStep(cur.ID)
		}
	case StepLoop:
		m.advanceLoop(cur)
	}

	m.state.ContextActionExecuted = false
	return m.GetStatus()
}

// outputKey computes the dotted step path output for the current step:
// "<step>" for a plain step, "<step>.<iteration>" for ralph, and
// "<step>.<taskId>.<subStepId>" for a loop sub-step.
func (m *Machine) outputKey(cur Step) string {
	switch cur.Type {
	case StepRalph:
		return fmt.Sprintf("%s.%d", cur.ID, m.state.RalphIteration)
	case StepLoop:
		taskID := ""
		if m.state.Task != nil {
			taskID = m.state.Task.ID
		}
		return fmt.Sprintf("%s.%s.%s", cur.ID, taskID, m.state.SubStep)
	default:
		return cur.ID
	}
}

// advanceLoop advances the cursor within a loop step: to the next
// sub-step of the current task, or to the next task's first sub-step
// once the last sub-step of a task completes, or out of the loop
// entirely once the last task's last sub-step completes.
func (m *Machine) advanceLoop(cur Step) {
	subSteps := m.template.Loops[cur.ID]

	curSubIdx := -1
	for i, sub := range subSteps {
		if sub.ID == m.state.SubStep {
			curSubIdx = i
			break
		}
	}
	if curSubIdx >= 0 && curSubIdx+1 < len(subSteps) {
		m.state.SubStep = subSteps[curSubIdx+1].ID
		return
	}

	if m.state.Task == nil {
		m.advanceToNextTopLevelStep(cur.ID)
		return
	}

	tasks := m.state.Tasks[cur.ID]
	taskIdx := m.state.Task.Index
	if taskIdx >= 0 && taskIdx < len(tasks) {
		tasks[taskIdx].Status = TaskDone
	}

	nextIdx := taskIdx + 1
	if nextIdx < len(tasks) {
		tasks[nextIdx].Status = TaskInProgress
		m.state.Task = &TaskRef{ID: tasks[nextIdx].ID, Index: nextIdx}
		if len(subSteps) > 0 {
			m.state.SubStep = subSteps[0].ID
		}
		m.state.Tasks[cur.ID] = tasks
		return
	}

	m.state.Tasks[cur.ID] = tasks
	m.state.Task = nil
	m.state.SubStep = ""
	m.advanceToNextTopLevelStep(cur.ID)
}

// advanceToNextTopLevelStep moves the cursor to the step after
// currentStepID, initializing ralph/loop positioning, or completes the
// workflow if currentStepID was the last step.
func (m *Machine) advanceToNextTopLevelStep(currentStepID string) {
	idx := m.template.StepIndex(currentStepID)
	if idx < 0 || idx+1 >= len(m.template.Steps) {
		m.state.Status = StatusComplete
		return
	}

	next := m.template.Steps[idx+1]
	m.state.Step = next.ID
	m.state.StepType = next.Type
	m.state.SubStep = ""
	m.state.Task = nil
	m.state.RalphIteration = 0
	m.state.RalphTotal = 0

	if next.Type == StepRalph {
		m.state.RalphIteration = 1
		m.state.RalphTotal = next.N
	}
	if next.Type == StepLoop {
		m.positionAtLoopStart(next.ID)
	}
}

// TaskCompleted reports whether the task positioned at before was
// completed by the advance that produced after. This mirrors spec.md
// §4.2's detection rule, used by the dispatcher to emit optional
// side-effects in host-adjacent code: the task is considered completed
// if it was set, and afterward either a different task is positioned,
// no task is positioned, or the workflow completed.
func TaskCompleted(before *TaskRef, after *State) bool {
	if before == nil {
		return false
	}
	if after.Task == nil {
		return true
	}
	if after.Task.Index != before.Index {
		return true
	}
	return after.Status == StatusComplete
}

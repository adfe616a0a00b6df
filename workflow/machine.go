package workflow

import (
	"strings"

	lanes "github.com/lanesdev/lanes"
)

// Machine is the state machine: a template and the mutable state
// position it is driving. All transitions are synchronous and
// deterministic; the Machine performs no I/O.
type Machine struct {
	template *Template
	state    *State
}

// New creates a fresh machine bound to template, with an empty,
// not-yet-started state. Call Start to position the cursor at the first
// step.
func New(template *Template) *Machine {
	return &Machine{template: template, state: newState()}
}

// FromState rebinds an existing state to a machine. When state carries a
// WorkflowDefinition snapshot, it takes precedence over the supplied
// template — this guarantees behavioural stability across template
// edits made after a run started.
func FromState(template *Template, state *State) *Machine {
	effective := template
	if state.WorkflowDefinition != nil {
		effective = state.WorkflowDefinition
	}
	if state.Tasks == nil {
		state.Tasks = make(map[string][]Task)
	}
	if state.Outputs == nil {
		state.Outputs = make(map[string]string)
	}
	if state.Artefacts == nil {
		state.Artefacts = make([]string, 0)
	}
	return &Machine{template: effective, state: state}
}

// State returns the machine's current durable position, for the
// dispatcher to persist after a mutating call.
func (m *Machine) State() *State {
	return m.state
}

// Start transitions status to running, positions the cursor at the
// template's first step, and snapshots the template into state on first
// save.
func (m *Machine) Start() (StatusResponse, error) {
	if len(m.template.Steps) == 0 {
		return StatusResponse{}, lanes.NewError(lanes.KindSchema, "template has no steps")
	}

	first := m.template.Steps[0]
	m.state.Status = StatusRunning
	m.state.Step = first.ID
	m.state.StepType = first.Type
	m.state.ContextActionExecuted = false
	m.state.WorkflowDefinition = m.template

	if first.Type == StepRalph {
		m.state.RalphIteration = 1
		m.state.RalphTotal = first.N
	}
	if first.Type == StepLoop {
		m.positionAtLoopStart(first.ID)
	}

	return m.GetStatus()
}

// positionAtLoopStart positions the cursor at the loop's first task
// (marking it in_progress) and first sub-step when tasks already exist
// for it (used by set_tasks and whenever the cursor arrives at a loop
// step); it is a no-op until tasks are assigned.
func (m *Machine) positionAtLoopStart(loopID string) {
	subSteps := m.template.Loops[loopID]
	tasks := m.state.Tasks[loopID]
	if len(subSteps) == 0 || len(tasks) == 0 {
		return
	}
	tasks[0].Status = TaskInProgress
	m.state.Task = &TaskRef{ID: tasks[0].ID, Index: 0}
	m.state.SubStep = subSteps[0].ID
}

// checkTerminal returns a kind=terminal error if the machine is complete
// or failed.
func (m *Machine) checkTerminal() error {
	if m.state.Status == StatusComplete || m.state.Status == StatusFailed {
		return lanes.NewSubjectError(lanes.KindTerminal, "workflow is already "+string(m.state.Status), m.state.Step)
	}
	return nil
}

// checkStarted returns a kind=not_started error if the machine has never
// been started.
func (m *Machine) checkStarted() error {
	if m.state.Step == "" {
		return lanes.NewError(lanes.KindNotStarted, "workflow has not been started")
	}
	return nil
}

// SetSummary trims input and stores non-empty text, truncating to 100
// characters with a trailing ellipsis if longer.
func (m *Machine) SetSummary(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	m.state.Summary = truncateSummary(trimmed)
}

const summaryMaxLen = 100

func truncateSummary(s string) string {
	if len(s) <= summaryMaxLen {
		return s
	}
	const ellipsis = "..."
	return s[:summaryMaxLen-len(ellipsis)] + ellipsis
}

// SetTasks replaces the task list for loopID with a defensive copy. When
// the cursor is on that loop step, it marks the first task in_progress
// (others pending) and positions state.Task/SubStep accordingly, and an
// empty task list completes the loop immediately, advancing the cursor to
// the next top-level step. When the cursor is elsewhere, the tasks are
// only stored; positioning happens once the cursor reaches the loop.
func (m *Machine) SetTasks(loopID string, tasks []Task) error {
	if err := m.checkTerminal(); err != nil {
		return err
	}

	step, ok := m.template.StepByID(loopID)
	if !ok || step.Type != StepLoop {
		return lanes.NewSubjectError(lanes.KindReference, "unknown loop step", loopID)
	}

	copied := make([]Task, len(tasks))
	copy(copied, tasks)
	atLoop := m.state.Step == loopID

	if len(copied) == 0 {
		m.state.Tasks[loopID] = copied
		if atLoop {
			m.state.Task = nil
			m.state.SubStep = ""
			m.advanceToNextTopLevelStep(loopID)
		}
		m.state.ContextActionExecuted = false
		return nil
	}

	for i := range copied {
		if copied[i].Status == "" {
			copied[i].Status = TaskPending
		}
	}
	m.state.Tasks[loopID] = copied
	if atLoop {
		m.positionAtLoopStart(loopID)
	}

	m.state.ContextActionExecuted = false
	return nil
}

// RegisterArtefacts resolves each path to absolute form using the
// caller-supplied resolve function, rejecting empty/whitespace paths and paths absent from
// the filesystem, then adds the rest to the artefact set. The partition
// (registered, duplicates, invalid) always accounts for every input
// path exactly once.
func (m *Machine) RegisterArtefacts(paths []string, resolve func(string) (string, bool)) (registered, duplicates, invalid []string) {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			invalid = append(invalid, p)
			continue
		}

		abs, exists := resolve(p)
		if !exists {
			invalid = append(invalid, p)
			continue
		}

		if m.state.hasArtefact(abs) {
			duplicates = append(duplicates, abs)
			continue
		}

		m.state.Artefacts = append(m.state.Artefacts, abs)
		registered = append(registered, abs)
	}
	return registered, duplicates, invalid
}

// MarkContextActionExecuted sets the context-action-executed flag. It is
// idempotent.
func (m *Machine) MarkContextActionExecuted() {
	m.state.ContextActionExecuted = true
}

// GetContext returns the outputs map keyed by dotted step path.
func (m *Machine) GetContext() map[string]string {
	return m.state.Outputs
}

// GetContextActionIfNeeded returns the context directive declared on the
// current sub-step (taking precedence) or current step, but only when
// ContextActionExecuted is false. It returns ("", false) otherwise.
func (m *Machine) GetContextActionIfNeeded() (ContextAction, bool) {
	if m.state.ContextActionExecuted {
		return "", false
	}

	step, ok := m.template.StepByID(m.state.Step)
	if !ok {
		return "", false
	}

	if step.Type == StepLoop && m.state.SubStep != "" {
		for _, sub := range m.template.Loops[step.ID] {
			if sub.ID == m.state.SubStep {
				if sub.Context != "" {
					return ContextAction(sub.Context), true
				}
				break
			}
		}
	}

	if step.Context != "" {
		return ContextAction(step.Context), true
	}

	return "", false
}

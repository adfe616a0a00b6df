package workflow

import "fmt"

// StatusResponse reports the machine's current position, composed for
// direct return to the executor.
type StatusResponse struct {
	Status         Status   `json:"status"`
	Step           string   `json:"step"`
	StepType       StepType `json:"stepType"`
	SubStep        string   `json:"subStep,omitempty"`
	Task           *TaskRef `json:"task,omitempty"`
	RalphIteration int      `json:"ralphIteration,omitempty"`
	RalphTotal     int      `json:"ralphTotal,omitempty"`
	Progress       string   `json:"progress,omitempty"`
	Instructions   string   `json:"instructions"`
	Artefacts      []string `json:"artefacts"`
	Summary        string   `json:"summary,omitempty"`
}

const advanceReminder = " Call workflow_advance with your output when this step is complete."

// GetStatus reports the current position. It is pure: no mutation.
func (m *Machine) GetStatus() (StatusResponse, error) {
	if err := m.checkStarted(); err != nil {
		return StatusResponse{}, err
	}

	resp := StatusResponse{
		Status:         m.state.Status,
		Step:           m.state.Step,
		StepType:       m.state.StepType,
		SubStep:        m.state.SubStep,
		Task:           m.state.Task,
		RalphIteration: m.state.RalphIteration,
		RalphTotal:     m.state.RalphTotal,
		Artefacts:      m.state.Artefacts,
		Summary:        m.state.Summary,
	}

	if m.state.Task != nil {
		resp.Progress = fmt.Sprintf("Task %d", m.state.Task.Index+1)
	}

	resp.Instructions = m.composeInstructions()

	return resp, nil
}

// composeInstructions returns the template-declared instructions string
// for the current position, with a single trailing reminder sentence
// appended when the workflow is still running.
func (m *Machine) composeInstructions() string {
	step, ok := m.template.StepByID(m.state.Step)
	if !ok {
		return ""
	}

	instructions := step.Instructions
	if step.Type == StepLoop && m.state.SubStep != "" {
		for _, sub := range m.template.Loops[step.ID] {
			if sub.ID == m.state.SubStep {
				instructions = sub.Instructions
				break
			}
		}
	}

	if m.state.Status == StatusRunning {
		instructions += advanceReminder
	}
	return instructions
}

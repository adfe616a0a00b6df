package workflow

// TaskStatus enumerates the lifecycle of a task inside a loop step.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Task is a unit the executor iterates inside a loop step. Tasks are
// supplied by the executor via workflow_set_tasks; the core never
// synthesizes them.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
}

// TaskRef identifies the task currently positioned inside a loop step.
type TaskRef struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
}

// Status enumerates the overall lifecycle of a workflow run.
type Status string

const (
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// State is the durable position of a workflow run: everything needed to
// resume exactly where a previous executor process left off.
type State struct {
	Status   Status   `json:"status"`
	Step     string   `json:"step"`
	StepType StepType `json:"stepType"`
	SubStep  string   `json:"subStep,omitempty"`
	Task     *TaskRef `json:"task,omitempty"`

	RalphIteration int `json:"ralphIteration,omitempty"`
	RalphTotal     int `json:"ralphTotal,omitempty"`

	Tasks map[string][]Task `json:"tasks"`

	Outputs   map[string]string `json:"outputs"`
	Artefacts []string          `json:"artefacts"`

	Summary               string `json:"summary,omitempty"`
	ContextActionExecuted bool   `json:"contextActionExecuted"`

	// WorkflowDefinition is a snapshot of the template written on first
	// save, so later restarts do not drift if the template file changes.
	// Absent only in legacy states, which fall back to the on-disk
	// template.
	WorkflowDefinition *Template `json:"workflow_definition,omitempty"`
}

// newState builds an empty, not-yet-started state skeleton.
func newState() *State {
	return &State{
		Tasks:     make(map[string][]Task),
		Outputs:   make(map[string]string),
		Artefacts: make([]string, 0),
	}
}

// hasArtefact reports whether path is already tracked.
func (s *State) hasArtefact(path string) bool {
	for _, a := range s.Artefacts {
		if a == path {
			return true
		}
	}
	return false
}

package main

import "encoding/json"

// NoArgs is used by tools that take no parameters.
type NoArgs struct{}

// WorkflowStartArgs are the arguments for workflow_start.
type WorkflowStartArgs struct {
	Summary string `json:"summary,omitempty" desc:"Optional one-line summary of the session so far, truncated to 100 characters"`
}

// WorkflowAdvanceArgs are the arguments for workflow_advance.
type WorkflowAdvanceArgs struct {
	Output string `json:"output" desc:"The output produced by the step just completed" required:"true"`
}

// TaskInput is one task entry supplied to workflow_set_tasks.
type TaskInput struct {
	ID          string `json:"id" desc:"Stable identifier for the task" required:"true"`
	Title       string `json:"title" desc:"Short human-readable title" required:"true"`
	Description string `json:"description,omitempty" desc:"Optional longer description"`
}

// WorkflowSetTasksArgs are the arguments for workflow_set_tasks.
type WorkflowSetTasksArgs struct {
	LoopID string      `json:"loopId" desc:"The id of the loop step whose task list is being set" required:"true"`
	Tasks  []TaskInput `json:"tasks" desc:"The full replacement task list, in execution order" required:"true"`
}

// RegisterArtefactsArgs are the arguments for register_artefacts.
type RegisterArtefactsArgs struct {
	Paths []string `json:"paths" desc:"File paths to register as artefacts, absolute or relative to the worktree" required:"true"`
}

// SessionCreateArgs are the arguments for session_create.
type SessionCreateArgs struct {
	Name         string `json:"name" desc:"Name for the new session" required:"true"`
	SourceBranch string `json:"sourceBranch" desc:"Git branch the new session's worktree should be based on" required:"true"`
	Prompt       string `json:"prompt,omitempty" desc:"Optional initial prompt for the new session"`
	Workflow     string `json:"workflow,omitempty" desc:"Optional workflow template name for the new session to run"`
}

// jsonResult marshals a dispatcher response to a JSON string for return
// over the tool transport, passing through dispatcher errors unchanged.
func jsonResult(v any, err error) (string, error) {
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

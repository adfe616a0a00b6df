package dispatcher

import (
	"os"
	"path/filepath"

	lanes "github.com/lanesdev/lanes"
	"github.com/lanesdev/lanes/workflow"
)

// WorkflowStart reconstructs the machine from disk if state exists, or
// initializes a fresh one from the template otherwise, then returns
// either a pending context-action sentinel or the current status.
func (d *Dispatcher) WorkflowStart(summary string) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureMachine(); err != nil {
		return nil, err
	}

	if d.machine == nil {
		d.machine = workflow.New(d.template)
		if _, err := d.machine.Start(); err != nil {
			return nil, err
		}
	}

	if summary != "" {
		d.machine.SetSummary(summary)
	}

	if sentinel, gated, err := d.checkContextGate(); err != nil {
		return nil, err
	} else if gated {
		return sentinel, nil
	}

	resp, err := d.machine.GetStatus()
	if err != nil {
		return nil, err
	}
	if err := d.persist(); err != nil {
		return nil, err
	}
	return resp, nil
}

// WorkflowStatus reports the current position without starting. Returns
// kind=not_started if the workflow has never been started.
func (d *Dispatcher) WorkflowStatus() (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureMachine(); err != nil {
		return nil, err
	}
	if d.machine == nil {
		return nil, lanes.NewError(lanes.KindNotStarted, "workflow has not been started")
	}

	if sentinel, gated, err := d.checkContextGate(); err != nil {
		return nil, err
	} else if gated {
		return sentinel, nil
	}

	return d.machine.GetStatus()
}

// WorkflowAdvance advances the machine, persists, and re-checks the
// context gate since the new position may declare its own directive.
func (d *Dispatcher) WorkflowAdvance(output string) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureMachine(); err != nil {
		return nil, err
	}
	if d.machine == nil {
		return nil, lanes.NewError(lanes.KindNotStarted, "workflow has not been started")
	}

	taskBefore := d.machine.State().Task

	resp, err := d.machine.Advance(output)
	if err != nil {
		return nil, err
	}
	if err := d.persist(); err != nil {
		return nil, err
	}

	if workflow.TaskCompleted(taskBefore, d.machine.State()) {
		d.logger.Info("task completed", "step", d.machine.State().Step, "previousTask", taskBefore)
	}

	if sentinel, gated, err := d.checkContextGate(); err != nil {
		return nil, err
	} else if gated {
		return sentinel, nil
	}

	return resp, nil
}

// setTasksResponse is returned by WorkflowSetTasks.
type setTasksResponse struct {
	Success   bool `json:"success"`
	TasksSet  int  `json:"tasksSet"`
}

// WorkflowSetTasks replaces the task list for a loop step.
func (d *Dispatcher) WorkflowSetTasks(loopID string, tasks []workflow.Task) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureMachine(); err != nil {
		return nil, err
	}
	if d.machine == nil {
		return nil, lanes.NewError(lanes.KindNotStarted, "workflow has not been started")
	}

	if err := d.machine.SetTasks(loopID, tasks); err != nil {
		return nil, err
	}
	if err := d.persist(); err != nil {
		return nil, err
	}

	return setTasksResponse{Success: true, TasksSet: len(tasks)}, nil
}

// WorkflowContext returns the outputs map keyed by dotted step path.
func (d *Dispatcher) WorkflowContext() (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureMachine(); err != nil {
		return nil, err
	}
	if d.machine == nil {
		return nil, lanes.NewError(lanes.KindNotStarted, "workflow has not been started")
	}

	return d.machine.GetContext(), nil
}

// artefactPartition is returned by RegisterArtefacts.
type artefactPartition struct {
	Registered []string `json:"registered"`
	Duplicates []string `json:"duplicates"`
	Invalid    []string `json:"invalid"`
}

// RegisterArtefacts resolves each path against the worktree root and
// registers the ones that exist on disk.
func (d *Dispatcher) RegisterArtefacts(paths []string) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureMachine(); err != nil {
		return nil, err
	}
	if d.machine == nil {
		return nil, lanes.NewError(lanes.KindNotStarted, "workflow has not been started")
	}

	registered, duplicates, invalid := d.machine.RegisterArtefacts(paths, d.resolveArtefactPath)
	if err := d.persist(); err != nil {
		return nil, err
	}

	return artefactPartition{
		Registered: nonNil(registered),
		Duplicates: nonNil(duplicates),
		Invalid:    nonNil(invalid),
	}, nil
}

// resolveArtefactPath resolves p to an absolute path under the worktree
// root and reports whether it exists on disk.
func (d *Dispatcher) resolveArtefactPath(p string) (string, bool) {
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(d.worktree, p)
	}
	if _, err := os.Stat(abs); err != nil {
		return abs, false
	}
	return abs, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

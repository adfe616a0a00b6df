// Package dispatcher routes the eight stdio tool operations to state
// machine mutations, persisting after every mutating call.
package dispatcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	lanes "github.com/lanesdev/lanes"
	"github.com/lanesdev/lanes/store"
	"github.com/lanesdev/lanes/workflow"
)

// stateFileName is the fixed basename of the state document, relative
// to the worktree root.
const stateFileName = "workflow-state.json"

// Dispatcher owns the single mutable dispatcher slot: a lazily
// reconstructed *workflow.Machine guarded by a mutex, per spec.md §9
// "Global mutable state". One tool call is fully processed, including
// its persist step, before the next is accepted.
type Dispatcher struct {
	mu sync.Mutex

	machine  *workflow.Machine
	template *workflow.Template
	store    *store.Store

	worktree     string
	workflowPath string
	repoRoot     string

	logger *slog.Logger
}

// New reads and validates the workflow template at workflowPath and
// returns a Dispatcher ready to serve tool calls against worktree's
// state file.
func New(worktree, workflowPath, repoRoot string, logger *slog.Logger) (*Dispatcher, error) {
	data, err := os.ReadFile(workflowPath)
	if err != nil {
		return nil, lanes.WrapSubjectError(lanes.KindIO, "failed to read workflow template", workflowPath, err)
	}

	tmpl, err := workflow.Load(data, workflowPath)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		template:     tmpl,
		store:        store.New(filepath.Join(worktree, stateFileName)),
		worktree:     worktree,
		workflowPath: workflowPath,
		repoRoot:     repoRoot,
		logger:       logger,
	}, nil
}

// ensureMachine loads the persisted machine into the dispatcher slot if
// it is not already resident. It is a no-op if no state file exists yet
// (d.machine stays nil, meaning "not started").
func (d *Dispatcher) ensureMachine() error {
	if d.machine != nil {
		return nil
	}

	state, err := d.store.Load()
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}

	d.machine = workflow.FromState(d.template, state)
	return nil
}

// persist writes the machine's current state to disk atomically.
func (d *Dispatcher) persist() error {
	return d.store.Save(d.machine.State())
}

// contextActionResponse is the sentinel shape returned in place of a
// StatusResponse when a pending context directive gates the call.
type contextActionResponse struct {
	SessionCleared bool   `json:"sessionCleared,omitempty"`
	ContextAction  string `json:"contextAction,omitempty"`
}

func sentinelFor(action workflow.ContextAction) contextActionResponse {
	if action == workflow.ContextClear {
		return contextActionResponse{SessionCleared: true}
	}
	return contextActionResponse{ContextAction: "/compact"}
}

// checkContextGate inspects the machine's pending context directive. If
// one is pending, it is marked executed, the state is persisted, and the
// sentinel response is returned in place of a normal status. Returns
// (nil, false, nil) when no directive is pending.
func (d *Dispatcher) checkContextGate() (*contextActionResponse, bool, error) {
	action, needed := d.machine.GetContextActionIfNeeded()
	if !needed {
		return nil, false, nil
	}

	d.machine.MarkContextActionExecuted()
	if err := d.persist(); err != nil {
		return nil, false, err
	}

	resp := sentinelFor(action)
	return &resp, true, nil
}

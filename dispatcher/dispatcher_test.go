package dispatcher

import (
	"log/slog"
	"io"
	"os"
	"path/filepath"
	"testing"

	lanes "github.com/lanesdev/lanes"
	"github.com/lanesdev/lanes/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTemplate(t *testing.T, dir, doc string) string {
	t.Helper()
	path := filepath.Join(dir, "sample.workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

const linearDoc = `
name: linear
description: two step linear workflow
steps:
  - id: plan
    type: action
    instructions: write a plan
  - id: ship
    type: action
    instructions: ship it
`

const gatedDoc = `
name: gated
description: context clear on first step
steps:
  - id: a
    type: action
    instructions: do a
    context: clear
`

func newTestDispatcher(t *testing.T, doc string) *Dispatcher {
	t.Helper()
	dir := t.TempDir()
	workflowPath := writeTemplate(t, dir, doc)
	worktree := filepath.Join(dir, "worktree")
	require.NoError(t, os.MkdirAll(worktree, 0o755))

	d, err := New(worktree, workflowPath, dir, testLogger())
	require.NoError(t, err)
	return d
}

func TestWorkflowStart_FreshMachine(t *testing.T) {
	d := newTestDispatcher(t, linearDoc)

	resp, err := d.WorkflowStart("")
	require.NoError(t, err)

	status, ok := resp.(workflow.StatusResponse)
	require.True(t, ok)
	assert.Equal(t, "plan", status.Step)
}

func TestWorkflowStart_PersistsState(t *testing.T) {
	d := newTestDispatcher(t, linearDoc)

	_, err := d.WorkflowStart("")
	require.NoError(t, err)

	state, err := d.store.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "plan", state.Step)
}

func TestWorkflowStatus_NotStarted(t *testing.T) {
	d := newTestDispatcher(t, linearDoc)

	_, err := d.WorkflowStatus()
	require.Error(t, err)
	assert.True(t, lanes.IsKind(err, lanes.KindNotStarted))
}

func TestWorkflowAdvance_FullLinearRun(t *testing.T) {
	d := newTestDispatcher(t, linearDoc)

	_, err := d.WorkflowStart("")
	require.NoError(t, err)

	resp, err := d.WorkflowAdvance("planned")
	require.NoError(t, err)
	status := resp.(workflow.StatusResponse)
	assert.Equal(t, "ship", status.Step)

	resp, err = d.WorkflowAdvance("shipped")
	require.NoError(t, err)
	status = resp.(workflow.StatusResponse)
	assert.Equal(t, workflow.StatusComplete, status.Status)

	ctxResp, err := d.WorkflowContext()
	require.NoError(t, err)
	ctx := ctxResp.(map[string]string)
	assert.Equal(t, "planned", ctx["plan"])
	assert.Equal(t, "shipped", ctx["ship"])
}

func TestWorkflowStart_ContextClearGating(t *testing.T) {
	d := newTestDispatcher(t, gatedDoc)

	resp, err := d.WorkflowStart("")
	require.NoError(t, err)

	sentinel, ok := resp.(*contextActionResponse)
	require.True(t, ok)
	assert.True(t, sentinel.SessionCleared)

	resp, err = d.WorkflowStatus()
	require.NoError(t, err)
	status, ok := resp.(workflow.StatusResponse)
	require.True(t, ok)
	assert.Equal(t, "a", status.Step)
}

func TestWorkflowStart_ReconstructsFromDisk(t *testing.T) {
	d := newTestDispatcher(t, linearDoc)
	_, err := d.WorkflowStart("")
	require.NoError(t, err)
	_, err = d.WorkflowAdvance("planned")
	require.NoError(t, err)

	reopened, err := New(d.worktree, d.workflowPath, d.repoRoot, testLogger())
	require.NoError(t, err)

	resp, err := reopened.WorkflowStatus()
	require.NoError(t, err)
	status := resp.(workflow.StatusResponse)
	assert.Equal(t, "ship", status.Step)
}

func TestRegisterArtefacts_Partition(t *testing.T) {
	d := newTestDispatcher(t, linearDoc)
	_, err := d.WorkflowStart("")
	require.NoError(t, err)

	existing := filepath.Join(d.worktree, "exists.txt")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	resp, err := d.RegisterArtefacts([]string{existing, existing, filepath.Join(d.worktree, "missing.txt")})
	require.NoError(t, err)

	partition := resp.(artefactPartition)
	assert.Equal(t, []string{existing}, partition.Registered)
	assert.Equal(t, []string{existing}, partition.Duplicates)
	assert.Len(t, partition.Invalid, 1)
}

func TestSessionCreate_SanitizesAndWritesIntentFile(t *testing.T) {
	d := newTestDispatcher(t, linearDoc)

	resp, err := d.SessionCreate("feature/login", "main", "build login", "")
	require.NoError(t, err)

	created := resp.(sessionCreateResponse)
	require.True(t, created.Success)
	assert.FileExists(t, created.ConfigPath)
	assert.Contains(t, created.ConfigPath, filepath.Join(".lanes", "pending-sessions"))
}

func TestSessionCreate_RejectsEmptySanitizedName(t *testing.T) {
	d := newTestDispatcher(t, linearDoc)

	resp, err := d.SessionCreate("!!!", "main", "", "")
	require.NoError(t, err)

	created := resp.(sessionCreateResponse)
	assert.False(t, created.Success)
	assert.NotEmpty(t, created.Error)
}

func TestSessionClear_ValidatesWorktreeStructure(t *testing.T) {
	dir := t.TempDir()
	workflowPath := writeTemplate(t, dir, linearDoc)
	badWorktree := filepath.Join(dir, "not-a-worktree")
	require.NoError(t, os.MkdirAll(badWorktree, 0o755))

	d, err := New(badWorktree, workflowPath, dir, testLogger())
	require.NoError(t, err)

	resp, err := d.SessionClear()
	require.NoError(t, err)
	cleared := resp.(sessionClearResponse)
	assert.False(t, cleared.Success)
	assert.Contains(t, cleared.Error, "Invalid worktree path structure")
}

func TestSessionClear_WritesIntentFile(t *testing.T) {
	dir := t.TempDir()
	workflowPath := writeTemplate(t, dir, linearDoc)
	worktree := filepath.Join(dir, ".worktrees", "my-session")
	require.NoError(t, os.MkdirAll(worktree, 0o755))

	d, err := New(worktree, workflowPath, dir, testLogger())
	require.NoError(t, err)

	resp, err := d.SessionClear()
	require.NoError(t, err)
	cleared := resp.(sessionClearResponse)
	assert.True(t, cleared.Success)

	entries, err := os.ReadDir(filepath.Join(dir, ".lanes", "clear-requests"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "my-session")
}

package workflow

import (
	"testing"

	lanes "github.com/lanesdev/lanes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearTemplate() *Template {
	return &Template{
		Name:        "linear",
		Description: "two step linear workflow",
		Steps: []Step{
			{ID: "plan", Type: StepAction, Instructions: "write a plan"},
			{ID: "ship", Type: StepAction, Instructions: "ship it"},
		},
	}
}

func loopTemplate() *Template {
	return &Template{
		Name:        "loop",
		Description: "loop with two sub-steps",
		Loops: map[string][]SubStep{
			"impl": {
				{ID: "code", Instructions: "write code"},
				{ID: "test", Instructions: "write tests"},
			},
		},
		Steps: []Step{
			{ID: "impl", Type: StepLoop},
		},
	}
}

func ralphTemplate(n int) *Template {
	return &Template{
		Name:        "ralph",
		Description: "ralph step",
		Steps: []Step{
			{ID: "polish", Type: StepRalph, N: n, Instructions: "keep polishing"},
		},
	}
}

func TestStart_PositionsAtFirstStep(t *testing.T) {
	m := New(linearTemplate())
	resp, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, resp.Status)
	assert.Equal(t, "plan", resp.Step)
}

func TestStart_RalphInitializesIteration(t *testing.T) {
	m := New(ralphTemplate(3))
	resp, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RalphIteration)
	assert.Equal(t, 3, resp.RalphTotal)
}

// Scenario 1: two-step linear workflow.
func TestScenario_TwoStepLinear(t *testing.T) {
	m := New(linearTemplate())
	_, err := m.Start()
	require.NoError(t, err)

	resp, err := m.Advance("planned")
	require.NoError(t, err)
	assert.Equal(t, "ship", resp.Step)

	resp, err = m.Advance("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, resp.Status)

	ctx := m.GetContext()
	assert.Equal(t, map[string]string{"plan": "planned", "ship": "shipped"}, ctx)
}

// Scenario 2: loop with two tasks, two sub-steps each.
func TestScenario_LoopTwoTasks(t *testing.T) {
	m := New(loopTemplate())
	_, err := m.Start()
	require.NoError(t, err)

	err = m.SetTasks("impl", []Task{
		{ID: "A", Title: "A"},
		{ID: "B", Title: "B"},
	})
	require.NoError(t, err)

	outputs := []string{"cA", "tA", "cB", "tB"}
	var last StatusResponse
	for _, out := range outputs {
		last, err = m.Advance(out)
		require.NoError(t, err)
	}

	assert.Equal(t, StatusComplete, last.Status)

	ctx := m.GetContext()
	assert.Equal(t, "cA", ctx["impl.A.code"])
	assert.Equal(t, "tA", ctx["impl.A.test"])
	assert.Equal(t, "cB", ctx["impl.B.code"])
	assert.Equal(t, "tB", ctx["impl.B.test"])

	tasks := m.State().Tasks["impl"]
	require.Len(t, tasks, 2)
	assert.Equal(t, TaskDone, tasks[0].Status)
	assert.Equal(t, TaskDone, tasks[1].Status)
}

// Scenario 3: ralph step, n=3.
func TestScenario_RalphThreeIterations(t *testing.T) {
	m := New(ralphTemplate(3))
	resp, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RalphIteration)

	resp, err = m.Advance("r1")
	require.NoError(t, err)
	assert.Equal(t, "polish", resp.Step)
	assert.Equal(t, 2, resp.RalphIteration)

	resp, err = m.Advance("r2")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.RalphIteration)

	resp, err = m.Advance("r3")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, resp.Status)

	ctx := m.GetContext()
	assert.Equal(t, "r1", ctx["polish.1"])
	assert.Equal(t, "r2", ctx["polish.2"])
	assert.Equal(t, "r3", ctx["polish.3"])
}

// Scenario 4: context-clear gating.
func TestScenario_ContextClearGating(t *testing.T) {
	tmpl := &Template{
		Name:        "gated",
		Description: "context clear on first step",
		Steps: []Step{
			{ID: "a", Type: StepAction, Instructions: "do a", Context: string(ContextClear)},
		},
	}
	m := New(tmpl)
	_, err := m.Start()
	require.NoError(t, err)

	action, needed := m.GetContextActionIfNeeded()
	require.True(t, needed)
	assert.Equal(t, ContextClear, action)

	m.MarkContextActionExecuted()
	assert.True(t, m.State().ContextActionExecuted)

	_, needed = m.GetContextActionIfNeeded()
	assert.False(t, needed)
}

// Scenario 6: artefact partition.
func TestScenario_ArtefactPartition(t *testing.T) {
	m := New(linearTemplate())
	_, err := m.Start()
	require.NoError(t, err)

	exists := map[string]bool{"/exists/a": true}
	resolve := func(p string) (string, bool) {
		return p, exists[p]
	}

	registered, duplicates, invalid := m.RegisterArtefacts(
		[]string{"/exists/a", "/exists/a", "/missing/x"}, resolve)

	assert.Equal(t, []string{"/exists/a"}, registered)
	assert.Equal(t, []string{"/exists/a"}, duplicates)
	assert.Equal(t, []string{"/missing/x"}, invalid)
	assert.Len(t, m.State().Artefacts, 1)
}

func TestSetTasks_EmptyCompletesLoop(t *testing.T) {
	tmpl := loopTemplate()
	tmpl.Steps = append(tmpl.Steps, Step{ID: "done", Type: StepAction, Instructions: "wrap up"})
	m := New(tmpl)
	_, err := m.Start()
	require.NoError(t, err)

	err = m.SetTasks("impl", nil)
	require.NoError(t, err)

	assert.Equal(t, "done", m.State().Step)
}

func TestSetTasks_UnknownLoopID(t *testing.T) {
	m := New(loopTemplate())
	_, err := m.Start()
	require.NoError(t, err)

	err = m.SetTasks("ghost", []Task{{ID: "x", Title: "x"}})
	require.Error(t, err)
	assert.True(t, lanes.IsKind(err, lanes.KindReference))
}

func TestSetTasks_Idempotent(t *testing.T) {
	m := New(loopTemplate())
	_, err := m.Start()
	require.NoError(t, err)

	tasks := []Task{{ID: "A", Title: "A"}}
	require.NoError(t, m.SetTasks("impl", tasks))
	first := m.State().Tasks["impl"]

	require.NoError(t, m.SetTasks("impl", tasks))
	second := m.State().Tasks["impl"]

	assert.Equal(t, first, second)
}

func TestSummary_TruncatedAt100(t *testing.T) {
	m := New(linearTemplate())
	_, err := m.Start()
	require.NoError(t, err)

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	m.SetSummary(string(long))

	assert.Len(t, m.State().Summary, 100)
	assert.Equal(t, "...", m.State().Summary[97:])
}

func TestAdvance_TerminalFails(t *testing.T) {
	m := New(linearTemplate())
	_, err := m.Start()
	require.NoError(t, err)

	_, err = m.Advance("planned")
	require.NoError(t, err)
	_, err = m.Advance("shipped")
	require.NoError(t, err)

	_, err = m.Advance("once more")
	require.Error(t, err)
	assert.True(t, lanes.IsKind(err, lanes.KindTerminal))
}

func TestGetStatus_NotStarted(t *testing.T) {
	m := New(linearTemplate())
	_, err := m.GetStatus()
	require.Error(t, err)
	assert.True(t, lanes.IsKind(err, lanes.KindNotStarted))
}

func TestFromState_PrefersSnapshot(t *testing.T) {
	original := linearTemplate()
	m := New(original)
	_, err := m.Start()
	require.NoError(t, err)
	snapshot := m.State()

	differentTemplate := linearTemplate()
	differentTemplate.Steps[0].Instructions = "a changed plan"

	m2 := FromState(differentTemplate, snapshot)
	resp, err := m2.GetStatus()
	require.NoError(t, err)
	assert.Contains(t, resp.Instructions, "write a plan")
}

func TestRegisterArtefacts_RoundTripIdempotent(t *testing.T) {
	m := New(linearTemplate())
	_, err := m.Start()
	require.NoError(t, err)

	resolve := func(p string) (string, bool) { return p, true }

	r1, d1, _ := m.RegisterArtefacts([]string{"/a", "/b"}, resolve)
	assert.Len(t, r1, 2)
	assert.Empty(t, d1)

	r2, d2, _ := m.RegisterArtefacts([]string{"/a", "/b"}, resolve)
	assert.Empty(t, r2)
	assert.Len(t, d2, 2)
	assert.Len(t, m.State().Artefacts, 2)
}

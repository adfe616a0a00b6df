package workflow

import (
	"strings"

	lanes "github.com/lanesdev/lanes"
	"gopkg.in/yaml.v3"
)

// StepType enumerates the three kinds of step a template may declare.
type StepType string

const (
	StepAction StepType = "action"
	StepLoop   StepType = "loop"
	StepRalph  StepType = "ralph"
)

// ContextAction enumerates the context directives a step or sub-step may
// declare.
type ContextAction string

const (
	ContextClear   ContextAction = "clear"
	ContextCompact ContextAction = "compact"
)

// Agent describes a named collaborator role referenced by sub-step
// instructions. The core never enforces tools/cannot; they are
// display-only metadata surfaced to the executor.
type Agent struct {
	Description string   `yaml:"description" json:"description"`
	Tools       []string `yaml:"tools,omitempty" json:"tools,omitempty"`
	Cannot      []string `yaml:"cannot,omitempty" json:"cannot,omitempty"`
}

// SubStep is one ordered unit inside a loop step's body.
type SubStep struct {
	ID           string `yaml:"id" json:"id"`
	Agent        string `yaml:"agent,omitempty" json:"agent,omitempty"`
	Instructions string `yaml:"instructions" json:"instructions"`
	Context      string `yaml:"context,omitempty" json:"context,omitempty"`
}

// Step is one ordered top-level unit of a template.
type Step struct {
	ID           string   `yaml:"id" json:"id"`
	Type         StepType `yaml:"type" json:"type"`
	Instructions string   `yaml:"instructions,omitempty" json:"instructions,omitempty"`
	Context      string   `yaml:"context,omitempty" json:"context,omitempty"`
	N            int      `yaml:"n,omitempty" json:"n,omitempty"`
}

// Template is the immutable definition of a workflow, parsed from a
// workflow document and validated against the rules in spec.md §4.1.
type Template struct {
	Name        string               `yaml:"name" json:"name"`
	Description string               `yaml:"description" json:"description"`
	Agents      map[string]Agent     `yaml:"agents,omitempty" json:"agents,omitempty"`
	Loops       map[string][]SubStep `yaml:"loops,omitempty" json:"loops,omitempty"`
	Steps       []Step               `yaml:"steps" json:"steps"`
}

// Load parses a workflow document's bytes into a validated Template.
// Input is pure: no I/O beyond the supplied bytes. path is used only to
// make error messages identify the offending document.
func Load(data []byte, path string) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, lanes.WrapSubjectError(lanes.KindParse, "malformed workflow document", path, err)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// validate enforces the exhaustive rule set from spec.md §4.1.
func (t *Template) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return lanes.NewError(lanes.KindSchema, "template name must be non-empty")
	}
	if strings.TrimSpace(t.Description) == "" {
		return lanes.NewError(lanes.KindSchema, "template description must be non-empty")
	}
	if len(t.Steps) == 0 {
		return lanes.NewError(lanes.KindSchema, "template must declare at least one step")
	}

	seenSteps := make(map[string]bool, len(t.Steps))
	for _, step := range t.Steps {
		if step.ID == "" {
			return lanes.NewError(lanes.KindSchema, "step id must be non-empty")
		}
		if seenSteps[step.ID] {
			return lanes.NewSubjectError(lanes.KindSchema, "duplicate step id", step.ID)
		}
		seenSteps[step.ID] = true

		switch step.Type {
		case StepAction:
		case StepLoop:
			subSteps, ok := t.Loops[step.ID]
			if !ok || len(subSteps) == 0 {
				return lanes.NewSubjectError(lanes.KindSchema, "loop step has no sub-steps", step.ID)
			}
			seenSubSteps := make(map[string]bool, len(subSteps))
			for _, sub := range subSteps {
				if sub.ID == "" {
					return lanes.NewSubjectError(lanes.KindSchema, "sub-step id must be non-empty in loop", step.ID)
				}
				if seenSubSteps[sub.ID] {
					return lanes.NewSubjectError(lanes.KindSchema, "duplicate sub-step id in loop "+step.ID, sub.ID)
				}
				seenSubSteps[sub.ID] = true
				if sub.Context != "" && !isValidContextAction(sub.Context) {
					return lanes.NewSubjectError(lanes.KindSchema, "invalid context directive on sub-step", sub.ID)
				}
				if sub.Agent != "" {
					if _, ok := t.Agents[sub.Agent]; !ok {
						return lanes.NewSubjectError(lanes.KindSchema, "sub-step references unknown agent", sub.Agent)
					}
				}
			}
		case StepRalph:
			if step.N < 1 {
				return lanes.NewSubjectError(lanes.KindSchema, "ralph step requires n >= 1", step.ID)
			}
		default:
			return lanes.NewSubjectError(lanes.KindSchema, "unknown step type for step "+step.ID, string(step.Type))
		}

		if step.Context != "" && !isValidContextAction(step.Context) {
			return lanes.NewSubjectError(lanes.KindSchema, "invalid context directive on step", step.ID)
		}
	}

	return nil
}

func isValidContextAction(v string) bool {
	return v == string(ContextClear) || v == string(ContextCompact)
}

// StepByID returns the step with the given id, or false if not found.
func (t *Template) StepByID(id string) (Step, bool) {
	for _, s := range t.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// StepIndex returns the index of the step with the given id in t.Steps,
// or -1 if not found.
func (t *Template) StepIndex(id string) int {
	for i, s := range t.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Package stages loads and validates the discovery stage roster: the
// ordered list of interview steps, each backed by one instruction
// document and one completion tool.
package stages

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Stage is one step of the linear workflow. Read-only at runtime.
type Stage struct {
	Id              int    `json:"id"`
	Name            string `json:"name"`
	InstructionFile string `json:"instruction_file"`
	Description     string `json:"description"`
	ToolName        string `json:"tool_name"`
	OutputKey       string `json:"output_key"`
}

// Roster is the validated, ordered stage list.
type Roster struct {
	stages          []Stage
	instructionsDir string
}

// ToolResolver reports whether a tool name maps to a registered callable.
type ToolResolver interface {
	Has(name string) bool
}

// Load reads the roster config and validates every entry. All violations
// are aggregated into a single error so a bad config surfaces completely
// on the first startup attempt.
func Load(configPath, instructionsDir string, resolver ToolResolver) (*Roster, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage config %s: %w", configPath, err)
	}

	var stages []Stage
	if err := json.Unmarshal(raw, &stages); err != nil {
		return nil, fmt.Errorf("failed to parse stage config %s: %w", configPath, err)
	}

	if errs := validate(stages, instructionsDir, resolver); len(errs) > 0 {
		return nil, fmt.Errorf("invalid stage config %s:\n  - %s", configPath, strings.Join(errs, "\n  - "))
	}

	return &Roster{stages: stages, instructionsDir: instructionsDir}, nil
}

func validate(stages []Stage, instructionsDir string, resolver ToolResolver) []string {
	var errs []string

	if len(stages) == 0 {
		return []string{"no stages defined"}
	}

	for i, s := range stages {
		if s.Id != i {
			errs = append(errs, fmt.Sprintf("stage %q: id %d is not contiguous (expected %d)", s.Name, s.Id, i))
		}
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("stage at index %d: missing name", i))
		}
		if s.Description == "" {
			errs = append(errs, fmt.Sprintf("stage %q: missing description", s.Name))
		}
		if s.OutputKey == "" {
			errs = append(errs, fmt.Sprintf("stage %q: missing output_key", s.Name))
		}
		if s.InstructionFile == "" {
			errs = append(errs, fmt.Sprintf("stage %q: missing instruction_file", s.Name))
		} else {
			path := filepath.Join(instructionsDir, s.InstructionFile)
			if _, err := os.Stat(path); err != nil {
				errs = append(errs, fmt.Sprintf("stage %q: instruction file %s not found", s.Name, path))
			}
		}
		if s.ToolName == "" {
			errs = append(errs, fmt.Sprintf("stage %q: missing tool_name", s.Name))
		} else if resolver != nil && !resolver.Has(s.ToolName) {
			errs = append(errs, fmt.Sprintf("stage %q: tool %q is not registered", s.Name, s.ToolName))
		}
	}

	return errs
}

// ResolveTools re-checks every stage's tool name against a resolver
// built after the roster was loaded. Violations are aggregated like
// Load's.
func (r *Roster) ResolveTools(resolver ToolResolver) error {
	var errs []string
	for _, s := range r.stages {
		if !resolver.Has(s.ToolName) {
			errs = append(errs, fmt.Sprintf("stage %q: tool %q is not registered", s.Name, s.ToolName))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("unresolvable stage tools:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Len returns the number of stages.
func (r *Roster) Len() int {
	return len(r.stages)
}

// All returns the stages in order.
func (r *Roster) All() []Stage {
	out := make([]Stage, len(r.stages))
	copy(out, r.stages)
	return out
}

// ByIndex returns the stage at idx, or false when idx is past the roster.
// Indexes past the roster are valid workflow states (post-finalize).
func (r *Roster) ByIndex(idx int) (Stage, bool) {
	if idx < 0 || idx >= len(r.stages) {
		return Stage{}, false
	}
	return r.stages[idx], true
}

// ByName returns the stage with the given name.
func (r *Roster) ByName(name string) (Stage, bool) {
	for _, s := range r.stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// Instruction reads the stage's instruction document.
func (r *Roster) Instruction(s Stage) (string, error) {
	raw, err := os.ReadFile(filepath.Join(r.instructionsDir, s.InstructionFile))
	if err != nil {
		return "", fmt.Errorf("failed to read instruction for stage %q: %w", s.Name, err)
	}
	return string(raw), nil
}

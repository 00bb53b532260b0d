package stages

import (
	"fmt"
	"strings"
	"text/template"
)

// InstructionContext is the immutable per-session data injected into
// instruction templates. A value copy is handed to the renderer so no
// template ever observes later session mutations.
type InstructionContext struct {
	UserName    string
	Language    string
	CompanyName string
	ProjectName string
}

// RenderInstruction executes the instruction text as a template over the
// context. Instruction files with no template actions pass through
// unchanged.
func RenderInstruction(instruction string, ctx InstructionContext) (string, error) {
	if ctx.Language == "" {
		ctx.Language = "English"
	}

	tmpl, err := template.New("instruction").Option("missingkey=zero").Parse(instruction)
	if err != nil {
		return "", fmt.Errorf("failed to parse instruction template: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, ctx); err != nil {
		return "", fmt.Errorf("failed to render instruction template: %w", err)
	}
	return sb.String(), nil
}

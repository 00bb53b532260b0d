package service

import (
	"context"
	"fmt"

	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/pkg/extraction"
	"brd-discovery-be/pkg/stages"

	"github.com/google/uuid"
)

const (
	ToolGetCurrentStage   = "get_current_stage"
	ToolResearchCompany   = "research_company"
	ToolFinalizeDiscovery = "finalize_discovery"
	ToolGenerateBRD       = "generate_brd"
)

// ToolFunc is a named callable the conversation loop resolves from
// model output. The return value is a plain directive string handed
// back to the orchestrating agent as conversational context.
type ToolFunc func(ctx context.Context, sessionId uuid.UUID, reason string) string

// Toolkit holds the registered tools. Registration happens once at
// bootstrap; afterwards the map is read-only.
type Toolkit struct {
	tools  map[string]ToolFunc
	logger logger.ILogger
}

func NewToolkit(
	workflow IWorkflowService,
	transition ITransitionService,
	research IResearchService,
	brd IBRDService,
	roster *stages.Roster,
	log logger.ILogger,
) *Toolkit {
	t := &Toolkit{
		tools:  make(map[string]ToolFunc),
		logger: log,
	}

	for _, stage := range roster.All() {
		t.Register(stage.ToolName, t.completionTool(workflow, transition, stage))
	}

	t.Register(ToolGetCurrentStage, func(ctx context.Context, sessionId uuid.UUID, _ string) string {
		idx, err := workflow.CurrentStage(ctx, sessionId)
		if err != nil {
			return "SYSTEM_NOTE: The current stage could not be determined. Continue the conversation and try again."
		}
		if stage, ok := roster.ByIndex(idx); ok {
			return fmt.Sprintf("SYSTEM_NOTE: The project is currently at Stage %d (%s).", idx, stage.Name)
		}
		return fmt.Sprintf("SYSTEM_NOTE: The project is currently at Stage %d.", idx)
	})

	t.Register(ToolResearchCompany, func(ctx context.Context, sessionId uuid.UUID, _ string) string {
		if research == nil {
			return "SYSTEM_NOTE: Company research is not available right now. Continue the conversation without it."
		}
		profile, err := research.ResearchCompany(ctx, sessionId)
		if err != nil {
			t.logger.Warn("Toolkit", "Company research failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
			return "SYSTEM_NOTE: Company research failed. Continue the conversation without it."
		}
		return "SYSTEM_NOTE: Company research results:\n" + profile + "\nUse this profile to confirm details with the user before completing the stage."
	})

	t.Register(ToolFinalizeDiscovery, func(ctx context.Context, sessionId uuid.UUID, _ string) string {
		if err := transition.OnStageComplete(ctx, sessionId, extraction.StageGenerationSignoff); err != nil {
			t.logger.Warn("Toolkit", "Signoff transition failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
		if err := workflow.Finalize(ctx, sessionId); err != nil {
			t.logger.Error("Toolkit", "Finalize failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
			return "SYSTEM_NOTE: Finalization failed. Apologize to the user and ask them to try again."
		}
		return "SYSTEM_NOTE: Discovery is complete. The Business Requirements Document is being generated and will be delivered shortly. Thank the user and let them know."
	})

	t.Register(ToolGenerateBRD, func(ctx context.Context, sessionId uuid.UUID, _ string) string {
		if brd == nil {
			return "SYSTEM_NOTE: Document generation is not available right now."
		}
		if _, err := brd.Generate(ctx, sessionId); err != nil {
			t.logger.Error("Toolkit", "Direct BRD generation failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
			return "SYSTEM_NOTE: Document generation failed. Apologize to the user and offer to retry."
		}
		return "SYSTEM_NOTE: The Business Requirements Document has been generated and delivered to the user."
	})

	return t
}

func (t *Toolkit) completionTool(workflow IWorkflowService, transition ITransitionService, stage stages.Stage) ToolFunc {
	return func(ctx context.Context, sessionId uuid.UUID, reason string) string {
		if reason == "" {
			reason = "Stage completed"
		}

		outcome, err := workflow.Advance(ctx, sessionId, stage.Id, reason)
		if err != nil {
			t.logger.Error("Toolkit", "Advance failed", map[string]interface{}{
				"session_id": sessionId,
				"stage":      stage.Name,
				"error":      err.Error(),
			})
			return "SYSTEM_NOTE: Stage progression is temporarily unavailable. Continue the conversation."
		}

		// Record the transition only on a real advance. Stale calls and
		// resumption replays must leave the completion records alone.
		if outcome.IsAdvanced() {
			if err := transition.OnStageComplete(ctx, sessionId, stage.Name); err != nil {
				t.logger.Warn("Toolkit", "Stage transition record failed", map[string]interface{}{
					"session_id": sessionId,
					"stage":      stage.Name,
					"error":      err.Error(),
				})
			}
		}

		return outcome.Directive()
	}
}

func (t *Toolkit) Register(name string, fn ToolFunc) {
	t.tools[name] = fn
}

// Has satisfies stages.ToolResolver.
func (t *Toolkit) Has(name string) bool {
	_, ok := t.tools[name]
	return ok
}

// Invoke runs the named tool. Unknown names report false; the caller
// decides whether that is a protocol violation.
func (t *Toolkit) Invoke(ctx context.Context, name string, sessionId uuid.UUID, reason string) (string, bool) {
	fn, ok := t.tools[name]
	if !ok {
		return "", false
	}
	return fn(ctx, sessionId, reason), true
}

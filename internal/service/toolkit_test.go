package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/repository/memory"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/pkg/extraction"
	"brd-discovery-be/pkg/stages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster(t *testing.T) *stages.Roster {
	t.Helper()
	dir := t.TempDir()

	entries := []stages.Stage{
		{Id: 0, Name: "CompanyContext", InstructionFile: "company_context.md", Description: "Company background", ToolName: "complete_company_context", OutputKey: "company_context"},
		{Id: 1, Name: "ProjectOverview", InstructionFile: "project_overview.md", Description: "Project overview", ToolName: "complete_project_overview", OutputKey: "project_overview"},
	}
	for _, e := range entries {
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.InstructionFile), []byte("Interview {{.UserName}} about this topic."), 0644))
	}
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	configPath := filepath.Join(dir, "stages.json")
	require.NoError(t, os.WriteFile(configPath, raw, 0644))

	roster, err := stages.Load(configPath, dir, nil)
	require.NoError(t, err)
	return roster
}

func newToolkitFixture(t *testing.T) (*Toolkit, *stages.Roster, unitofwork.RepositoryFactory) {
	t.Helper()
	factory := memory.NewRepositoryFactory()
	workflow := NewWorkflowService(factory, nil, nil, nil, nopLogger{})
	transition := NewTransitionService(factory, extraction.DefaultRegistry(), nil, nopLogger{})
	roster := testRoster(t)
	toolkit := NewToolkit(workflow, transition, nil, nil, roster, nopLogger{})
	return toolkit, roster, factory
}

func TestToolkitRegistersStageAndBuiltinTools(t *testing.T) {
	toolkit, roster, _ := newToolkitFixture(t)

	for _, name := range []string{
		"complete_company_context",
		"complete_project_overview",
		ToolGetCurrentStage,
		ToolResearchCompany,
		ToolFinalizeDiscovery,
		ToolGenerateBRD,
	} {
		assert.True(t, toolkit.Has(name), name)
	}
	assert.False(t, toolkit.Has("complete_unknown"))

	assert.NoError(t, roster.ResolveTools(toolkit))
}

func TestResearchToolUnavailableWithoutService(t *testing.T) {
	toolkit, _, factory := newToolkitFixture(t)
	session := newSessionFixture(t, factory)

	directive, ok := toolkit.Invoke(context.Background(), ToolResearchCompany, session.Id, "")
	require.True(t, ok)
	assert.Contains(t, directive, "research is not available")
}

func TestCompletionToolAdvancesAndRecords(t *testing.T) {
	toolkit, _, factory := newToolkitFixture(t)
	session := newSessionFixture(t, factory)
	session.SetOutput("company_context", "NxtWave Disruptive Technologies trains students for tech careers.")
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Update(context.Background(), session))

	directive, ok := toolkit.Invoke(context.Background(), "complete_company_context", session.Id, "")
	require.True(t, ok)
	assert.Contains(t, directive, "Stage 0 advanced to 1")

	got := fetchSession(t, factory, session.Id)
	assert.Equal(t, 1, got.CurrentStageIndex())
	assert.Contains(t, got.StageCompletion(), "CompanyContext")
	assert.Equal(t, "NxtWave Disruptive Technologies", got.ExtractedData()["company_name"])
}

func TestCompletionToolRejectedLeavesNoRecord(t *testing.T) {
	toolkit, _, factory := newToolkitFixture(t)
	session := newSessionFixture(t, factory)

	// Completing stage 1 while the session sits at 0 is a stale call.
	directive, ok := toolkit.Invoke(context.Background(), "complete_project_overview", session.Id, "")
	require.True(t, ok)
	assert.Contains(t, directive, "already at Stage 0")

	got := fetchSession(t, factory, session.Id)
	assert.Equal(t, 0, got.CurrentStageIndex())
	assert.Empty(t, got.StageCompletion())
}

func TestCompletionToolSuppressedDuringResumption(t *testing.T) {
	toolkit, _, factory := newToolkitFixture(t)
	session := newSessionFixture(t, factory)
	session.SetResuming(true)
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Update(context.Background(), session))

	directive, ok := toolkit.Invoke(context.Background(), "complete_company_context", session.Id, "")
	require.True(t, ok)
	assert.Contains(t, directive, "Resumption in progress")

	got := fetchSession(t, factory, session.Id)
	assert.Equal(t, 0, got.CurrentStageIndex())
	assert.Empty(t, got.StageCompletion())
}

func TestGetCurrentStageTool(t *testing.T) {
	toolkit, _, factory := newToolkitFixture(t)
	session := newSessionFixture(t, factory)

	directive, ok := toolkit.Invoke(context.Background(), ToolGetCurrentStage, session.Id, "")
	require.True(t, ok)
	assert.Contains(t, directive, "Stage 0 (CompanyContext)")
}

func TestFinalizeDiscoveryTool(t *testing.T) {
	toolkit, _, factory := newToolkitFixture(t)
	session := newSessionFixture(t, factory)

	directive, ok := toolkit.Invoke(context.Background(), ToolFinalizeDiscovery, session.Id, "")
	require.True(t, ok)
	assert.Contains(t, directive, "Discovery is complete")

	got := fetchSession(t, factory, session.Id)
	assert.Equal(t, constant.TerminalStageIndex, got.CurrentStageIndex())
	assert.Equal(t, constant.WorkflowStatusCompleted, got.WorkflowStatus())
	assert.Contains(t, got.StageCompletion(), extraction.StageGenerationSignoff)
}

func TestInvokeUnknownTool(t *testing.T) {
	toolkit, _, factory := newToolkitFixture(t)
	session := newSessionFixture(t, factory)

	_, ok := toolkit.Invoke(context.Background(), "not_a_tool", session.Id, "")
	assert.False(t, ok)
}

package service

import (
	"context"
	"testing"
	"time"

	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/repository/memory"
	"brd-discovery-be/pkg/extraction"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnStageCompleteExtractsAndRecords(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	session.SetOutput("company_context", "NxtWave Disruptive Technologies is an education company helping students build tech careers.")
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Update(context.Background(), session))

	for i := 0; i < 3; i++ {
		require.NoError(t, uow.SessionEventRepository().Append(context.Background(), &entity.SessionEvent{
			Id:        uuid.New(),
			SessionId: session.Id,
			Author:    extraction.StageCompanyContext,
			Role:      "assistant",
			Content:   "…",
			CreatedAt: time.Now(),
		}))
	}

	svc := NewTransitionService(factory, extraction.DefaultRegistry(), nil, nopLogger{})
	require.NoError(t, svc.OnStageComplete(context.Background(), session.Id, extraction.StageCompanyContext))

	got := fetchSession(t, factory, session.Id)

	extracted := got.ExtractedData()
	assert.Equal(t, "NxtWave Disruptive Technologies", extracted["company_name"])
	assert.Equal(t, "EdTech / Career Development", extracted["industry"])

	completion, ok := got.StageCompletion()[extraction.StageCompanyContext].(map[string]interface{})
	require.True(t, ok, "expected a completion entry")
	assert.Equal(t, true, completion["completed"])
	assert.Equal(t, 3, completion["event_count"])
	_, err := time.Parse(time.RFC3339, completion["timestamp"].(string))
	assert.NoError(t, err)

	assert.Equal(t, extraction.StageCompanyContext, got.State["current_stage_name"])
	assert.Equal(t, 1, got.TurnCount())
}

func TestOnStageCompleteWithEmptyOutputStillMarksComplete(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)

	svc := NewTransitionService(factory, extraction.DefaultRegistry(), nil, nopLogger{})
	require.NoError(t, svc.OnStageComplete(context.Background(), session.Id, extraction.StageProblemStatement))

	got := fetchSession(t, factory, session.Id)
	completion, ok := got.StageCompletion()[extraction.StageProblemStatement].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, completion["completed"])
	assert.Empty(t, got.ExtractedData())
	assert.Equal(t, 1, got.TurnCount())
}

func TestOnStageCompleteUnknownStageIsNoop(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)

	svc := NewTransitionService(factory, extraction.DefaultRegistry(), nil, nopLogger{})
	require.NoError(t, svc.OnStageComplete(context.Background(), session.Id, "MadeUpStage"))

	got := fetchSession(t, factory, session.Id)
	assert.Empty(t, got.StageCompletion())
	assert.Equal(t, 0, got.TurnCount())
}

func TestOnStageCompleteIsIdempotentOverwrite(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	session.SetOutput("solution_vision", "A mobile app that schedules field visits automatically. It uses AI to rank urgency.")
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Update(context.Background(), session))

	svc := NewTransitionService(factory, extraction.DefaultRegistry(), nil, nopLogger{})
	require.NoError(t, svc.OnStageComplete(context.Background(), session.Id, extraction.StageSolutionVision))
	require.NoError(t, svc.OnStageComplete(context.Background(), session.Id, extraction.StageSolutionVision))

	got := fetchSession(t, factory, session.Id)
	assert.Len(t, got.StageCompletion(), 1)
	assert.Equal(t, 2, got.TurnCount())
	assert.Equal(t, true, got.ExtractedData()["uses_ai"])
}

func TestOnStageCompleteMergesDoesNotReplace(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	session.MergeExtracted(map[string]interface{}{"company_name": "Acme"})
	session.SetOutput("success_criteria", "We want a 30% conversion uplift and better retention metrics within a quarter.")
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Update(context.Background(), session))

	svc := NewTransitionService(factory, extraction.DefaultRegistry(), nil, nopLogger{})
	require.NoError(t, svc.OnStageComplete(context.Background(), session.Id, extraction.StageSuccessCriteria))

	extracted := fetchSession(t, factory, session.Id).ExtractedData()
	assert.Equal(t, "Acme", extracted["company_name"], "earlier facts must survive later merges")
	assert.Equal(t, true, extracted["kpis_defined"])
}

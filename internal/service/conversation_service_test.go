package service

import (
	"context"
	"fmt"
	"testing"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/repository/memory"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/pkg/extraction"
	"brd-discovery-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	replies []string
	calls   int
	err     error
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	reply := s.replies[s.calls%len(s.replies)]
	s.calls++
	return reply, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, nil)
}

func newConversationFixture(t *testing.T, provider llm.LLMProvider) (IConversationService, *Toolkit, unitofwork.RepositoryFactory) {
	t.Helper()
	factory := memory.NewRepositoryFactory()
	workflow := NewWorkflowService(factory, nil, nil, nil, nopLogger{})
	transition := NewTransitionService(factory, extraction.DefaultRegistry(), nil, nopLogger{})
	roster := testRoster(t)
	toolkit := NewToolkit(workflow, transition, nil, nil, roster, nopLogger{})
	svc := NewConversationService(factory, provider, roster, toolkit, nil, "Wrap up the conversation politely.", nopLogger{})
	return svc, toolkit, factory
}

func TestParseToolMarkers(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantTools   []string
		wantCleaned string
	}{
		{
			name:        "no markers",
			input:       "Just a plain reply.",
			wantTools:   nil,
			wantCleaned: "Just a plain reply.",
		},
		{
			name:        "single marker",
			input:       "Great, that covers it. [[tool:complete_company_context]]",
			wantTools:   []string{"complete_company_context"},
			wantCleaned: "Great, that covers it.",
		},
		{
			name:        "multiple markers keep order",
			input:       "[[tool:complete_company_context]] done [[tool:get_current_stage]]",
			wantTools:   []string{"complete_company_context", "get_current_stage"},
			wantCleaned: "done",
		},
		{
			name:        "malformed marker ignored",
			input:       "[[tool:]] [[tool complete_x]] fine",
			wantTools:   nil,
			wantCleaned: "[[tool:]] [[tool complete_x]] fine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools, cleaned := parseToolMarkers(tt.input)
			assert.Equal(t, tt.wantTools, tools)
			assert.Equal(t, tt.wantCleaned, cleaned)
		})
	}
}

func TestEnsureSessionCreatesWhenMissing(t *testing.T) {
	svc, _, factory := newConversationFixture(t, &scriptedLLM{replies: []string{"hi"}})
	sessionId := uuid.New()

	session, history, err := svc.EnsureSession(context.Background(), sessionId, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, sessionId, session.Id)
	assert.False(t, session.IsResuming())
	assert.Empty(t, history)

	stored := fetchSession(t, factory, sessionId)
	assert.Equal(t, constant.WorkflowStatusInProgress, stored.WorkflowStatus())
}

func TestEnsureSessionResumesExisting(t *testing.T) {
	svc, _, factory := newConversationFixture(t, &scriptedLLM{replies: []string{"hi"}})
	existing := newSessionFixture(t, factory)

	session, _, err := svc.EnsureSession(context.Background(), existing.Id, existing.UserId)
	require.NoError(t, err)
	assert.True(t, session.IsResuming())
	assert.True(t, fetchSession(t, factory, existing.Id).IsResuming())
}

func TestHandleUserInputRunsToolAndStripsMarkers(t *testing.T) {
	provider := &scriptedLLM{replies: []string{
		"NxtWave Disruptive Technologies teaches students tech careers and education skills. [[tool:complete_company_context]]",
	}}
	svc, _, factory := newConversationFixture(t, provider)
	session := newSessionFixture(t, factory)

	reply, err := svc.HandleUserInput(context.Background(), session.Id, "We are NxtWave Disruptive Technologies.")
	require.NoError(t, err)
	assert.NotContains(t, reply, "[[tool:")

	got := fetchSession(t, factory, session.Id)
	assert.Equal(t, 1, got.CurrentStageIndex())
	assert.Equal(t, "NxtWave Disruptive Technologies", got.ExtractedData()["company_name"])
	assert.Equal(t, reply, got.Output("company_context"))

	uow := factory.NewUnitOfWork(context.Background())
	events, err := uow.SessionEventRepository().FindAllBySessionId(context.Background(), session.Id)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, constant.EventRoleUser, events[0].Role)
	assert.Equal(t, constant.EventRoleSystem, events[1].Role)
	assert.Contains(t, events[1].Content, "Stage 0 advanced to 1")
	assert.Equal(t, constant.EventRoleAssistant, events[2].Role)
}

func TestHandleUserInputClearsResumptionFlag(t *testing.T) {
	provider := &scriptedLLM{replies: []string{"Welcome back."}}
	svc, _, factory := newConversationFixture(t, provider)
	session := newSessionFixture(t, factory)

	_, _, err := svc.EnsureSession(context.Background(), session.Id, session.UserId)
	require.NoError(t, err)
	require.True(t, fetchSession(t, factory, session.Id).IsResuming())

	_, err = svc.HandleUserInput(context.Background(), session.Id, "I'm back")
	require.NoError(t, err)
	assert.False(t, fetchSession(t, factory, session.Id).IsResuming())
}

func TestHandleUserInputSurfacesModelFailure(t *testing.T) {
	provider := &scriptedLLM{err: fmt.Errorf("upstream timeout")}
	svc, _, factory := newConversationFixture(t, provider)
	session := newSessionFixture(t, factory)

	_, err := svc.HandleUserInput(context.Background(), session.Id, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model call failed")
	// No stage movement on failure.
	assert.Equal(t, 0, fetchSession(t, factory, session.Id).CurrentStageIndex())
}

func TestHandleUserInputUnknownToolIsIgnored(t *testing.T) {
	provider := &scriptedLLM{replies: []string{"Noted. [[tool:summon_dragon]]"}}
	svc, _, factory := newConversationFixture(t, provider)
	session := newSessionFixture(t, factory)

	reply, err := svc.HandleUserInput(context.Background(), session.Id, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Noted.", reply)
	assert.Equal(t, 0, fetchSession(t, factory, session.Id).CurrentStageIndex())
}

func TestHandleUserInputSessionMissing(t *testing.T) {
	svc, _, _ := newConversationFixture(t, &scriptedLLM{replies: []string{"hi"}})
	_, err := svc.HandleUserInput(context.Background(), uuid.New(), "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/repository/memory"
	"brd-discovery-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

func newSessionFixture(t *testing.T, factory unitofwork.RepositoryFactory) *entity.DiscoverySession {
	t.Helper()
	session := &entity.DiscoverySession{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		UserName:  "Priya",
		UserEmail: "priya@example.com",
		Language:  "English",
		Title:     "Field service app discovery",
		CreatedAt: time.Now(),
	}
	session.EnsureScaffolding()
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Create(context.Background(), session))
	return session
}

func fetchSession(t *testing.T, factory unitofwork.RepositoryFactory, id uuid.UUID) *entity.DiscoverySession {
	t.Helper()
	uow := factory.NewUnitOfWork(context.Background())
	session, err := uow.DiscoverySessionRepository().FindById(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}

func TestAdvanceFromInitialStage(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})

	outcome, err := svc.Advance(context.Background(), session.Id, 0, "Stage completed")
	require.NoError(t, err)

	assert.True(t, outcome.IsAdvanced())
	assert.Contains(t, outcome.Directive(), "Stage 0 advanced to 1")
	assert.Equal(t, 1, fetchSession(t, factory, session.Id).CurrentStageIndex())
}

func TestAdvanceRejectsStaleAssertion(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})

	outcome, err := svc.Advance(context.Background(), session.Id, 2, "Stage completed")
	require.NoError(t, err)

	assert.True(t, outcome.IsRejected())
	assert.Contains(t, outcome.Directive(), "already at Stage 0")
	assert.Equal(t, 0, fetchSession(t, factory, session.Id).CurrentStageIndex())
}

func TestAdvanceBlockedDuringResumption(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	session.SetResuming(true)
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Update(context.Background(), session))

	svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})

	// The guard wins even when the asserted stage matches exactly.
	outcome, err := svc.Advance(context.Background(), session.Id, 0, "Stage completed")
	require.NoError(t, err)

	assert.True(t, outcome.IsResumptionBlocked())
	assert.Contains(t, outcome.Directive(), "Resumption in progress")
	assert.Equal(t, 0, fetchSession(t, factory, session.Id).CurrentStageIndex())
}

func TestAdvanceIsMonotonicSingleStep(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})

	for stage := 0; stage < 6; stage++ {
		outcome, err := svc.Advance(context.Background(), session.Id, stage, "Stage completed")
		require.NoError(t, err)
		require.True(t, outcome.IsAdvanced())
		assert.Equal(t, stage+1, fetchSession(t, factory, session.Id).CurrentStageIndex())
	}
}

func TestDuplicateAdvanceOnlyAdvancesOnce(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})

	first, err := svc.Advance(context.Background(), session.Id, 0, "Stage completed")
	require.NoError(t, err)
	second, err := svc.Advance(context.Background(), session.Id, 0, "Stage completed")
	require.NoError(t, err)

	assert.True(t, first.IsAdvanced())
	assert.True(t, second.IsRejected())
	assert.Equal(t, 1, fetchSession(t, factory, session.Id).CurrentStageIndex())
}

func TestConcurrentDuplicateAdvanceNeverSkipsAStage(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})

	// Two racing calls asserting the same stage. Each computes the next
	// index from the stage it observed, so whichever interleaving wins
	// the session lands on stage 1, never 2.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Advance(context.Background(), session.Id, 0, "Stage completed")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fetchSession(t, factory, session.Id).CurrentStageIndex())
}

func TestFinalizeFromAnyState(t *testing.T) {
	for _, startStage := range []int{0, 3, 5} {
		factory := memory.NewRepositoryFactory()
		session := newSessionFixture(t, factory)
		session.SetCurrentStageIndex(startStage)
		uow := factory.NewUnitOfWork(context.Background())
		require.NoError(t, uow.DiscoverySessionRepository().Update(context.Background(), session))

		svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})
		require.NoError(t, svc.Finalize(context.Background(), session.Id))

		got := fetchSession(t, factory, session.Id)
		assert.Equal(t, constant.TerminalStageIndex, got.CurrentStageIndex())
		assert.Equal(t, constant.WorkflowStatusCompleted, got.WorkflowStatus())
		assert.Equal(t, true, got.State[constant.StateKeyDiscoveryCompleted])
	}
}

func TestAdvanceAfterFinalizeComparesAgainstTerminalIndex(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})
	require.NoError(t, svc.Finalize(context.Background(), session.Id))

	// The engine itself has no upper bound; the equality check is the
	// only gate.
	stale, err := svc.Advance(context.Background(), session.Id, 0, "Stage completed")
	require.NoError(t, err)
	assert.True(t, stale.IsRejected())

	matching, err := svc.Advance(context.Background(), session.Id, constant.TerminalStageIndex, "Stage completed")
	require.NoError(t, err)
	assert.True(t, matching.IsAdvanced())
	assert.Equal(t, constant.TerminalStageIndex+1, fetchSession(t, factory, session.Id).CurrentStageIndex())
}

func TestCurrentStageDefaultsToZero(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := &entity.DiscoverySession{Id: uuid.New(), UserId: uuid.New(), CreatedAt: time.Now()}
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Create(context.Background(), session))

	svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})
	idx, err := svc.CurrentStage(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestWorkflowSessionNotFound(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	svc := NewWorkflowService(factory, nil, nil, nil, nopLogger{})

	_, err := svc.Advance(context.Background(), uuid.New(), 0, "Stage completed")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, svc.Finalize(context.Background(), uuid.New()), ErrSessionNotFound)

	_, err = svc.CurrentStage(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

type recordingNotifier struct {
	stageUpdates chan int
}

func (r *recordingNotifier) NotifyStageAdvanced(sessionId uuid.UUID, currentStage int) {
	r.stageUpdates <- currentStage
}

func (r *recordingNotifier) NotifyBRDReady(sessionId uuid.UUID) {}

func TestAdvanceNotifiesStageUpdate(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)
	notifier := &recordingNotifier{stageUpdates: make(chan int, 1)}
	svc := NewWorkflowService(factory, notifier, nil, nil, nopLogger{})

	_, err := svc.Advance(context.Background(), session.Id, 0, "Stage completed")
	require.NoError(t, err)

	select {
	case stage := <-notifier.stageUpdates:
		assert.Equal(t, 1, stage)
	case <-time.After(time.Second):
		t.Fatal("expected a stage update notification")
	}
}

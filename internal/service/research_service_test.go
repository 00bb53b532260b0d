package service

import (
	"context"
	"testing"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/repository/memory"
	"brd-discovery-be/pkg/extraction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResearchCompanyStoresProfile(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)

	session.SetOutput(extraction.OutputKeys[extraction.StageCompanyContext], "The user works at Nestwave, a chip company.")
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Update(context.Background(), session))

	provider := &scriptedLLM{replies: []string{"Nestwave provides low-power geolocation for IoT applications."}}
	svc := NewResearchService(factory, provider, nopLogger{})

	profile, err := svc.ResearchCompany(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Contains(t, profile, "Nestwave")

	got := fetchSession(t, factory, session.Id)
	assert.Equal(t, profile, got.Output(constant.StateKeyCompanyResearch))
}

func TestResearchFeedsCompanyFactExtraction(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)

	session.SetOutput(extraction.OutputKeys[extraction.StageCompanyContext], "They build chips for trackers.")
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.DiscoverySessionRepository().Update(context.Background(), session))

	provider := &scriptedLLM{replies: []string{"Nestwave provides low-power geolocation for IoT applications."}}
	research := NewResearchService(factory, provider, nopLogger{})
	_, err := research.ResearchCompany(context.Background(), session.Id)
	require.NoError(t, err)

	// Completing the stage reads the stored profile next to the stage
	// output, so facts the user never stated come from the research.
	transition := NewTransitionService(factory, extraction.DefaultRegistry(), nil, nopLogger{})
	require.NoError(t, transition.OnStageComplete(context.Background(), session.Id, extraction.StageCompanyContext))

	got := fetchSession(t, factory, session.Id)
	extracted := got.ExtractedData()
	assert.Equal(t, "Nestwave", extracted["company_name"])
	assert.Equal(t, "IoT / Geolocation", extracted["industry"])
	assert.Equal(t, "IoT device manufacturers", extracted["target_audience"])
}

func TestResearchWithoutCompanyContextFails(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	session := newSessionFixture(t, factory)

	provider := &scriptedLLM{replies: []string{"unused"}}
	svc := NewResearchService(factory, provider, nopLogger{})

	_, err := svc.ResearchCompany(context.Background(), session.Id)
	assert.ErrorIs(t, err, ErrNoCompanyIdentified)
}

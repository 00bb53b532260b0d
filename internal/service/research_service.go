package service

import (
	"context"
	"fmt"
	"strings"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/pkg/extraction"
	"brd-discovery-be/pkg/llm"

	"github.com/google/uuid"
)

// IResearchService builds a short company profile for the session's
// company and stores it under the research state key, where later
// fact extraction reads it alongside the stage output.
type IResearchService interface {
	ResearchCompany(ctx context.Context, sessionId uuid.UUID) (string, error)
}

const researcherInstruction = `You are a research assistant specialized in finding company information.

Given the company name and conversation excerpt below, synthesize a concise profile:
- Full Company Name
- Mission Summary (1-2 sentences)
- Key Products/Services (2-3 main ones)
- Target Audience (who they serve)

Be thorough but concise. Focus on factual, verifiable information.`

var ErrNoCompanyIdentified = fmt.Errorf("no company identified on session")

type researchService struct {
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewResearchService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	log logger.ILogger,
) IResearchService {
	return &researchService{
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		logger:      log,
	}
}

func (s *researchService) ResearchCompany(ctx context.Context, sessionId uuid.UUID) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.DiscoverySessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrSessionNotFound
	}

	if s.llmProvider == nil {
		return "", fmt.Errorf("no llm provider configured")
	}

	session.EnsureScaffolding()

	companyName, _ := session.ExtractedData()["company_name"].(string)
	excerpt := session.Output(extraction.OutputKeys[extraction.StageCompanyContext])
	if companyName == "" && excerpt == "" {
		return "", ErrNoCompanyIdentified
	}

	var prompt strings.Builder
	prompt.WriteString(researcherInstruction)
	if companyName != "" {
		prompt.WriteString("\n\nCompany name: " + companyName)
	}
	if excerpt != "" {
		prompt.WriteString("\n\nConversation excerpt:\n" + excerpt)
	}

	profile, err := s.llmProvider.Generate(ctx, prompt.String(), llm.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("research call failed: %w", err)
	}

	// Stored before the stage completes so the completion extractors
	// see the profile next to the stage output.
	session.SetOutput(constant.StateKeyCompanyResearch, profile)
	if err := uow.DiscoverySessionRepository().Update(ctx, session); err != nil {
		return "", err
	}

	s.logger.Info("ResearchService", "Company profile stored", map[string]interface{}{
		"session_id": sessionId,
		"length":     len(profile),
	})

	return profile, nil
}

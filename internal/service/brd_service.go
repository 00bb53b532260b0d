package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/pkg/mailer"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/pkg/extraction"
	"brd-discovery-be/pkg/llm"
	"brd-discovery-be/pkg/stages"

	"github.com/google/uuid"
)

// IBRDService turns a completed discovery session into the final
// Business Requirements Document. Generate is called synchronously by
// the generate_brd tool and asynchronously by the completion consumer.
type IBRDService interface {
	Generate(ctx context.Context, sessionId uuid.UUID) (string, error)
}

type brdService struct {
	uowFactory         unitofwork.RepositoryFactory
	llmProvider        llm.LLMProvider
	notifier           INotificationService
	emailService       mailer.IEmailService
	drafterInstruction string
	logger             logger.ILogger
}

func NewBRDService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	notifier INotificationService,
	emailService mailer.IEmailService,
	drafterInstruction string,
	log logger.ILogger,
) IBRDService {
	return &brdService{
		uowFactory:         uowFactory,
		llmProvider:        llmProvider,
		notifier:           notifier,
		emailService:       emailService,
		drafterInstruction: drafterInstruction,
		logger:             log,
	}
}

func (s *brdService) Generate(ctx context.Context, sessionId uuid.UUID) (string, error) {
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

	events, err := uow.SessionEventRepository().FindAllBySessionId(ctx, sessionId)
	if err != nil {
		s.logger.Warn("BRDService", "Transcript unavailable, generating from state only", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	prompt, err := s.buildPrompt(session, events)
	if err != nil {
		return "", err
	}

	document, err := s.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("brd generation failed: %w", err)
	}

	session.SetOutput(constant.StateKeyFinalBRD, document)
	if err := uow.DiscoverySessionRepository().Update(ctx, session); err != nil {
		return "", err
	}

	s.logger.Info("BRDService", "BRD generated", map[string]interface{}{
		"session_id": sessionId,
		"length":     len(document),
	})

	if s.notifier != nil {
		s.notifier.NotifyBRDReady(sessionId)
	}

	if s.emailService != nil && session.UserEmail != "" {
		if err := s.emailService.SendBRDDocument(session.UserEmail, session.UserName, session.Title, document); err != nil {
			s.logger.Warn("BRDService", "BRD email delivery failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}

	return document, nil
}

func (s *brdService) buildPrompt(session *entity.DiscoverySession, events []*entity.SessionEvent) (string, error) {
	extracted := session.ExtractedData()

	renderCtx := stages.InstructionContext{
		UserName: session.UserName,
		Language: session.Language,
	}
	if name, ok := extracted["company_name"].(string); ok {
		renderCtx.CompanyName = name
	}
	if name, ok := extracted["project_name"].(string); ok {
		renderCtx.ProjectName = name
	}

	instruction, err := stages.RenderInstruction(s.drafterInstruction, renderCtx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(instruction)

	if len(extracted) > 0 {
		raw, _ := json.MarshalIndent(extracted, "", "  ")
		sb.WriteString("\n\n## Extracted facts\n")
		sb.Write(raw)
	}

	sb.WriteString("\n\n## Stage outputs\n")
	for _, stageName := range []string{
		extraction.StageCompanyContext,
		extraction.StageProjectOverview,
		extraction.StageCurrentWorkflow,
		extraction.StageProblemStatement,
		extraction.StageSolutionVision,
		extraction.StageSuccessCriteria,
		extraction.StageGenerationSignoff,
	} {
		if text := session.Output(extraction.OutputKeys[stageName]); text != "" {
			sb.WriteString(fmt.Sprintf("\n### %s\n%s\n", stageName, text))
		}
	}

	if len(events) > 0 {
		sb.WriteString("\n## Conversation transcript\n")
		for _, ev := range events {
			sb.WriteString(fmt.Sprintf("%s: %s\n", ev.Role, ev.Content))
		}
	}

	return sb.String(), nil
}

package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/pkg/llm"
	"brd-discovery-be/pkg/stages"

	"github.com/google/uuid"
)

// toolMarkerPattern is the inline invocation syntax the model is
// instructed to emit, e.g. [[tool:complete_company_context]].
var toolMarkerPattern = regexp.MustCompile(`\[\[tool:([a-zA-Z0-9_]+)\]\]`)

// IConversationService drives one discovery turn: user input in,
// model reply out, tools invoked along the way.
type IConversationService interface {
	// EnsureSession loads or creates the session a live connection is
	// about to drive. Reconnecting to an existing session flips it into
	// resumption mode.
	EnsureSession(ctx context.Context, sessionId uuid.UUID, userId uuid.UUID) (*entity.DiscoverySession, []*entity.SessionEvent, error)
	// HandleUserInput runs a full turn and returns the client-visible
	// reply with tool markers stripped.
	HandleUserInput(ctx context.Context, sessionId uuid.UUID, text string) (string, error)
}

type conversationService struct {
	uowFactory         unitofwork.RepositoryFactory
	llmProvider        llm.LLMProvider
	roster             *stages.Roster
	toolkit            *Toolkit
	memoryService      IMemoryService
	wrapupInstruction  string
	keepHistoryEntries int
	logger             logger.ILogger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	roster *stages.Roster,
	toolkit *Toolkit,
	memoryService IMemoryService,
	wrapupInstruction string,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory:         uowFactory,
		llmProvider:        llmProvider,
		roster:             roster,
		toolkit:            toolkit,
		memoryService:      memoryService,
		wrapupInstruction:  wrapupInstruction,
		keepHistoryEntries: 40,
		logger:             log,
	}
}

func (s *conversationService) EnsureSession(ctx context.Context, sessionId uuid.UUID, userId uuid.UUID) (*entity.DiscoverySession, []*entity.SessionEvent, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.DiscoverySessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return nil, nil, err
	}

	if session == nil {
		session = &entity.DiscoverySession{
			Id:        sessionId,
			UserId:    userId,
			CreatedAt: time.Now(),
		}
		session.EnsureScaffolding()
		if err := uow.DiscoverySessionRepository().Create(ctx, session); err != nil {
			return nil, nil, err
		}
		s.logger.Info("ConversationService", "Session created", map[string]interface{}{"session_id": sessionId})
		return session, nil, nil
	}

	// Reconnect. Completion signals replayed from history must not
	// advance the workflow until the user speaks again.
	session.SetResuming(true)
	if err := uow.DiscoverySessionRepository().Update(ctx, session); err != nil {
		return nil, nil, err
	}

	history, err := uow.SessionEventRepository().FindAllBySessionId(ctx, sessionId)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("ConversationService", "Session resumed", map[string]interface{}{
		"session_id":    sessionId,
		"history_count": len(history),
	})
	return session, history, nil
}

func (s *conversationService) HandleUserInput(ctx context.Context, sessionId uuid.UUID, text string) (string, error) {
	if s.llmProvider == nil {
		return "", fmt.Errorf("no llm provider configured")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.DiscoverySessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrSessionNotFound
	}

	// Fresh user input ends resumption mode.
	if session.IsResuming() {
		session.SetResuming(false)
		if err := uow.DiscoverySessionRepository().Update(ctx, session); err != nil {
			return "", err
		}
	}

	stageName, instruction, outputKey := s.stageContext(session)

	if err := uow.SessionEventRepository().Append(ctx, &entity.SessionEvent{
		Id:        uuid.New(),
		SessionId: sessionId,
		Author:    constant.EventAuthorUser,
		Role:      constant.EventRoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	}); err != nil {
		return "", err
	}

	history, err := uow.SessionEventRepository().FindAllBySessionId(ctx, sessionId)
	if err != nil {
		return "", err
	}

	messages := s.buildMessages(ctx, session, instruction, history)
	raw, err := s.llmProvider.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	toolNames, cleaned := parseToolMarkers(raw)

	// The stage output must be on the session before any completion
	// tool reads it.
	if outputKey != "" && cleaned != "" {
		session.SetOutput(outputKey, cleaned)
		if err := uow.DiscoverySessionRepository().Update(ctx, session); err != nil {
			return "", err
		}
	}

	for _, name := range toolNames {
		directive, ok := s.toolkit.Invoke(ctx, name, sessionId, "Stage completed")
		if !ok {
			s.logger.Warn("ConversationService", "Model referenced unknown tool", map[string]interface{}{
				"session_id": sessionId,
				"tool":       name,
			})
			continue
		}
		if err := uow.SessionEventRepository().Append(ctx, &entity.SessionEvent{
			Id:        uuid.New(),
			SessionId: sessionId,
			Author:    stageName,
			Role:      constant.EventRoleSystem,
			Content:   directive,
			CreatedAt: time.Now(),
		}); err != nil {
			s.logger.Warn("ConversationService", "Failed to record tool directive", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}

	if err := uow.SessionEventRepository().Append(ctx, &entity.SessionEvent{
		Id:        uuid.New(),
		SessionId: sessionId,
		Author:    stageName,
		Role:      constant.EventRoleAssistant,
		Content:   cleaned,
		CreatedAt: time.Now(),
	}); err != nil {
		return "", err
	}

	return cleaned, nil
}

// stageContext resolves the active stage's name, rendered instruction
// and output key. Sessions past the roster get the wrapup instruction.
func (s *conversationService) stageContext(session *entity.DiscoverySession) (string, string, string) {
	idx := session.CurrentStageIndex()
	stage, ok := s.roster.ByIndex(idx)
	if !ok {
		return "Wrapup", s.render(session, s.wrapupInstruction), ""
	}

	text, err := s.roster.Instruction(stage)
	if err != nil {
		s.logger.Error("ConversationService", "Instruction unavailable", map[string]interface{}{
			"session_id": session.Id,
			"stage":      stage.Name,
			"error":      err.Error(),
		})
		text = stage.Description
	}
	return stage.Name, s.render(session, text), stage.OutputKey
}

func (s *conversationService) render(session *entity.DiscoverySession, instruction string) string {
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

	rendered, err := stages.RenderInstruction(instruction, renderCtx)
	if err != nil {
		s.logger.Warn("ConversationService", "Instruction render failed, using raw text", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		return instruction
	}
	return rendered
}

func (s *conversationService) buildMessages(ctx context.Context, session *entity.DiscoverySession, instruction string, history []*entity.SessionEvent) []llm.Message {
	system := instruction
	if s.memoryService != nil {
		if recalled := s.memoryService.Recall(ctx, session.Id, instruction); len(recalled) > 0 {
			system += "\n\n## Earlier discoveries\n- " + strings.Join(recalled, "\n- ")
		}
	}

	messages := []llm.Message{{Role: "system", Content: system}}

	start := 0
	if len(history) > s.keepHistoryEntries {
		start = len(history) - s.keepHistoryEntries
	}
	for _, ev := range history[start:] {
		role := ev.Role
		if role == constant.EventRoleSystem {
			role = "user"
		}
		messages = append(messages, llm.Message{Role: role, Content: ev.Content})
	}
	return messages
}

// parseToolMarkers extracts tool names in order of appearance and
// returns the text with the markers removed.
func parseToolMarkers(text string) ([]string, string) {
	matches := toolMarkerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, strings.TrimSpace(text)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	cleaned := strings.TrimSpace(toolMarkerPattern.ReplaceAllString(text, ""))
	return names, cleaned
}

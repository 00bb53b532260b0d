package service

import (
	"context"
	"time"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/dto"
	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/pkg/stages"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionTokenTTL = 24 * time.Hour

// IDiscoveryService is the HTTP-facing session surface: creation with a
// signed websocket token, state views and the final document.
type IDiscoveryService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error)
	ListByUser(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error)
	GetBRD(ctx context.Context, id uuid.UUID) (*dto.BRDResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stages() []*dto.StageDescriptor
}

type discoveryService struct {
	uowFactory    unitofwork.RepositoryFactory
	roster        *stages.Roster
	memoryService IMemoryService
	jwtSecret     string
	logger        logger.ILogger
}

func NewDiscoveryService(
	uowFactory unitofwork.RepositoryFactory,
	roster *stages.Roster,
	memoryService IMemoryService,
	jwtSecret string,
	log logger.ILogger,
) IDiscoveryService {
	return &discoveryService{
		uowFactory:    uowFactory,
		roster:        roster,
		memoryService: memoryService,
		jwtSecret:     jwtSecret,
		logger:        log,
	}
}

func (s *discoveryService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	session := &entity.DiscoverySession{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Language:  req.Language,
		Title:     req.Title,
		CreatedAt: time.Now(),
	}
	session.EnsureScaffolding()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DiscoverySessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.mintToken(session)
	if err != nil {
		return nil, err
	}

	s.logger.Info("DiscoveryService", "Session created", map[string]interface{}{
		"session_id": session.Id,
		"user_name":  session.UserName,
	})

	return &dto.CreateSessionResponse{Id: session.Id, Token: token}, nil
}

func (s *discoveryService) mintToken(session *entity.DiscoverySession) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    session.UserId.String(),
		"session_id": session.Id.String(),
		"exp":        time.Now().Add(sessionTokenTTL).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *discoveryService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.DiscoverySessionRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	stageName := ""
	if stage, ok := s.roster.ByIndex(session.CurrentStageIndex()); ok {
		stageName = stage.Name
	}

	return &dto.ShowSessionResponse{
		Id:                session.Id,
		UserName:          session.UserName,
		Title:             session.Title,
		Language:          session.Language,
		CurrentStageIndex: session.CurrentStageIndex(),
		CurrentStageName:  stageName,
		WorkflowStatus:    session.WorkflowStatus(),
		TurnCount:         session.TurnCount(),
		ExtractedData:     session.ExtractedData(),
		StageCompletion:   session.StageCompletion(),
		CreatedAt:         session.CreatedAt,
		UpdatedAt:         session.UpdatedAt,
	}, nil
}

func (s *discoveryService) ListByUser(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.DiscoverySessionRepository().FindAllByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.SessionSummaryResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, &dto.SessionSummaryResponse{
			Id:                session.Id,
			Title:             session.Title,
			CurrentStageIndex: session.CurrentStageIndex(),
			WorkflowStatus:    session.WorkflowStatus(),
			CreatedAt:         session.CreatedAt,
		})
	}
	return out, nil
}

func (s *discoveryService) GetBRD(ctx context.Context, id uuid.UUID) (*dto.BRDResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.DiscoverySessionRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	return &dto.BRDResponse{
		SessionId: session.Id,
		FinalBRD:  session.Output(constant.StateKeyFinalBRD),
		Completed: session.WorkflowStatus() == constant.WorkflowStatusCompleted,
	}, nil
}

func (s *discoveryService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DiscoverySessionRepository().Delete(ctx, id); err != nil {
		return err
	}
	if s.memoryService != nil {
		if err := s.memoryService.Forget(ctx, id); err != nil {
			s.logger.Warn("DiscoveryService", "Failed to drop stage memories", map[string]interface{}{
				"session_id": id,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

func (s *discoveryService) Stages() []*dto.StageDescriptor {
	all := s.roster.All()
	out := make([]*dto.StageDescriptor, 0, len(all))
	for _, stage := range all {
		out = append(out, &dto.StageDescriptor{
			Id:          stage.Id,
			Name:        stage.Name,
			Description: stage.Description,
			OutputKey:   stage.OutputKey,
		})
	}
	return out
}

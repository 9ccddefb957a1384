package services

import (
	"context"

	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
	"maintenance-system/pkg/utils"
)

type ReportServiceInterface interface {
	PendingApprovals(ctx context.Context) ([]dto.AdminRequestDTO, error)
	CountPendingApprovals(ctx context.Context) (uint64, error)
	GetReport(ctx context.Context, filter types.Filter) ([]dto.AdminRequestDTO, error)
}

// ReportService - административные выборки по заявкам. Только для роли admin.
type ReportService struct {
	requestRepo repositories.RequestRepositoryInterface
	logger      *zap.Logger
}

func NewReportService(requestRepo repositories.RequestRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &ReportService{requestRepo: requestRepo, logger: logger}
}

func (s *ReportService) requireAdmin(ctx context.Context) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return err
	}
	if actor.Role != constants.RoleAdmin {
		s.logger.Warn("Отказано в доступе к отчётам", zap.String("role", actor.Role.String()))
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *ReportService) PendingApprovals(ctx context.Context) ([]dto.AdminRequestDTO, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	list, err := s.requestRepo.ListPendingApprovals(ctx)
	if err != nil {
		s.logger.Error("Ошибка получения очереди одобрения", zap.Error(err))
		return nil, apperrors.NewStorageError("PendingApprovals", err)
	}
	return list, nil
}

func (s *ReportService) CountPendingApprovals(ctx context.Context) (uint64, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return 0, err
	}
	count, err := s.requestRepo.CountPendingApprovals(ctx)
	if err != nil {
		s.logger.Error("Ошибка подсчёта очереди одобрения", zap.Error(err))
		return 0, apperrors.NewStorageError("CountPendingApprovals", err)
	}
	return count, nil
}

func (s *ReportService) GetReport(ctx context.Context, filter types.Filter) ([]dto.AdminRequestDTO, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	list, err := s.requestRepo.ListReports(ctx, filter)
	if err != nil {
		s.logger.Error("Ошибка формирования отчёта", zap.Error(err))
		return nil, apperrors.NewStorageError("GetReport", err)
	}
	return list, nil
}

package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

// EquipmentStatusStore - то, что движку заявок нужно от хранилища статусов оборудования.
type EquipmentStatusStore interface {
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status constants.EquipmentStatus) error
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
}

type EquipmentServiceInterface interface {
	EquipmentStatusStore
	GetStatus(ctx context.Context, id uint64) (*dto.EquipmentStatusDTO, error)
	ListByLab(ctx context.Context, labID uint64) ([]entities.Equipment, error)
	OverrideStatus(ctx context.Context, id uint64, payload dto.UpdateEquipmentStatusDTO) (*dto.EquipmentStatusDTO, error)
}

type EquipmentService struct {
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	requestRepo   repositories.RequestRepositoryInterface
	validator     StructValidator
	logger        *zap.Logger
}

func NewEquipmentService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	validator StructValidator,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		requestRepo:   requestRepo,
		validator:     validator,
		logger:        logger,
	}
}

func (s *EquipmentService) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	return s.equipmentRepo.FindEquipmentForUpdateInTx(ctx, tx, id)
}

// SetStatusInTx - безусловная перезапись статуса. Вызывается движком заявок внутри его транзакции.
func (s *EquipmentService) SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status constants.EquipmentStatus) error {
	if !status.IsValid() {
		return apperrors.NewFieldError("status", "допустимые значения: active maintenance damaged")
	}
	return s.equipmentRepo.SetStatusInTx(ctx, tx, id, status)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return s.equipmentRepo.FindEquipment(ctx, id)
}

func (s *EquipmentService) GetStatus(ctx context.Context, id uint64) (*dto.EquipmentStatusDTO, error) {
	eq, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("Ошибка чтения статуса оборудования", zap.Uint64("equipmentID", id), zap.Error(err))
		return nil, apperrors.NewStorageError("GetStatus", err)
	}
	return &dto.EquipmentStatusDTO{EquipmentID: eq.ID, Status: string(eq.Status)}, nil
}

func (s *EquipmentService) ListByLab(ctx context.Context, labID uint64) ([]entities.Equipment, error) {
	list, err := s.equipmentRepo.ListByLab(ctx, labID)
	if err != nil {
		s.logger.Error("Ошибка получения оборудования лаборатории", zap.Uint64("labID", labID), zap.Error(err))
		return nil, apperrors.NewStorageError("ListByLab", err)
	}
	return list, nil
}

// OverrideStatus - ручная смена статуса администратором. Пока по оборудованию есть открытая заявка,
// статусом управляет только движок заявок.
func (s *EquipmentService) OverrideStatus(ctx context.Context, id uint64, payload dto.UpdateEquipmentStatusDTO) (*dto.EquipmentStatusDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if actor.Role != constants.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}
	status := constants.EquipmentStatus(payload.Status)

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.equipmentRepo.FindEquipmentForUpdateInTx(ctx, tx, id); err != nil {
			return err
		}
		open, err := s.requestRepo.HasOpenRequestForEquipmentInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if open {
			return apperrors.NewConflictError("по оборудованию %d есть открытая заявка, статус меняется только через неё", id)
		}
		return s.SetStatusInTx(ctx, tx, id, status)
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error("Ошибка смены статуса оборудования", zap.Uint64("equipmentID", id), zap.Error(err))
		return nil, apperrors.NewStorageError("OverrideStatus", err)
	}

	s.logger.Info("Статус оборудования изменён вручную",
		zap.Uint64("equipmentID", id),
		zap.String("status", string(status)),
		zap.Uint64("staffID", actor.StaffID),
	)
	return &dto.EquipmentStatusDTO{EquipmentID: id, Status: string(status)}, nil
}

package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/api"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type RequestController struct {
	requestService services.RequestLifecycleServiceInterface
	logger         *zap.Logger
}

func NewRequestController(requestService services.RequestLifecycleServiceInterface, logger *zap.Logger) *RequestController {
	return &RequestController{
		requestService: requestService,
		logger:         logger,
	}
}

// bind разбирает тело запроса. Валидация выполняется в сервисе.
func bind(ctx echo.Context, payload interface{}) error {
	if err := ctx.Bind(payload); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil)
	}
	return nil
}

func (c *RequestController) CreateRequest(ctx echo.Context) error {
	var payload dto.CreateRequestDTO
	if err := bind(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := c.requestService.Create(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Заявка создана", http.StatusCreated)
}

func (c *RequestController) FindRequest(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := c.requestService.FindRequest(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Successfully", http.StatusOK)
}

func (c *RequestController) ListByStaff(ctx echo.Context) error {
	staffID, err := utils.ParseIDParam(ctx, "staff_id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	list, total, err := c.requestService.ListByStaff(ctx.Request().Context(), staffID, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList[entities.Request](ctx, "Successfully", list, total, filter.Page, filter.Limit)
}

func (c *RequestController) History(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	history, err := c.requestService.History(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, history, "Successfully", http.StatusOK)
}

func (c *RequestController) AdvanceStep(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.StepUpdateDTO
	if err := bind(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := c.requestService.AdvanceGeneric(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Этап заявки обновлён", http.StatusOK)
}

func (c *RequestController) RecordVerification(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.VerificationDTO
	if err := bind(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := c.requestService.RecordVerification(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Проверка записана", http.StatusOK)
}

func (c *RequestController) RecordCorrectiveAction(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.CorrectiveActionDTO
	if err := bind(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := c.requestService.RecordCorrectiveAction(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Корректирующие действия записаны", http.StatusOK)
}

func (c *RequestController) SetApprovalStatus(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ApprovalDTO
	if err := bind(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.setApproval(ctx, id, payload)
}

// Approve и Reject - короткие маршруты /admin/:id/approved и /admin/:id/rejected без тела запроса.
func (c *RequestController) Approve(ctx echo.Context) error {
	return c.decide(ctx, constants.ApprovalApproved)
}

func (c *RequestController) Reject(ctx echo.Context) error {
	return c.decide(ctx, constants.ApprovalRejected)
}

func (c *RequestController) decide(ctx echo.Context, status constants.ApprovalStatus) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.setApproval(ctx, id, dto.ApprovalDTO{AdminApprovalStatus: string(status)})
}

func (c *RequestController) setApproval(ctx echo.Context, id uint64, payload dto.ApprovalDTO) error {
	req, err := c.requestService.SetApprovalStatus(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Решение администратора сохранено", http.StatusOK)
}

func (c *RequestController) RecordClosure(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ClosureDTO
	if err := bind(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := c.requestService.RecordClosure(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Заявка закрыта", http.StatusOK)
}

package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/api"
	"maintenance-system/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) PendingApprovals(ctx echo.Context) error {
	list, err := c.reportService.PendingApprovals(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if list == nil {
		list = make([]dto.AdminRequestDTO, 0)
	}
	return utils.SuccessResponse(ctx, list, "Successfully", http.StatusOK)
}

func (c *ReportController) CountPendingApprovals(ctx echo.Context) error {
	count, err := c.reportService.CountPendingApprovals(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", map[string]uint64{"count": count})
}

// GetReport - полный отчёт по заявкам. ?format=xlsx отдаёт файл Excel.
func (c *ReportController) GetReport(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	format := strings.ToLower(ctx.QueryParam("format"))
	if format == "xlsx" {
		// Выгружаем все для экспорта
		filter.WithPagination = false
	}
	c.logger.Debug("Запрос на отчет с фильтрами", zap.Any("filters", filter.Filter), zap.String("format", format))

	data, err := c.reportService.GetReport(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if format == "xlsx" {
		return c.respondWithXLSX(ctx, data)
	}
	if data == nil {
		data = make([]dto.AdminRequestDTO, 0)
	}
	return utils.SuccessResponse(ctx, data, "Отчет успешно сформирован", http.StatusOK)
}

var reportHeaders = []string{
	"ID заявки", "Тип проблемы", "Дата", "Кафедра", "Место", "Описание проблемы", "Лаборант", "Заведующий",
	"Ответственный", "Замечания проверки", "Материалы", "Устранено своими силами", "Сторонняя организация",
	"Организация", "Расходы", "Этап", "Выполнено этапов", "Одобрение",
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func rowToSlice(item dto.AdminRequestDTO) []interface{} {
	var expenditure string
	if item.ApproxExpenditure != nil {
		expenditure = fmt.Sprintf("%.2f", *item.ApproxExpenditure)
	}

	return []interface{}{
		item.ID, item.TypeOfProblem, str(item.Date), item.Department, item.Location, item.ComplaintDetails,
		str(item.LabAssistant), str(item.Hod), str(item.AssignedPerson), str(item.VerificationRemarks),
		str(item.MaterialsUsed), str(item.ResolvedInhouse), str(item.ExternalAgencyNeeded), str(item.AgencyName),
		expenditure, item.CurrentStep, item.CompletedSteps, item.AdminApprovalStatus,
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, data []dto.AdminRequestDTO) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Заявки на обслуживание"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := f.SetSheetRow(sheet, "A1", &reportHeaders); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(reportHeaders), 1)
	f.SetCellStyle(sheet, "A1", lastHeader, style)

	for i, item := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := rowToSlice(item)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}
	f.SetColWidth(sheet, "B", "E", 20)
	f.SetColWidth(sheet, "F", "F", 40)
	f.SetColWidth(sheet, "G", "N", 22)

	fileName := fmt.Sprintf("maintenance_report_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

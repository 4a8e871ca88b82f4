package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"task-system/internal/dto"
	"task-system/internal/services"
	"task-system/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

// GetPayrollReport отдаёт сводку выплат; при format=xlsx выгружает таблицу.
func (c *ReportController) GetPayrollReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	format := strings.ToLower(ctx.QueryParam("format"))

	rows, err := c.reportService.GetPayrollReport(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if format == "xlsx" {
		return c.respondWithXLSX(ctx, rows)
	}

	return utils.SuccessResponse(ctx, rows, "Отчёт успешно сформирован", http.StatusOK)
}

var payrollHeaders = []string{
	"Сотрудник", "Текущий баланс", "Выполнено задач", "Штрафов", "Начислено всего",
}

func payrollRowToSlice(row dto.PayrollRowDTO) []interface{} {
	return []interface{}{
		row.FullName,
		fmt.Sprintf("%.2f", row.Salary),
		row.CompletedCount,
		row.PenaltyCount,
		fmt.Sprintf("%.2f", row.TotalPaid),
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, rows []dto.PayrollRowDTO) error {
	f := excelize.NewFile()
	sheet := "Отчёт по выплатам"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &payrollHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "E1", style)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := payrollRowToSlice(row)
		f.SetSheetRow(sheet, cell, &values)
	}
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "E", 18)

	fileName := fmt.Sprintf("payroll_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

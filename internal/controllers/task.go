package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/aarondl/null/v8"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"task-system/internal/dto"
	"task-system/internal/services"
	apperrors "task-system/pkg/errors"
	"task-system/pkg/utils"
	"task-system/pkg/validation"
)

type TaskController struct {
	taskService services.TaskServiceInterface
	logger      *zap.Logger
}

func NewTaskController(taskService services.TaskServiceInterface, logger *zap.Logger) *TaskController {
	return &TaskController{
		taskService: taskService,
		logger:      logger,
	}
}

func parseTaskID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "некорректный ID задачи", err, nil)
	}
	return id, nil
}

func (c *TaskController) GetTask(ctx echo.Context) error {
	id, err := parseTaskID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.taskService.GetTask(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Задача успешно получена", http.StatusOK)
}

func (c *TaskController) GetTasks(ctx echo.Context) error {
	filter := dto.TaskFilter{Limit: 50}

	if raw := ctx.QueryParam("zakaz_id"); raw != "" {
		zakazID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx,
				apperrors.NewHttpError(http.StatusBadRequest, "некорректный zakaz_id", err, nil), c.logger)
		}
		filter.ZakazID = null.Int64From(zakazID)
	}
	if status := ctx.QueryParam("status"); status != "" {
		filter.Status = null.StringFrom(status)
	}
	if priority := ctx.QueryParam("priority"); priority != "" {
		filter.Priority = null.StringFrom(priority)
	}
	if raw := ctx.QueryParam("limit"); raw != "" {
		if limit, err := strconv.ParseUint(raw, 10, 64); err == nil && limit > 0 && limit <= 200 {
			filter.Limit = limit
		}
	}
	if raw := ctx.QueryParam("offset"); raw != "" {
		if offset, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.Offset = offset
		}
	}

	res, total, err := c.taskService.GetTasks(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("ошибка при получении списка задач", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]interface{}{
		"list":        res,
		"total_count": total,
	}, "Задачи успешно получены", http.StatusOK)
}

// SubmitForReview принимает multipart-форму с обязательным файлом photo.
func (c *TaskController) SubmitForReview(ctx echo.Context) error {
	id, err := parseTaskID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var photo io.Reader
	var photoFileName string

	fileHeader, err := ctx.FormFile("photo")
	if err == nil {
		src, openErr := fileHeader.Open()
		if openErr != nil {
			return utils.ErrorResponse(ctx, openErr, c.logger)
		}
		defer src.Close()
		if vErr := validation.ValidatePhoto(fileHeader, src); vErr != nil {
			return utils.ErrorResponse(ctx,
				apperrors.NewHttpError(http.StatusBadRequest, vErr.Error(), vErr, nil), c.logger)
		}
		photo = src
		photoFileName = fileHeader.Filename
	} else if err != http.ErrMissingFile {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.taskService.SubmitForReview(ctx.Request().Context(), id, photo, photoFileName); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Задача отправлена на проверку", http.StatusOK)
}

func (c *TaskController) ApproveTask(ctx echo.Context) error {
	id, err := parseTaskID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.taskService.ApproveTask(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Задача подтверждена", http.StatusOK)
}

func (c *TaskController) ReturnForRework(ctx echo.Context) error {
	id, err := parseTaskID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var d dto.ReturnForReworkDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "некорректное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.taskService.ReturnForRework(ctx.Request().Context(), id, d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Задача возвращена на доработку", http.StatusOK)
}

func (c *TaskController) ApplyDispatcherPenalty(ctx echo.Context) error {
	id, err := parseTaskID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var d dto.ApplyPenaltyDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "некорректное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	amount, err := c.taskService.ApplyDispatcherPenalty(ctx.Request().Context(), id, d.ConfirmedAmount)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.PenaltyResponseDTO{PenaltyAmount: amount},
		"Штраф диспетчера применён", http.StatusOK)
}

func (c *TaskController) DeleteTask(ctx echo.Context) error {
	id, err := parseTaskID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.taskService.DeleteTask(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Задача удалена", http.StatusOK)
}

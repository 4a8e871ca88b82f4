package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"task-system/internal/dto"
	"task-system/internal/entities"
	"task-system/internal/ledger"
	"task-system/internal/repositories"
	apperrors "task-system/pkg/errors"
	"task-system/pkg/filestorage"
	"task-system/pkg/utils"
)

// Множитель штрафа диспетчера: списывается двойная сумма начисления.
const penaltyMultiplier = 2

// Префикс хранилища для фото выполненных работ.
const checklistPhotoPrefix = "task-completion"

// Ключи списочных кешей, которые фронтенд читает; сбрасываются после каждой
// успешной мутации.
var taskCacheKeys = []string{"zadachi", "zakazi", "users"}

type TaskServiceInterface interface {
	GetTask(ctx context.Context, id int64) (*dto.TaskResponseDTO, error)
	GetTasks(ctx context.Context, filter dto.TaskFilter) ([]dto.TaskResponseDTO, uint64, error)
	SubmitForReview(ctx context.Context, id int64, photo io.Reader, photoFileName string) error
	ApproveTask(ctx context.Context, id int64) error
	ReturnForRework(ctx context.Context, id int64, d dto.ReturnForReworkDTO) error
	ApplyDispatcherPenalty(ctx context.Context, id int64, confirmedAmount float64) (float64, error)
	DeleteTask(ctx context.Context, id int64) error
}

type TaskService struct {
	taskRepo    repositories.TaskRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	zakazRepo   repositories.ZakazRepositoryInterface
	automation  AutomationServiceInterface
	txManager   repositories.TxManagerInterface
	fileStorage filestorage.FileStorageInterface
	cacheRepo   repositories.CacheRepositoryInterface
	logger      *zap.Logger
}

func NewTaskService(
	taskRepo repositories.TaskRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	zakazRepo repositories.ZakazRepositoryInterface,
	automation AutomationServiceInterface,
	txManager repositories.TxManagerInterface,
	fileStorage filestorage.FileStorageInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) TaskServiceInterface {
	return &TaskService{
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		zakazRepo:   zakazRepo,
		automation:  automation,
		txManager:   txManager,
		fileStorage: fileStorage,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// invalidateListCaches сбрасывает списочные кеши после успешной мутации.
// Сбой кеша не роняет операцию: данные в БД уже консистентны.
func (s *TaskService) invalidateListCaches(ctx context.Context) {
	if err := s.cacheRepo.Del(ctx, taskCacheKeys...); err != nil {
		s.logger.Warn("не удалось сбросить списочные кеши", zap.Error(err))
	}
}

func (s *TaskService) toResponseDTO(ctx context.Context, task *entities.Task, withDispatcherName bool) *dto.TaskResponseDTO {
	resp := &dto.TaskResponseDTO{Task: *task}
	now := time.Now()
	resp.IsOverdue = task.IsOverdue(now)

	if task.Salary.Valid {
		if resp.IsOverdue {
			// Карточка показывает зарплату со штрафом 10% за просрочку;
			// на фактические начисления это не влияет.
			resp.EffectiveSalary = null.Float64From(math.Round(task.Salary.Float64 * 0.9))
		} else {
			resp.EffectiveSalary = task.Salary
		}
	}

	if withDispatcherName && task.DispatcherID.Valid {
		name, err := s.userRepo.FindNameByUUID(ctx, task.DispatcherID.String)
		if err != nil {
			s.logger.Warn("не удалось загрузить имя диспетчера",
				zap.String("dispatcherId", task.DispatcherID.String), zap.Error(err))
		} else {
			resp.DispatcherName = null.StringFrom(name)
		}
	}
	return resp
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*dto.TaskResponseDTO, error) {
	task, err := s.taskRepo.FindTask(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return s.toResponseDTO(ctx, task, true), nil
}

func (s *TaskService) GetTasks(ctx context.Context, filter dto.TaskFilter) ([]dto.TaskResponseDTO, uint64, error) {
	tasks, total, err := s.taskRepo.GetTasks(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.TaskResponseDTO, 0, len(tasks))
	for i := range tasks {
		result = append(result, *s.toResponseDTO(ctx, &tasks[i], false))
	}
	return result, total, nil
}

// SubmitForReview отправляет задачу на проверку диспетчеру. Фото обязательно
// и загружается до каких-либо мутаций; зарплата здесь не начисляется - выплата
// откладывается до подтверждения.
func (s *TaskService) SubmitForReview(ctx context.Context, id int64, photo io.Reader, photoFileName string) error {
	// Проверка до единого обращения к хранилищам.
	if photo == nil || photoFileName == "" {
		return apperrors.ErrMissingPhoto
	}

	task, err := s.taskRepo.FindTask(ctx, nil, id)
	if err != nil {
		return err
	}

	if task.IsLocked || task.Status == entities.TaskStatusUnderReview || task.Status == entities.TaskStatusCompleted {
		return apperrors.NewInvalidInputError("задача уже отправлена на проверку или завершена")
	}

	// Одна попытка загрузки; при сбое задача не трогается вовсе.
	photoName := fmt.Sprintf("%s%s", task.UUIDZadachi, filepath.Ext(photoFileName))
	photoURL, err := s.fileStorage.Save(photo, photoName, checklistPhotoPrefix)
	if err != nil {
		s.logger.Error("не удалось загрузить фото выполненной работы",
			zap.Int64("taskId", id), zap.Error(err))
		return fmt.Errorf("%w: %v", apperrors.ErrPhotoUpload, err)
	}

	upd := dto.TaskUpdate{
		Status:         null.StringFrom(entities.TaskStatusUnderReview),
		IsLocked:       null.BoolFrom(true),
		ChecklistPhoto: null.StringFrom(photoURL),
	}

	// Снимок срока при первой отправке: правки дедлайна после этого не
	// отменяют право на штраф.
	if !task.OriginalDeadline.Valid && task.DueDate.Valid {
		upd.OriginalDeadline = task.DueDate
	}

	// Автоназначение диспетчера - по возможности, без ошибок наружу.
	if !task.DispatcherID.Valid && task.ZakazID.Valid {
		if assignment := s.automation.ResolveDispatcher(ctx, task.ZakazID.Int64); assignment != nil {
			upd.DispatcherID = null.StringFrom(assignment.DispatcherID)
			upd.DispatcherPercentage = null.Float64From(assignment.DispatcherPercentage)
		}
	}

	if err := s.taskRepo.UpdateTask(ctx, nil, id, upd); err != nil {
		s.logger.Error("не удалось отправить задачу на проверку",
			zap.Int64("taskId", id), zap.Error(err))
		return err
	}

	s.invalidateListCaches(ctx)
	return nil
}

// ApproveTask - подтверждение диспетчером: задача закрывается, исполнителю
// начисляется зарплата, диспетчеру - его процент. Всё в одной транзакции.
func (s *TaskService) ApproveTask(ctx context.Context, id int64) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		task, err := s.taskRepo.FindTaskForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if task.Status != entities.TaskStatusUnderReview {
			return apperrors.NewInvalidInputError("подтвердить можно только задачу на проверке")
		}

		now := time.Now()
		upd := dto.TaskUpdate{
			Status:      null.StringFrom(entities.TaskStatusCompleted),
			CompletedAt: null.TimeFrom(now),
		}
		if !task.CreatedAt.IsZero() {
			upd.ExecutionTimeSeconds = null.Int64From(int64(now.Sub(task.CreatedAt).Seconds()))
		}

		// Зарплата исполнителю. Задача без зарплаты не трогает счета.
		if task.Salary.Valid && task.Salary.Float64 > 0 && task.ResponsibleUserID.Valid {
			worker, err := s.userRepo.FindAccountForUpdate(ctx, tx, task.ResponsibleUserID.String)
			if err != nil {
				return err
			}
			snapshot, applied := ledger.AppendEntry(
				ledger.Snapshot{Salary: worker.Salary, CompletedTasks: worker.CompletedTasks},
				entities.CompletedTaskEntry{TaskID: task.IDZadachi, Payment: task.Salary.Float64},
			)
			if !applied {
				s.logger.Warn("начисление исполнителю уже существует, пропускаем",
					zap.Int64("taskId", task.IDZadachi))
			} else if err := s.userRepo.UpdateAccount(ctx, tx, worker.UUIDUser, snapshot); err != nil {
				return err
			}
		}

		// Процент диспетчеру.
		if task.DispatcherID.Valid && task.DispatcherPercentage.Valid &&
			task.Salary.Valid && task.Salary.Float64 > 0 {
			reward := round2(task.Salary.Float64 * task.DispatcherPercentage.Float64 / 100)
			dispatcher, err := s.userRepo.FindAccountForUpdate(ctx, tx, task.DispatcherID.String)
			if err != nil {
				return err
			}
			snapshot, applied := ledger.AppendEntry(
				ledger.Snapshot{Salary: dispatcher.Salary, CompletedTasks: dispatcher.CompletedTasks},
				entities.CompletedTaskEntry{TaskID: task.IDZadachi, Payment: reward},
			)
			if !applied {
				s.logger.Warn("начисление диспетчеру уже существует, пропускаем",
					zap.Int64("taskId", task.IDZadachi))
			} else if err := s.userRepo.UpdateAccount(ctx, tx, dispatcher.UUIDUser, snapshot); err != nil {
				return err
			}
			upd.DispatcherRewardAmount = null.Float64From(reward)
			upd.DispatcherRewardApplied = null.BoolFrom(true)
		}

		return s.taskRepo.UpdateTask(ctx, tx, id, upd)
	})
	if err != nil {
		return err
	}

	s.invalidateListCaches(ctx)
	return nil
}

// ReturnForRework возвращает задачу исполнителю с комментарием диспетчера.
func (s *TaskService) ReturnForRework(ctx context.Context, id int64, d dto.ReturnForReworkDTO) error {
	task, err := s.taskRepo.FindTask(ctx, nil, id)
	if err != nil {
		return err
	}
	if task.Status != entities.TaskStatusUnderReview {
		return apperrors.NewInvalidInputError("вернуть на доработку можно только задачу на проверке")
	}

	returns := append(append([]entities.ReviewReturn{}, task.ReviewReturns...), entities.ReviewReturn{
		ReturnNumber: len(task.ReviewReturns) + 1,
		ReturnedAt:   time.Now(),
		Comment:      d.Comment,
	})

	upd := dto.TaskUpdate{
		Status:        null.StringFrom(entities.TaskStatusInProgress),
		IsLocked:      null.BoolFrom(false),
		ReviewReturns: returns,
	}
	if err := s.taskRepo.UpdateTask(ctx, nil, id, upd); err != nil {
		return err
	}

	s.invalidateListCaches(ctx)
	return nil
}

// ApplyDispatcherPenalty штрафует диспетчера на двойную сумму начисления.
// Порядок проверок фиксирован: сначала право на штраф, затем повторность,
// затем сверка подтверждённой суммы. Сама мутация идёт в транзакции с
// повторной проверкой под блокировкой строки задачи.
func (s *TaskService) ApplyDispatcherPenalty(ctx context.Context, id int64, confirmedAmount float64) (float64, error) {
	task, err := s.taskRepo.FindTask(ctx, nil, id)
	if err != nil {
		return 0, err
	}

	if !task.DispatcherRewardApplied || !task.DispatcherRewardAmount.Valid || !task.DispatcherID.Valid {
		return 0, apperrors.ErrPenaltyNotEligible
	}
	if task.PenaltyApplied {
		return 0, apperrors.ErrPenaltyAlreadyApplied
	}

	penaltyAmount := round2(task.DispatcherRewardAmount.Float64 * penaltyMultiplier)
	if round2(confirmedAmount) != penaltyAmount {
		return 0, apperrors.ErrPenaltyAmountMismatch
	}

	dispatcherID := task.DispatcherID.String
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		// Повторная проверка под блокировкой: двойной штраф из двух
		// параллельных запросов невозможен.
		current, err := s.taskRepo.FindTaskForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.PenaltyApplied {
			return apperrors.ErrPenaltyAlreadyApplied
		}

		debited, err := s.userRepo.ApplyCompletedTaskPenalty(ctx, tx, dispatcherID, id, penaltyMultiplier)
		if err != nil {
			return err
		}
		if debited == 0 {
			// Записи журнала нет - расхождение, устранимое на стороне данных;
			// флаг ставим, чтобы повторный штраф не прошёл.
			s.logger.Warn("штраф: запись журнала диспетчера не найдена",
				zap.Int64("taskId", id), zap.String("dispatcherId", dispatcherID))
		}

		return s.taskRepo.UpdateTask(ctx, tx, id, dto.TaskUpdate{
			PenaltyApplied: null.BoolFrom(true),
		})
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("штраф диспетчера применён",
		zap.Int64("taskId", id),
		zap.String("dispatcherId", dispatcherID),
		zap.Float64("amount", penaltyAmount))

	s.invalidateListCaches(ctx)
	return penaltyAmount, nil
}

// DeleteTask - компенсирующее удаление: перед удалением записи отменяются все
// финансовые эффекты задачи в обратном порядке. Шаги не атомарны между собой;
// при сбое на середине уже применённые шаги не откатываются, а повторный вызов
// безопасен благодаря сопоставлению по id и проверке флагов.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	task, err := s.taskRepo.FindTask(ctx, nil, id)
	if err != nil {
		return err
	}

	// Шаг 1: вернуть зарплату исполнителя, если задача была оплачена.
	if task.Status == entities.TaskStatusCompleted &&
		task.Salary.Valid && task.Salary.Float64 > 0 && task.ResponsibleUserID.Valid {
		err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			worker, err := s.userRepo.FindAccountForUpdate(ctx, tx, task.ResponsibleUserID.String)
			if err != nil {
				return err
			}
			snapshot, applied := ledger.RemoveEntry(
				ledger.Snapshot{Salary: worker.Salary, CompletedTasks: worker.CompletedTasks},
				task.IDZadachi, -task.Salary.Float64,
			)
			if !applied {
				// Запись уже снята (например, повтор после сбоя) - не списываем.
				s.logger.Warn("удаление: запись журнала исполнителя не найдена",
					zap.Int64("taskId", task.IDZadachi))
				return nil
			}
			return s.userRepo.UpdateAccount(ctx, tx, worker.UUIDUser, snapshot)
		})
		if err != nil {
			s.logger.Error("удаление: не удалось вернуть зарплату исполнителя",
				zap.Int64("taskId", id), zap.Error(err))
			return err
		}
	}

	// Шаг 2: отменить штраф диспетчера. Единственный источник истины -
	// флаг has_penalty записи журнала: кредит payment * 2 идёт строго в паре
	// со снятием флага, поэтому двойной возврат невозможен.
	if task.PenaltyApplied && task.DispatcherID.Valid {
		err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			dispatcher, err := s.userRepo.FindAccountForUpdate(ctx, tx, task.DispatcherID.String)
			if err != nil {
				return err
			}

			var refund float64
			for _, entry := range dispatcher.CompletedTasks {
				if entry.TaskID == task.IDZadachi && entry.HasPenalty {
					refund = entry.Payment * penaltyMultiplier
					break
				}
			}

			snapshot, applied := ledger.Apply(
				ledger.Snapshot{Salary: dispatcher.Salary, CompletedTasks: dispatcher.CompletedTasks},
				ledger.Instruction{TaskID: task.IDZadachi, Delta: refund, SetPenalty: utils.ToPtr(false)},
			)
			if !applied {
				s.logger.Warn("удаление: штраф уже снят или запись журнала не найдена",
					zap.Int64("taskId", task.IDZadachi))
				return nil
			}
			return s.userRepo.UpdateAccount(ctx, tx, dispatcher.UUIDUser, snapshot)
		})
		if err != nil {
			s.logger.Error("удаление: не удалось отменить штраф диспетчера",
				zap.Int64("taskId", id), zap.Error(err))
			return err
		}
	}

	// Шаг 3: убрать задачу из списка задач заказа.
	if task.ZakazID.Valid {
		if err := s.zakazRepo.RemoveTaskFromZakaz(ctx, task.ZakazID.Int64, task.IDZadachi); err != nil {
			s.logger.Error("удаление: не удалось убрать задачу из заказа",
				zap.Int64("taskId", id), zap.Int64("zakazId", task.ZakazID.Int64), zap.Error(err))
			return err
		}
	}

	// Шаг 4: удалить саму запись задачи.
	if err := s.taskRepo.DeleteTask(ctx, nil, id); err != nil {
		s.logger.Error("удаление: не удалось удалить запись задачи",
			zap.Int64("taskId", id), zap.Error(err))
		return err
	}

	// Фото в хранилище больше ни на что не ссылается.
	if task.ChecklistPhoto.Valid {
		if err := s.fileStorage.Delete(task.ChecklistPhoto.String); err != nil {
			s.logger.Warn("удаление: не удалось удалить фото из хранилища",
				zap.String("fileUrl", task.ChecklistPhoto.String), zap.Error(err))
		}
	}

	s.invalidateListCaches(ctx)
	return nil
}

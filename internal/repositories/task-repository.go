package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-system/internal/dto"
	"task-system/internal/entities"
	apperrors "task-system/pkg/errors"
)

type TaskRepositoryInterface interface {
	FindTask(ctx context.Context, q Querier, id int64) (*entities.Task, error)
	FindTaskForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*entities.Task, error)
	GetTasks(ctx context.Context, filter dto.TaskFilter) ([]entities.Task, uint64, error)
	UpdateTask(ctx context.Context, q Querier, id int64, upd dto.TaskUpdate) error
	DeleteTask(ctx context.Context, q Querier, id int64) error
}

type TaskRepository struct {
	storage *pgxpool.Pool
}

func NewTaskRepository(storage *pgxpool.Pool) TaskRepositoryInterface {
	return &TaskRepository{storage: storage}
}

const taskColumns = `
	id_zadachi, uuid_zadachi, title, description, status, priority,
	due_date, created_at, completed_at, execution_time_seconds,
	salary, is_locked, checklist_photo, original_deadline,
	penalty_applied, review_returns, zakaz_id, responsible_user_id,
	dispatcher_id, dispatcher_percentage, dispatcher_reward_amount,
	dispatcher_reward_applied`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*entities.Task, error) {
	var t entities.Task
	var description, checklistPhoto, responsibleUserID, dispatcherID sql.NullString
	var dueDate, completedAt, originalDeadline sql.NullTime
	var executionTime, zakazID sql.NullInt64
	var salary, dispatcherPercentage, dispatcherRewardAmount sql.NullFloat64
	var reviewReturnsRaw []byte

	err := row.Scan(
		&t.IDZadachi, &t.UUIDZadachi, &t.Title, &description, &t.Status, &t.Priority,
		&dueDate, &t.CreatedAt, &completedAt, &executionTime,
		&salary, &t.IsLocked, &checklistPhoto, &originalDeadline,
		&t.PenaltyApplied, &reviewReturnsRaw, &zakazID, &responsibleUserID,
		&dispatcherID, &dispatcherPercentage, &dispatcherRewardAmount,
		&t.DispatcherRewardApplied,
	)
	if err != nil {
		return nil, err
	}

	t.Description = null.NewString(description.String, description.Valid)
	t.ChecklistPhoto = null.NewString(checklistPhoto.String, checklistPhoto.Valid)
	t.ResponsibleUserID = null.NewString(responsibleUserID.String, responsibleUserID.Valid)
	t.DispatcherID = null.NewString(dispatcherID.String, dispatcherID.Valid)
	t.DueDate = null.NewTime(dueDate.Time, dueDate.Valid)
	t.CompletedAt = null.NewTime(completedAt.Time, completedAt.Valid)
	t.OriginalDeadline = null.NewTime(originalDeadline.Time, originalDeadline.Valid)
	t.ExecutionTimeSeconds = null.NewInt64(executionTime.Int64, executionTime.Valid)
	t.ZakazID = null.NewInt64(zakazID.Int64, zakazID.Valid)
	t.Salary = null.NewFloat64(salary.Float64, salary.Valid)
	t.DispatcherPercentage = null.NewFloat64(dispatcherPercentage.Float64, dispatcherPercentage.Valid)
	t.DispatcherRewardAmount = null.NewFloat64(dispatcherRewardAmount.Float64, dispatcherRewardAmount.Valid)

	if len(reviewReturnsRaw) > 0 {
		if err := json.Unmarshal(reviewReturnsRaw, &t.ReviewReturns); err != nil {
			return nil, fmt.Errorf("ошибка разбора review_returns: %w", err)
		}
	}
	return &t, nil
}

func (r *TaskRepository) FindTask(ctx context.Context, q Querier, id int64) (*entities.Task, error) {
	if q == nil {
		q = r.storage
	}
	query := fmt.Sprintf(`SELECT %s FROM zadachi WHERE id_zadachi = $1`, taskColumns)
	task, err := scanTask(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования задачи: %w", err)
	}
	return task, nil
}

// FindTaskForUpdate читает задачу с блокировкой строки: конкурентные
// штраф/удаление сериализуются на ней.
func (r *TaskRepository) FindTaskForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*entities.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM zadachi WHERE id_zadachi = $1 FOR UPDATE`, taskColumns)
	task, err := scanTask(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования задачи (FOR UPDATE): %w", err)
	}
	return task, nil
}

func (r *TaskRepository) GetTasks(ctx context.Context, filter dto.TaskFilter) ([]entities.Task, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").From("zadachi").PlaceholderFormat(sq.Dollar)
	listBuilder := sq.Select(taskColumns).From("zadachi").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.ZakazID.Valid {
		countBuilder = countBuilder.Where(sq.Eq{"zakaz_id": filter.ZakazID.Int64})
		listBuilder = listBuilder.Where(sq.Eq{"zakaz_id": filter.ZakazID.Int64})
	}
	if filter.Status.Valid {
		countBuilder = countBuilder.Where(sq.Eq{"status": filter.Status.String})
		listBuilder = listBuilder.Where(sq.Eq{"status": filter.Status.String})
	}
	if filter.Priority.Valid {
		countBuilder = countBuilder.Where(sq.Eq{"priority": filter.Priority.String})
		listBuilder = listBuilder.Where(sq.Eq{"priority": filter.Priority.String})
	}
	if filter.Limit > 0 {
		listBuilder = listBuilder.Limit(filter.Limit)
	}
	listBuilder = listBuilder.Offset(filter.Offset)

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта задач: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта задач: %w", err)
	}

	listSQL, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка задач: %w", err)
	}
	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка задач: %w", err)
	}
	defer rows.Close()

	tasks := make([]entities.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования задачи в списке: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, total, rows.Err()
}

// UpdateTask применяет частичный набор полей одной мутацией.
func (r *TaskRepository) UpdateTask(ctx context.Context, q Querier, id int64, upd dto.TaskUpdate) error {
	if q == nil {
		q = r.storage
	}
	if upd.IsEmpty() {
		return apperrors.ErrBadRequest
	}

	builder := sq.Update("zadachi").PlaceholderFormat(sq.Dollar)

	if upd.Status.Valid {
		builder = builder.Set("status", upd.Status.String)
	}
	if upd.IsLocked.Valid {
		builder = builder.Set("is_locked", upd.IsLocked.Bool)
	}
	if upd.ChecklistPhoto.Valid {
		builder = builder.Set("checklist_photo", upd.ChecklistPhoto.String)
	}
	if upd.OriginalDeadline.Valid {
		builder = builder.Set("original_deadline", upd.OriginalDeadline.Time)
	}
	if upd.CompletedAt.Valid {
		builder = builder.Set("completed_at", upd.CompletedAt.Time)
	}
	if upd.ExecutionTimeSeconds.Valid {
		builder = builder.Set("execution_time_seconds", upd.ExecutionTimeSeconds.Int64)
	}
	if upd.PenaltyApplied.Valid {
		builder = builder.Set("penalty_applied", upd.PenaltyApplied.Bool)
	}
	if upd.DispatcherID.Valid {
		builder = builder.Set("dispatcher_id", upd.DispatcherID.String)
	}
	if upd.DispatcherPercentage.Valid {
		builder = builder.Set("dispatcher_percentage", upd.DispatcherPercentage.Float64)
	}
	if upd.DispatcherRewardAmount.Valid {
		builder = builder.Set("dispatcher_reward_amount", upd.DispatcherRewardAmount.Float64)
	}
	if upd.DispatcherRewardApplied.Valid {
		builder = builder.Set("dispatcher_reward_applied", upd.DispatcherRewardApplied.Bool)
	}
	if upd.ReviewReturns != nil {
		payload, err := json.Marshal(upd.ReviewReturns)
		if err != nil {
			return fmt.Errorf("ошибка сериализации review_returns: %w", err)
		}
		builder = builder.Set("review_returns", payload)
	}

	query, args, err := builder.Where(sq.Eq{"id_zadachi": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса обновления задачи: %w", err)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, q Querier, id int64) error {
	if q == nil {
		q = r.storage
	}
	tag, err := q.Exec(ctx, `DELETE FROM zadachi WHERE id_zadachi = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

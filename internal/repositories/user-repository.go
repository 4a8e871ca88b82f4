package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-system/internal/entities"
	"task-system/internal/ledger"
	apperrors "task-system/pkg/errors"
)

type UserRepositoryInterface interface {
	FindAccount(ctx context.Context, q Querier, userUUID string) (*entities.User, error)
	FindAccountForUpdate(ctx context.Context, tx pgx.Tx, userUUID string) (*entities.User, error)
	UpdateAccount(ctx context.Context, q Querier, userUUID string, snapshot ledger.Snapshot) error
	FindNameByUUID(ctx context.Context, userUUID string) (string, error)
	GetAccounts(ctx context.Context) ([]entities.User, error)
	ApplyCompletedTaskPenalty(ctx context.Context, q Querier, userUUID string, taskID int64, multiplier float64) (float64, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

func scanAccount(row rowScanner) (*entities.User, error) {
	var u entities.User
	var completedRaw []byte

	err := row.Scan(&u.ID, &u.UUIDUser, &u.FullName, &u.IsAdmin, &u.Salary, &completedRaw, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(completedRaw) > 0 {
		if err := json.Unmarshal(completedRaw, &u.CompletedTasks); err != nil {
			return nil, fmt.Errorf("ошибка разбора completed_tasks: %w", err)
		}
	}
	return &u, nil
}

const accountColumns = `id, uuid_user, full_name, is_admin, salary, completed_tasks, created_at, updated_at`

func (r *UserRepository) FindAccount(ctx context.Context, q Querier, userUUID string) (*entities.User, error) {
	if q == nil {
		q = r.storage
	}
	query := fmt.Sprintf(`SELECT %s FROM users WHERE uuid_user = $1`, accountColumns)
	user, err := scanAccount(q.QueryRow(ctx, query, userUUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования счёта пользователя: %w", err)
	}
	return user, nil
}

// FindAccountForUpdate блокирует строку счёта на время транзакции:
// чтение и запись баланса образуют единый read-modify-write.
func (r *UserRepository) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, userUUID string) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE uuid_user = $1 FOR UPDATE`, accountColumns)
	user, err := scanAccount(tx.QueryRow(ctx, query, userUUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования счёта пользователя (FOR UPDATE): %w", err)
	}
	return user, nil
}

// UpdateAccount пишет баланс и журнал выплат одной мутацией.
func (r *UserRepository) UpdateAccount(ctx context.Context, q Querier, userUUID string, snapshot ledger.Snapshot) error {
	if q == nil {
		q = r.storage
	}

	entries := snapshot.CompletedTasks
	if entries == nil {
		entries = []entities.CompletedTaskEntry{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("ошибка сериализации completed_tasks: %w", err)
	}

	tag, err := q.Exec(ctx,
		`UPDATE users SET salary = $1, completed_tasks = $2, updated_at = NOW() WHERE uuid_user = $3`,
		snapshot.Salary, payload, userUUID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления счёта пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) FindNameByUUID(ctx context.Context, userUUID string) (string, error) {
	var fullName string
	err := r.storage.QueryRow(ctx, `SELECT full_name FROM users WHERE uuid_user = $1`, userUUID).Scan(&fullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("ошибка поиска имени пользователя: %w", err)
	}
	return fullName, nil
}

func (r *UserRepository) GetAccounts(ctx context.Context) ([]entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY full_name`, accountColumns)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка счетов: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		user, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования счёта в списке: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// ApplyCompletedTaskPenalty вызывает хранимую процедуру: флаг has_penalty и
// списание payment * multiplier применяются в одной операции на стороне БД.
// Возвращает фактически списанную сумму (0 - если запись не найдена или
// штраф уже стоял).
func (r *UserRepository) ApplyCompletedTaskPenalty(ctx context.Context, q Querier, userUUID string, taskID int64, multiplier float64) (float64, error) {
	if q == nil {
		q = r.storage
	}
	var applied float64
	err := q.QueryRow(ctx,
		`SELECT update_completed_task_penalty($1, $2, $3)`,
		userUUID, taskID, multiplier,
	).Scan(&applied)
	if err != nil {
		return 0, fmt.Errorf("ошибка вызова update_completed_task_penalty: %w", err)
	}
	return applied, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-system/internal/entities"
	apperrors "task-system/pkg/errors"
)

type ZakazRepositoryInterface interface {
	FindZakaz(ctx context.Context, q Querier, id int64) (*entities.Zakaz, error)
	RemoveTaskFromZakaz(ctx context.Context, zakazID, taskID int64) error
}

type ZakazRepository struct {
	storage *pgxpool.Pool
}

func NewZakazRepository(storage *pgxpool.Pool) ZakazRepositoryInterface {
	return &ZakazRepository{storage: storage}
}

func (r *ZakazRepository) FindZakaz(ctx context.Context, q Querier, id int64) (*entities.Zakaz, error) {
	if q == nil {
		q = r.storage
	}
	var z entities.Zakaz
	err := q.QueryRow(ctx,
		`SELECT id_zakaza, title, status, vse_zadachi, created_at, updated_at FROM zakazi WHERE id_zakaza = $1`,
		id,
	).Scan(&z.IDZakaza, &z.Title, &z.Status, &z.VseZadachi, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования заказа: %w", err)
	}
	return &z, nil
}

// RemoveTaskFromZakaz убирает задачу из vse_zadachi. Чтение и запись идут в
// одной транзакции с блокировкой строки: параллельные правки списка другими
// операциями не затираются слепой перезаписью.
func (r *ZakazRepository) RemoveTaskFromZakaz(ctx context.Context, zakazID, taskID int64) (err error) {
	tx, err := r.storage.Begin(ctx)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var current []int64
	err = tx.QueryRow(ctx, `SELECT vse_zadachi FROM zakazi WHERE id_zakaza = $1 FOR UPDATE`, zakazID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("не удалось прочитать список задач заказа: %w", err)
	}

	updated := make([]int64, 0, len(current))
	for _, id := range current {
		if id != taskID {
			updated = append(updated, id)
		}
	}

	if _, err = tx.Exec(ctx,
		`UPDATE zakazi SET vse_zadachi = $1, updated_at = NOW() WHERE id_zakaza = $2`,
		updated, zakazID,
	); err != nil {
		return fmt.Errorf("ошибка обновления списка задач заказа: %w", err)
	}

	return tx.Commit(ctx)
}

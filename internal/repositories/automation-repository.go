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

type AutomationRepositoryInterface interface {
	FindByStage(ctx context.Context, stageID string) (*entities.AutomationSetting, error)
}

type AutomationRepository struct {
	storage *pgxpool.Pool
}

func NewAutomationRepository(storage *pgxpool.Pool) AutomationRepositoryInterface {
	return &AutomationRepository{storage: storage}
}

func (r *AutomationRepository) FindByStage(ctx context.Context, stageID string) (*entities.AutomationSetting, error) {
	var s entities.AutomationSetting
	err := r.storage.QueryRow(ctx,
		`SELECT id, stage_id, dispatcher_id, dispatcher_percentage FROM automation_settings WHERE stage_id = $1`,
		stageID,
	).Scan(&s.ID, &s.StageID, &s.DispatcherID, &s.DispatcherPercentage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска правила автоматизации: %w", err)
	}
	return &s, nil
}

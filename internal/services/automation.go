package services

import (
	"context"

	"go.uber.org/zap"

	"task-system/internal/repositories"
)

// DispatcherAssignment - результат подбора проверяющего для задачи.
type DispatcherAssignment struct {
	DispatcherID         string
	DispatcherPercentage float64
}

type AutomationServiceInterface interface {
	ResolveDispatcher(ctx context.Context, zakazID int64) *DispatcherAssignment
}

// AutomationService подбирает диспетчера по цепочке заказ -> этап -> правило.
// Подбор не критичен для отправки на проверку, поэтому любая осечка в цепочке
// (нет заказа, нет правила, ошибка чтения) даёт nil, а не ошибку.
type AutomationService struct {
	zakazRepo      repositories.ZakazRepositoryInterface
	automationRepo repositories.AutomationRepositoryInterface
	logger         *zap.Logger
}

func NewAutomationService(
	zakazRepo repositories.ZakazRepositoryInterface,
	automationRepo repositories.AutomationRepositoryInterface,
	logger *zap.Logger,
) AutomationServiceInterface {
	return &AutomationService{
		zakazRepo:      zakazRepo,
		automationRepo: automationRepo,
		logger:         logger,
	}
}

func (s *AutomationService) ResolveDispatcher(ctx context.Context, zakazID int64) *DispatcherAssignment {
	zakaz, err := s.zakazRepo.FindZakaz(ctx, nil, zakazID)
	if err != nil {
		s.logger.Warn("автоназначение: заказ не найден",
			zap.Int64("zakazId", zakazID), zap.Error(err))
		return nil
	}

	setting, err := s.automationRepo.FindByStage(ctx, zakaz.Status)
	if err != nil {
		s.logger.Warn("автоназначение: правило для этапа не найдено",
			zap.String("stage", zakaz.Status), zap.Error(err))
		return nil
	}

	return &DispatcherAssignment{
		DispatcherID:         setting.DispatcherID,
		DispatcherPercentage: setting.DispatcherPercentage,
	}
}

package services

import (
	"context"

	"go.uber.org/zap"

	"task-system/internal/dto"
	"task-system/internal/repositories"
)

type ReportServiceInterface interface {
	GetPayrollReport(ctx context.Context) ([]dto.PayrollRowDTO, error)
}

type ReportService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewReportService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &ReportService{userRepo: userRepo, logger: logger}
}

// GetPayrollReport собирает сводку выплат по каждому сотруднику из его
// журнала начислений. TotalPaid - сумма начислений без учёта штрафов,
// Salary - фактический баланс после всех списаний.
func (s *ReportService) GetPayrollReport(ctx context.Context) ([]dto.PayrollRowDTO, error) {
	users, err := s.userRepo.GetAccounts(ctx)
	if err != nil {
		s.logger.Error("не удалось загрузить счета для отчёта", zap.Error(err))
		return nil, err
	}

	rows := make([]dto.PayrollRowDTO, 0, len(users))
	for _, user := range users {
		row := dto.PayrollRowDTO{
			FullName: user.FullName,
			Salary:   user.Salary,
		}
		for _, entry := range user.CompletedTasks {
			row.CompletedCount++
			row.TotalPaid += entry.Payment
			if entry.HasPenalty {
				row.PenaltyCount++
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

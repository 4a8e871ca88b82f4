package dto

import (
	"github.com/aarondl/null/v8"

	"task-system/internal/entities"
)

// ApplyPenaltyDTO - подтверждение штрафа: вызывающая сторона обязана вернуть
// ровно ту сумму, которую ей показал движок (dispatcher_reward_amount * 2).
type ApplyPenaltyDTO struct {
	ConfirmedAmount float64 `json:"confirmed_amount" validate:"required,gt=0"`
}

// ReturnForReworkDTO - возврат задачи на доработку с комментарием диспетчера.
type ReturnForReworkDTO struct {
	Comment string `json:"comment" validate:"required,min=3"`
}

// TaskUpdate - частичное обновление задачи. Невалидные поля не трогаются,
// весь набор применяется к хранилищу одной мутацией.
type TaskUpdate struct {
	Status                  null.String
	IsLocked                null.Bool
	ChecklistPhoto          null.String
	OriginalDeadline        null.Time
	CompletedAt             null.Time
	ExecutionTimeSeconds    null.Int64
	PenaltyApplied          null.Bool
	DispatcherID            null.String
	DispatcherPercentage    null.Float64
	DispatcherRewardAmount  null.Float64
	DispatcherRewardApplied null.Bool
	ReviewReturns           []entities.ReviewReturn
}

// IsEmpty сообщает, есть ли в наборе хоть одно поле для записи.
func (u *TaskUpdate) IsEmpty() bool {
	return !u.Status.Valid && !u.IsLocked.Valid && !u.ChecklistPhoto.Valid &&
		!u.OriginalDeadline.Valid && !u.CompletedAt.Valid && !u.ExecutionTimeSeconds.Valid &&
		!u.PenaltyApplied.Valid && !u.DispatcherID.Valid && !u.DispatcherPercentage.Valid &&
		!u.DispatcherRewardAmount.Valid && !u.DispatcherRewardApplied.Valid &&
		u.ReviewReturns == nil
}

// TaskResponseDTO - задача плюс производные поля карточки.
type TaskResponseDTO struct {
	entities.Task
	DispatcherName null.String `json:"dispatcher_name,omitempty"`
	IsOverdue      bool        `json:"is_overdue"`
	// Зарплата с учётом штрафа 10% за просрочку (показывается в карточке,
	// на начисления не влияет).
	EffectiveSalary null.Float64 `json:"effective_salary,omitempty"`
}

// PenaltyResponseDTO - результат применения штрафа.
type PenaltyResponseDTO struct {
	PenaltyAmount float64 `json:"penalty_amount"`
}

// TaskFilter - параметры списка задач.
type TaskFilter struct {
	ZakazID  null.Int64
	Status   null.String
	Priority null.String
	Limit    uint64
	Offset   uint64
}

package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Статусы задачи.
const (
	TaskStatusPending     = "pending"
	TaskStatusInProgress  = "in_progress"
	TaskStatusUnderReview = "under_review"
	TaskStatusCompleted   = "completed"
)

// Приоритеты задачи.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// ReviewReturn - одна запись истории возвратов задачи на доработку.
type ReviewReturn struct {
	ReturnNumber int       `json:"return_number"`
	ReturnedAt   time.Time `json:"returned_at"`
	Comment      string    `json:"comment"`
}

// Task - оплачиваемая единица работы внутри заказа.
type Task struct {
	IDZadachi   int64       `json:"id_zadachi" db:"id_zadachi"`
	UUIDZadachi string      `json:"uuid_zadachi" db:"uuid_zadachi"`
	Title       string      `json:"title" db:"title"`
	Description null.String `json:"description,omitempty" db:"description"`
	Status      string      `json:"status" db:"status"`
	Priority    string      `json:"priority" db:"priority"`

	DueDate              null.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	CompletedAt          null.Time `json:"completed_at,omitempty" db:"completed_at"`
	ExecutionTimeSeconds null.Int64 `json:"execution_time_seconds,omitempty" db:"execution_time_seconds"`

	Salary         null.Float64 `json:"salary,omitempty" db:"salary"`
	IsLocked       bool         `json:"is_locked" db:"is_locked"`
	ChecklistPhoto null.String  `json:"checklist_photo,omitempty" db:"checklist_photo"`

	// Снимок срока на момент первой отправки на проверку: последующие правки
	// дедлайна не должны задним числом снимать право на штраф.
	OriginalDeadline null.Time `json:"original_deadline,omitempty" db:"original_deadline"`

	PenaltyApplied bool           `json:"penalty_applied" db:"penalty_applied"`
	ReviewReturns  []ReviewReturn `json:"review_returns" db:"review_returns"`

	ZakazID           null.Int64  `json:"zakaz_id,omitempty" db:"zakaz_id"`
	ResponsibleUserID null.String `json:"responsible_user_id,omitempty" db:"responsible_user_id"`

	DispatcherID            null.String  `json:"dispatcher_id,omitempty" db:"dispatcher_id"`
	DispatcherPercentage    null.Float64 `json:"dispatcher_percentage,omitempty" db:"dispatcher_percentage"`
	DispatcherRewardAmount  null.Float64 `json:"dispatcher_reward_amount,omitempty" db:"dispatcher_reward_amount"`
	DispatcherRewardApplied bool         `json:"dispatcher_reward_applied" db:"dispatcher_reward_applied"`
}

// IsOverdue сообщает, просрочена ли незавершённая задача.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusCompleted && t.DueDate.Valid && t.DueDate.Time.Before(now)
}

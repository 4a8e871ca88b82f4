package entities

import "time"

// CompletedTaskEntry - запись журнала выплат пользователя по одной задаче.
// Хранится в колонке completed_tasks (jsonb-массив).
type CompletedTaskEntry struct {
	TaskID     int64   `json:"task_id"`
	Payment    float64 `json:"payment"`
	HasPenalty bool    `json:"has_penalty"`
}

// User - участник расчётов: исполнитель или диспетчер.
type User struct {
	ID       uint64 `json:"id" db:"id"`
	UUIDUser string `json:"uuid_user" db:"uuid_user"`
	FullName string `json:"full_name" db:"full_name"`
	IsAdmin  bool   `json:"is_admin" db:"is_admin"`

	// Баланс не бывает отрицательным: любое списание отсекается нулём.
	Salary         float64              `json:"salary" db:"salary"`
	CompletedTasks []CompletedTaskEntry `json:"completed_tasks" db:"completed_tasks"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

package entities

import "time"

// Zakaz - заказ, контейнер задач. Ядро не владеет заказом целиком:
// оно читает статус и правит только список vse_zadachi.
type Zakaz struct {
	IDZakaza   int64     `json:"id_zakaza" db:"id_zakaza"`
	Title      string    `json:"title" db:"title"`
	Status     string    `json:"status" db:"status"`
	VseZadachi []int64   `json:"vse_zadachi" db:"vse_zadachi"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

package dto

// PayrollRowDTO - строка зарплатного отчёта по участнику.
type PayrollRowDTO struct {
	FullName       string  `json:"full_name"`
	Salary         float64 `json:"salary"`
	CompletedCount int     `json:"completed_count"`
	PenaltyCount   int     `json:"penalty_count"`
	TotalPaid      float64 `json:"total_paid"`
}

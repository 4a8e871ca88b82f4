package entities

// AutomationSetting - правило автоназначения диспетчера для этапа заказа.
type AutomationSetting struct {
	ID                   int64   `json:"id" db:"id"`
	StageID              string  `json:"stage_id" db:"stage_id"`
	DispatcherID         string  `json:"dispatcher_id" db:"dispatcher_id"`
	DispatcherPercentage float64 `json:"dispatcher_percentage" db:"dispatcher_percentage"`
}

// Package ledger содержит чистую арифметику сверки баланса и журнала выплат
// участника. Все функции работают со снимками: читают текущее состояние и
// возвращают следующее, ничего не записывая. Запись - забота репозиториев.
//
// Два инварианта, на которых всё держится:
//   - баланс не бывает отрицательным, любое списание отсекается нулём;
//   - инструкция, привязанная к записи журнала, без совпадающей записи
//     не применяется вовсе (в том числе её денежная часть) - так повторный
//     вызов после частичного сбоя ничего не задваивает.
package ledger

import "task-system/internal/entities"

// Snapshot - снимок счёта участника: баланс и журнал выплат.
type Snapshot struct {
	Salary         float64
	CompletedTasks []entities.CompletedTaskEntry
}

// Instruction - одна корректировка: сумма и, опционально, смена флага штрафа
// у записи журнала с данным task_id.
type Instruction struct {
	TaskID     int64
	Delta      float64
	SetPenalty *bool
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func cloneEntries(entries []entities.CompletedTaskEntry) []entities.CompletedTaskEntry {
	out := make([]entities.CompletedTaskEntry, len(entries))
	copy(out, entries)
	return out
}

func findEntry(entries []entities.CompletedTaskEntry, taskID int64) int {
	for i := range entries {
		if entries[i].TaskID == taskID {
			return i
		}
	}
	return -1
}

// Apply применяет инструкцию к снимку. Возвращает следующий снимок и признак,
// была ли инструкция применена. Без совпадающей записи журнала - no-op;
// смена флага в уже выставленное значение - тоже no-op.
func Apply(s Snapshot, ins Instruction) (Snapshot, bool) {
	idx := findEntry(s.CompletedTasks, ins.TaskID)
	if idx < 0 {
		return s, false
	}

	if ins.SetPenalty != nil && s.CompletedTasks[idx].HasPenalty == *ins.SetPenalty {
		return s, false
	}

	next := Snapshot{
		Salary:         clamp(s.Salary + ins.Delta),
		CompletedTasks: cloneEntries(s.CompletedTasks),
	}
	if ins.SetPenalty != nil {
		next.CompletedTasks[idx].HasPenalty = *ins.SetPenalty
	}
	return next, true
}

// RemoveEntry удаляет запись журнала по task_id и применяет delta к балансу.
// Без совпадающей записи - no-op: повторное списание при ретрае невозможно.
func RemoveEntry(s Snapshot, taskID int64, delta float64) (Snapshot, bool) {
	idx := findEntry(s.CompletedTasks, taskID)
	if idx < 0 {
		return s, false
	}

	next := Snapshot{
		Salary:         clamp(s.Salary + delta),
		CompletedTasks: append(cloneEntries(s.CompletedTasks[:idx]), s.CompletedTasks[idx+1:]...),
	}
	return next, true
}

// AppendEntry начисляет выплату и добавляет запись журнала. Если запись по
// этой задаче уже есть, начисление не повторяется.
func AppendEntry(s Snapshot, entry entities.CompletedTaskEntry) (Snapshot, bool) {
	if findEntry(s.CompletedTasks, entry.TaskID) >= 0 {
		return s, false
	}

	next := Snapshot{
		Salary:         clamp(s.Salary + entry.Payment),
		CompletedTasks: append(cloneEntries(s.CompletedTasks), entry),
	}
	return next, true
}

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-system/internal/entities"
	"task-system/pkg/utils"
)

func snapshot(salary float64, entries ...entities.CompletedTaskEntry) Snapshot {
	return Snapshot{Salary: salary, CompletedTasks: entries}
}

func TestApply_PenaltyDebit(t *testing.T) {
	s := snapshot(1000,
		entities.CompletedTaskEntry{TaskID: 7, Payment: 100},
		entities.CompletedTaskEntry{TaskID: 8, Payment: 50},
	)

	next, applied := Apply(s, Instruction{TaskID: 7, Delta: -200, SetPenalty: utils.ToPtr(true)})
	require.True(t, applied)
	assert.Equal(t, 800.0, next.Salary)
	assert.True(t, next.CompletedTasks[0].HasPenalty, "флаг штрафа должен быть выставлен у записи задачи 7")
	assert.False(t, next.CompletedTasks[1].HasPenalty, "соседняя запись не должна быть затронута")

	// Исходный снимок не изменился
	assert.Equal(t, 1000.0, s.Salary)
	assert.False(t, s.CompletedTasks[0].HasPenalty)
}

func TestApply_ClampAtZero(t *testing.T) {
	s := snapshot(150, entities.CompletedTaskEntry{TaskID: 7, Payment: 100})

	next, applied := Apply(s, Instruction{TaskID: 7, Delta: -200, SetPenalty: utils.ToPtr(true)})
	require.True(t, applied)
	assert.Equal(t, 0.0, next.Salary, "списание больше баланса отсекается нулём")
}

func TestApply_NoMatchingEntry(t *testing.T) {
	s := snapshot(500, entities.CompletedTaskEntry{TaskID: 8, Payment: 100})

	next, applied := Apply(s, Instruction{TaskID: 7, Delta: -200, SetPenalty: utils.ToPtr(true)})
	assert.False(t, applied, "без совпадающей записи инструкция не применяется")
	assert.Equal(t, 500.0, next.Salary, "баланс не должен меняться без записи")
}

func TestApply_IdempotentFlagChange(t *testing.T) {
	s := snapshot(800, entities.CompletedTaskEntry{TaskID: 7, Payment: 100, HasPenalty: true})

	// Повторное применение штрафа - no-op, деньги не списываются второй раз.
	next, applied := Apply(s, Instruction{TaskID: 7, Delta: -200, SetPenalty: utils.ToPtr(true)})
	assert.False(t, applied)
	assert.Equal(t, 800.0, next.Salary)

	// Снятие штрафа применяется ровно один раз.
	next, applied = Apply(s, Instruction{TaskID: 7, Delta: 200, SetPenalty: utils.ToPtr(false)})
	require.True(t, applied)
	assert.Equal(t, 1000.0, next.Salary)

	again, applied := Apply(next, Instruction{TaskID: 7, Delta: 200, SetPenalty: utils.ToPtr(false)})
	assert.False(t, applied, "повторное снятие штрафа не должно начислять деньги ещё раз")
	assert.Equal(t, 1000.0, again.Salary)
}

func TestPenaltyRoundTrip(t *testing.T) {
	// Штраф 100*2 и его последующая отмена возвращают исходный баланс.
	s := snapshot(1000, entities.CompletedTaskEntry{TaskID: 7, Payment: 100})

	penalized, applied := Apply(s, Instruction{TaskID: 7, Delta: -200, SetPenalty: utils.ToPtr(true)})
	require.True(t, applied)
	assert.Equal(t, 800.0, penalized.Salary)

	restored, applied := Apply(penalized, Instruction{TaskID: 7, Delta: 200, SetPenalty: utils.ToPtr(false)})
	require.True(t, applied)
	assert.Equal(t, 1000.0, restored.Salary)
	assert.False(t, restored.CompletedTasks[0].HasPenalty)
}

func TestPenaltyRoundTrip_ClampBoundary(t *testing.T) {
	// B=150, штраф 200: после отсечки баланс 0, возврат даёт 200, а не 350 -
	// (точный round-trip при сработавшей отсечке невозможен).
	s := snapshot(150, entities.CompletedTaskEntry{TaskID: 7, Payment: 100})

	penalized, applied := Apply(s, Instruction{TaskID: 7, Delta: -200, SetPenalty: utils.ToPtr(true)})
	require.True(t, applied)
	assert.Equal(t, 0.0, penalized.Salary)

	restored, applied := Apply(penalized, Instruction{TaskID: 7, Delta: 200, SetPenalty: utils.ToPtr(false)})
	require.True(t, applied)
	assert.Equal(t, 200.0, restored.Salary)
}

func TestRemoveEntry(t *testing.T) {
	s := snapshot(700,
		entities.CompletedTaskEntry{TaskID: 7, Payment: 500},
		entities.CompletedTaskEntry{TaskID: 8, Payment: 200},
	)

	next, applied := RemoveEntry(s, 7, -500)
	require.True(t, applied)
	assert.Equal(t, 200.0, next.Salary)
	require.Len(t, next.CompletedTasks, 1)
	assert.Equal(t, int64(8), next.CompletedTasks[0].TaskID)

	// Симуляция ретрая: записи уже нет, повторное списание не происходит.
	again, applied := RemoveEntry(next, 7, -500)
	assert.False(t, applied)
	assert.Equal(t, 200.0, again.Salary, "повторное удаление не должно списывать деньги второй раз")
}

func TestRemoveEntry_ClampAtZero(t *testing.T) {
	s := snapshot(300, entities.CompletedTaskEntry{TaskID: 7, Payment: 500})

	next, applied := RemoveEntry(s, 7, -500)
	require.True(t, applied)
	assert.Equal(t, 0.0, next.Salary)
	assert.Empty(t, next.CompletedTasks)
}

func TestAppendEntry(t *testing.T) {
	s := snapshot(0)

	next, applied := AppendEntry(s, entities.CompletedTaskEntry{TaskID: 7, Payment: 1000})
	require.True(t, applied)
	assert.Equal(t, 1000.0, next.Salary)
	require.Len(t, next.CompletedTasks, 1)

	// Повторное начисление по той же задаче не проходит.
	again, applied := AppendEntry(next, entities.CompletedTaskEntry{TaskID: 7, Payment: 1000})
	assert.False(t, applied)
	assert.Equal(t, 1000.0, again.Salary)
	assert.Len(t, again.CompletedTasks, 1)
}

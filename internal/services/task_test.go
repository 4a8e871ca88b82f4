package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"task-system/internal/dto"
	"task-system/internal/entities"
	"task-system/internal/ledger"
	"task-system/internal/repositories"
	apperrors "task-system/pkg/errors"
)

// --- фейки хранилищ ---

type fakeTaskRepo struct {
	tasks      map[int64]*entities.Task
	updates    []dto.TaskUpdate
	deleted    []int64
	findCalls  int
	updateErr  error
	findForUpd int
}

func newFakeTaskRepo(tasks ...*entities.Task) *fakeTaskRepo {
	m := make(map[int64]*entities.Task)
	for _, t := range tasks {
		m[t.IDZadachi] = t
	}
	return &fakeTaskRepo{tasks: m}
}

func (f *fakeTaskRepo) FindTask(ctx context.Context, q repositories.Querier, id int64) (*entities.Task, error) {
	f.findCalls++
	t, ok := f.tasks[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskRepo) FindTaskForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*entities.Task, error) {
	f.findForUpd++
	return f.FindTask(ctx, nil, id)
}

func (f *fakeTaskRepo) GetTasks(ctx context.Context, filter dto.TaskFilter) ([]entities.Task, uint64, error) {
	result := make([]entities.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		result = append(result, *t)
	}
	return result, uint64(len(result)), nil
}

func (f *fakeTaskRepo) UpdateTask(ctx context.Context, q repositories.Querier, id int64, upd dto.TaskUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	t, ok := f.tasks[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	f.updates = append(f.updates, upd)
	if upd.Status.Valid {
		t.Status = upd.Status.String
	}
	if upd.IsLocked.Valid {
		t.IsLocked = upd.IsLocked.Bool
	}
	if upd.ChecklistPhoto.Valid {
		t.ChecklistPhoto = upd.ChecklistPhoto
	}
	if upd.OriginalDeadline.Valid {
		t.OriginalDeadline = upd.OriginalDeadline
	}
	if upd.DispatcherID.Valid {
		t.DispatcherID = upd.DispatcherID
	}
	if upd.DispatcherPercentage.Valid {
		t.DispatcherPercentage = upd.DispatcherPercentage
	}
	if upd.DispatcherRewardAmount.Valid {
		t.DispatcherRewardAmount = upd.DispatcherRewardAmount
	}
	if upd.DispatcherRewardApplied.Valid {
		t.DispatcherRewardApplied = upd.DispatcherRewardApplied.Bool
	}
	if upd.PenaltyApplied.Valid {
		t.PenaltyApplied = upd.PenaltyApplied.Bool
	}
	if upd.CompletedAt.Valid {
		t.CompletedAt = upd.CompletedAt
	}
	if upd.ReviewReturns != nil {
		t.ReviewReturns = upd.ReviewReturns
	}
	return nil
}

func (f *fakeTaskRepo) DeleteTask(ctx context.Context, q repositories.Querier, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.tasks, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeUserRepo struct {
	users       map[string]*entities.User
	penaltyFunc func(taskID int64, multiplier float64) float64
	calls       int
}

func newFakeUserRepo(users ...*entities.User) *fakeUserRepo {
	m := make(map[string]*entities.User)
	for _, u := range users {
		m[u.UUIDUser] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) FindAccount(ctx context.Context, q repositories.Querier, uuid string) (*entities.User, error) {
	u, ok := f.users[uuid]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	cp.CompletedTasks = append([]entities.CompletedTaskEntry{}, u.CompletedTasks...)
	return &cp, nil
}

func (f *fakeUserRepo) FindAccountForUpdate(ctx context.Context, tx pgx.Tx, uuid string) (*entities.User, error) {
	return f.FindAccount(ctx, nil, uuid)
}

func (f *fakeUserRepo) UpdateAccount(ctx context.Context, q repositories.Querier, uuid string, snapshot ledger.Snapshot) error {
	f.calls++
	u, ok := f.users[uuid]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Salary = snapshot.Salary
	u.CompletedTasks = snapshot.CompletedTasks
	return nil
}

func (f *fakeUserRepo) FindNameByUUID(ctx context.Context, uuid string) (string, error) {
	u, ok := f.users[uuid]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return u.FullName, nil
}

func (f *fakeUserRepo) GetAccounts(ctx context.Context) ([]entities.User, error) {
	result := make([]entities.User, 0, len(f.users))
	for _, u := range f.users {
		result = append(result, *u)
	}
	return result, nil
}

// Воспроизводит семантику функции БД: находит запись без штрафа, ставит
// флаг и списывает payment * multiplier, не опуская баланс ниже нуля.
func (f *fakeUserRepo) ApplyCompletedTaskPenalty(ctx context.Context, q repositories.Querier, uuid string, taskID int64, multiplier float64) (float64, error) {
	u, ok := f.users[uuid]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	for i, entry := range u.CompletedTasks {
		if entry.TaskID == taskID && !entry.HasPenalty {
			u.CompletedTasks[i].HasPenalty = true
			penalty := entry.Payment * multiplier
			u.Salary = u.Salary - penalty
			if u.Salary < 0 {
				u.Salary = 0
			}
			return penalty, nil
		}
	}
	return 0, nil
}

type fakeZakazRepo struct {
	zakaz   *entities.Zakaz
	removed [][2]int64
}

func (f *fakeZakazRepo) FindZakaz(ctx context.Context, q repositories.Querier, id int64) (*entities.Zakaz, error) {
	if f.zakaz == nil || f.zakaz.IDZakaza != id {
		return nil, apperrors.ErrNotFound
	}
	return f.zakaz, nil
}

func (f *fakeZakazRepo) RemoveTaskFromZakaz(ctx context.Context, zakazID, taskID int64) error {
	f.removed = append(f.removed, [2]int64{zakazID, taskID})
	return nil
}

type fakeAutomation struct {
	assignment *DispatcherAssignment
}

func (f *fakeAutomation) ResolveDispatcher(ctx context.Context, zakazID int64) *DispatcherAssignment {
	return f.assignment
}

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeFileStorage struct {
	saved   []string
	saveErr error
}

func (f *fakeFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	url := "/uploads/" + prefix + "/" + originalFileName
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeFileStorage) Delete(fileURL string) error { return nil }

type fakeCache struct {
	delKeys []string
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("cache miss")
}
func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	f.delKeys = append(f.delKeys, keys...)
	return nil
}

// --- сборка сервиса ---

type taskServiceFixture struct {
	svc       TaskServiceInterface
	taskRepo  *fakeTaskRepo
	userRepo  *fakeUserRepo
	zakazRepo *fakeZakazRepo
	storage   *fakeFileStorage
	cache     *fakeCache
}

func newTaskServiceFixture(auto *DispatcherAssignment, tasks []*entities.Task, users []*entities.User) *taskServiceFixture {
	f := &taskServiceFixture{
		taskRepo:  newFakeTaskRepo(tasks...),
		userRepo:  newFakeUserRepo(users...),
		zakazRepo: &fakeZakazRepo{},
		storage:   &fakeFileStorage{},
		cache:     &fakeCache{},
	}
	f.svc = NewTaskService(
		f.taskRepo, f.userRepo, f.zakazRepo,
		&fakeAutomation{assignment: auto},
		&fakeTxManager{}, f.storage, f.cache,
		zap.NewNop(),
	)
	return f
}

func inProgressTask(id int64) *entities.Task {
	return &entities.Task{
		IDZadachi:   id,
		UUIDZadachi: "11111111-1111-1111-1111-111111111111",
		Title:       "Монтаж вывески",
		Status:      entities.TaskStatusInProgress,
		Salary:      null.Float64From(1000),
		CreatedAt:   time.Now().Add(-2 * time.Hour),
	}
}

// --- SubmitForReview ---

func TestSubmitForReview_WithoutPhoto(t *testing.T) {
	f := newTaskServiceFixture(nil, []*entities.Task{inProgressTask(1)}, nil)

	err := f.svc.SubmitForReview(context.Background(), 1, nil, "")

	assert.ErrorIs(t, err, apperrors.ErrMissingPhoto, "без фото должен быть отказ")
	assert.Zero(t, f.taskRepo.findCalls, "без фото не должно быть ни одного обращения к хранилищу")
	assert.Empty(t, f.storage.saved, "без фото загрузки быть не должно")
}

func TestSubmitForReview_Success(t *testing.T) {
	task := inProgressTask(1)
	task.DueDate = null.TimeFrom(time.Now().Add(24 * time.Hour))
	task.ZakazID = null.Int64From(7)
	auto := &DispatcherAssignment{DispatcherID: "disp-uuid", DispatcherPercentage: 10}
	f := newTaskServiceFixture(auto, []*entities.Task{task}, nil)

	err := f.svc.SubmitForReview(context.Background(), 1, strings.NewReader("jpeg"), "photo.jpg")

	require.NoError(t, err)
	require.Len(t, f.taskRepo.updates, 1, "вся мутация задачи должна идти одним обновлением")
	upd := f.taskRepo.updates[0]
	assert.Equal(t, entities.TaskStatusUnderReview, upd.Status.String)
	assert.True(t, upd.IsLocked.Bool, "после отправки задача блокируется")
	assert.True(t, upd.ChecklistPhoto.Valid, "ссылка на фото должна сохраниться")
	assert.Equal(t, task.DueDate, upd.OriginalDeadline, "исходный срок фиксируется при первой отправке")
	assert.Equal(t, "disp-uuid", upd.DispatcherID.String, "диспетчер назначается по правилу автоматизации")
	assert.Equal(t, float64(10), upd.DispatcherPercentage.Float64)
	assert.Contains(t, f.cache.delKeys, "zadachi", "списочный кеш должен сброситься")
}

func TestSubmitForReview_LockedTask(t *testing.T) {
	task := inProgressTask(1)
	task.IsLocked = true
	f := newTaskServiceFixture(nil, []*entities.Task{task}, nil)

	err := f.svc.SubmitForReview(context.Background(), 1, strings.NewReader("jpeg"), "photo.jpg")

	require.Error(t, err)
	assert.Empty(t, f.storage.saved, "заблокированная задача не должна загружать фото")
	assert.Empty(t, f.taskRepo.updates)
}

func TestSubmitForReview_UploadFailure(t *testing.T) {
	f := newTaskServiceFixture(nil, []*entities.Task{inProgressTask(1)}, nil)
	f.storage.saveErr = errors.New("storage unavailable")

	err := f.svc.SubmitForReview(context.Background(), 1, strings.NewReader("jpeg"), "photo.jpg")

	assert.ErrorIs(t, err, apperrors.ErrPhotoUpload)
	assert.Empty(t, f.taskRepo.updates, "при сбое загрузки задача не меняется")
}

func TestSubmitForReview_KeepsExistingDispatcherAndDeadline(t *testing.T) {
	task := inProgressTask(1)
	task.DueDate = null.TimeFrom(time.Now().Add(24 * time.Hour))
	task.OriginalDeadline = null.TimeFrom(time.Now().Add(-24 * time.Hour))
	task.DispatcherID = null.StringFrom("existing-disp")
	task.ZakazID = null.Int64From(7)
	auto := &DispatcherAssignment{DispatcherID: "other-disp", DispatcherPercentage: 15}
	f := newTaskServiceFixture(auto, []*entities.Task{task}, nil)

	err := f.svc.SubmitForReview(context.Background(), 1, strings.NewReader("jpeg"), "photo.jpg")

	require.NoError(t, err)
	upd := f.taskRepo.updates[0]
	assert.False(t, upd.DispatcherID.Valid, "назначенный диспетчер не перезаписывается")
	assert.False(t, upd.OriginalDeadline.Valid, "зафиксированный срок не перезаписывается")
}

// --- ApproveTask ---

func TestApproveTask_CreditsWorkerAndDispatcher(t *testing.T) {
	task := inProgressTask(1)
	task.Status = entities.TaskStatusUnderReview
	task.ResponsibleUserID = null.StringFrom("worker-uuid")
	task.DispatcherID = null.StringFrom("disp-uuid")
	task.DispatcherPercentage = null.Float64From(10)
	worker := &entities.User{UUIDUser: "worker-uuid", FullName: "Исполнитель", Salary: 500}
	dispatcher := &entities.User{UUIDUser: "disp-uuid", FullName: "Диспетчер", Salary: 0}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{worker, dispatcher})

	err := f.svc.ApproveTask(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, float64(1500), worker.Salary, "исполнителю начисляется зарплата задачи")
	require.Len(t, worker.CompletedTasks, 1)
	assert.Equal(t, int64(1), worker.CompletedTasks[0].TaskID)
	assert.Equal(t, float64(100), dispatcher.Salary, "диспетчеру начисляется его процент")
	upd := f.taskRepo.updates[0]
	assert.Equal(t, entities.TaskStatusCompleted, upd.Status.String)
	assert.True(t, upd.CompletedAt.Valid)
	assert.True(t, upd.ExecutionTimeSeconds.Valid, "время выполнения считается от создания задачи")
	assert.Equal(t, float64(100), upd.DispatcherRewardAmount.Float64)
	assert.True(t, upd.DispatcherRewardApplied.Bool)
}

func TestApproveTask_WrongStatus(t *testing.T) {
	f := newTaskServiceFixture(nil, []*entities.Task{inProgressTask(1)}, nil)

	err := f.svc.ApproveTask(context.Background(), 1)

	require.Error(t, err, "подтверждать можно только задачу на проверке")
	assert.Empty(t, f.taskRepo.updates)
}

func TestApproveTask_DuplicateCreditIsNoop(t *testing.T) {
	task := inProgressTask(1)
	task.Status = entities.TaskStatusUnderReview
	task.ResponsibleUserID = null.StringFrom("worker-uuid")
	worker := &entities.User{
		UUIDUser: "worker-uuid", Salary: 1500,
		CompletedTasks: []entities.CompletedTaskEntry{{TaskID: 1, Payment: 1000}},
	}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{worker})

	err := f.svc.ApproveTask(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, float64(1500), worker.Salary, "повторное начисление по той же задаче не проходит")
	assert.Len(t, worker.CompletedTasks, 1)
}

// --- ReturnForRework ---

func TestReturnForRework(t *testing.T) {
	task := inProgressTask(1)
	task.Status = entities.TaskStatusUnderReview
	task.IsLocked = true
	task.ReviewReturns = []entities.ReviewReturn{{ReturnNumber: 1, ReturnedAt: time.Now(), Comment: "переделать"}}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, nil)

	err := f.svc.ReturnForRework(context.Background(), 1, dto.ReturnForReworkDTO{Comment: "нет фото объекта"})

	require.NoError(t, err)
	upd := f.taskRepo.updates[0]
	assert.Equal(t, entities.TaskStatusInProgress, upd.Status.String)
	assert.False(t, upd.IsLocked.Bool, "после возврата задача разблокируется")
	require.Len(t, upd.ReviewReturns, 2)
	assert.Equal(t, 2, upd.ReviewReturns[1].ReturnNumber, "номер возврата растёт последовательно")
	assert.Equal(t, "нет фото объекта", upd.ReviewReturns[1].Comment)
}

func TestReturnForRework_WrongStatus(t *testing.T) {
	f := newTaskServiceFixture(nil, []*entities.Task{inProgressTask(1)}, nil)

	err := f.svc.ReturnForRework(context.Background(), 1, dto.ReturnForReworkDTO{Comment: "комментарий"})

	require.Error(t, err)
	assert.Empty(t, f.taskRepo.updates)
}

// --- ApplyDispatcherPenalty ---

func completedTaskWithReward(id int64) *entities.Task {
	task := inProgressTask(id)
	task.Status = entities.TaskStatusCompleted
	task.DispatcherID = null.StringFrom("disp-uuid")
	task.DispatcherPercentage = null.Float64From(10)
	task.DispatcherRewardAmount = null.Float64From(100)
	task.DispatcherRewardApplied = true
	return task
}

func TestApplyDispatcherPenalty_Success(t *testing.T) {
	task := completedTaskWithReward(1)
	dispatcher := &entities.User{
		UUIDUser: "disp-uuid", Salary: 1000,
		CompletedTasks: []entities.CompletedTaskEntry{{TaskID: 1, Payment: 100}},
	}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{dispatcher})

	amount, err := f.svc.ApplyDispatcherPenalty(context.Background(), 1, 200)

	require.NoError(t, err)
	assert.Equal(t, float64(200), amount, "штраф равен удвоенному начислению")
	assert.Equal(t, float64(800), dispatcher.Salary)
	assert.True(t, dispatcher.CompletedTasks[0].HasPenalty)
	assert.True(t, f.taskRepo.tasks[1].PenaltyApplied)
}

func TestApplyDispatcherPenalty_ClampsAtZero(t *testing.T) {
	task := completedTaskWithReward(1)
	dispatcher := &entities.User{
		UUIDUser: "disp-uuid", Salary: 150,
		CompletedTasks: []entities.CompletedTaskEntry{{TaskID: 1, Payment: 100}},
	}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{dispatcher})

	_, err := f.svc.ApplyDispatcherPenalty(context.Background(), 1, 200)

	require.NoError(t, err)
	assert.Equal(t, float64(0), dispatcher.Salary, "баланс не уходит в минус")
}

func TestApplyDispatcherPenalty_NotEligible(t *testing.T) {
	task := completedTaskWithReward(1)
	task.DispatcherRewardApplied = false
	f := newTaskServiceFixture(nil, []*entities.Task{task}, nil)

	_, err := f.svc.ApplyDispatcherPenalty(context.Background(), 1, 200)

	assert.ErrorIs(t, err, apperrors.ErrPenaltyNotEligible)
}

func TestApplyDispatcherPenalty_AlreadyApplied(t *testing.T) {
	task := completedTaskWithReward(1)
	task.PenaltyApplied = true
	dispatcher := &entities.User{UUIDUser: "disp-uuid", Salary: 1000}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{dispatcher})

	_, err := f.svc.ApplyDispatcherPenalty(context.Background(), 1, 200)

	assert.ErrorIs(t, err, apperrors.ErrPenaltyAlreadyApplied)
	assert.Equal(t, float64(1000), dispatcher.Salary, "повторный штраф не списывает деньги")
}

func TestApplyDispatcherPenalty_AmountMismatch(t *testing.T) {
	task := completedTaskWithReward(1)
	dispatcher := &entities.User{
		UUIDUser: "disp-uuid", Salary: 1000,
		CompletedTasks: []entities.CompletedTaskEntry{{TaskID: 1, Payment: 100}},
	}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{dispatcher})

	_, err := f.svc.ApplyDispatcherPenalty(context.Background(), 1, 100)

	assert.ErrorIs(t, err, apperrors.ErrPenaltyAmountMismatch)
	assert.Equal(t, float64(1000), dispatcher.Salary)
	assert.False(t, f.taskRepo.tasks[1].PenaltyApplied)
}

// --- DeleteTask ---

func TestDeleteTask_ReversesAllEffects(t *testing.T) {
	task := completedTaskWithReward(1)
	task.ResponsibleUserID = null.StringFrom("worker-uuid")
	task.ZakazID = null.Int64From(7)
	task.PenaltyApplied = true
	worker := &entities.User{
		UUIDUser: "worker-uuid", Salary: 1000,
		CompletedTasks: []entities.CompletedTaskEntry{{TaskID: 1, Payment: 1000}},
	}
	// Диспетчер уже оштрафован: начисление 100 и списание 200.
	dispatcher := &entities.User{
		UUIDUser: "disp-uuid", Salary: 800,
		CompletedTasks: []entities.CompletedTaskEntry{{TaskID: 1, Payment: 100, HasPenalty: true}},
	}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{worker, dispatcher})

	err := f.svc.DeleteTask(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, float64(0), worker.Salary, "зарплата исполнителя возвращается")
	assert.Empty(t, worker.CompletedTasks, "запись журнала исполнителя удаляется")
	assert.Equal(t, float64(1000), dispatcher.Salary, "возврат штрафа ровно один раз, без двойного кредита")
	assert.False(t, dispatcher.CompletedTasks[0].HasPenalty)
	assert.Equal(t, [][2]int64{{7, 1}}, f.zakazRepo.removed)
	assert.Equal(t, []int64{1}, f.taskRepo.deleted)
}

func TestDeleteTask_PenaltyRefundClampInteraction(t *testing.T) {
	// Начисление 100 при балансе 150: штраф 200 обрезался до нуля, но
	// возврат всё равно полный, иначе флаг и деньги разъедутся.
	task := completedTaskWithReward(1)
	task.PenaltyApplied = true
	dispatcher := &entities.User{
		UUIDUser: "disp-uuid", Salary: 0,
		CompletedTasks: []entities.CompletedTaskEntry{{TaskID: 1, Payment: 100, HasPenalty: true}},
	}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{dispatcher})

	err := f.svc.DeleteTask(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, float64(200), dispatcher.Salary)
}

func TestDeleteTask_RetryAfterPartialFailure(t *testing.T) {
	// Повтор после сбоя: зарплата уже возвращена, записи журнала нет.
	// Повторный вызов не должен списывать деньги второй раз.
	task := inProgressTask(1)
	task.Status = entities.TaskStatusCompleted
	task.ResponsibleUserID = null.StringFrom("worker-uuid")
	worker := &entities.User{UUIDUser: "worker-uuid", Salary: 500}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{worker})

	err := f.svc.DeleteTask(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, float64(500), worker.Salary, "повтор удаления не трогает баланс")
	assert.Equal(t, []int64{1}, f.taskRepo.deleted)
}

func TestDeleteTask_NoPenaltyReversalWithoutFlag(t *testing.T) {
	// Штраф не применялся: журнал диспетчера не трогаем вовсе.
	task := completedTaskWithReward(1)
	dispatcher := &entities.User{
		UUIDUser: "disp-uuid", Salary: 100,
		CompletedTasks: []entities.CompletedTaskEntry{{TaskID: 1, Payment: 100}},
	}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{dispatcher})

	err := f.svc.DeleteTask(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, float64(100), dispatcher.Salary)
	assert.Equal(t, 0, f.userRepo.calls, "без штрафа и без зарплаты счета не обновляются")
}

// --- GetTask ---

func TestGetTask_OverdueDiscount(t *testing.T) {
	task := inProgressTask(1)
	task.DueDate = null.TimeFrom(time.Now().Add(-time.Hour))
	task.DispatcherID = null.StringFrom("disp-uuid")
	dispatcher := &entities.User{UUIDUser: "disp-uuid", FullName: "Фаррух Азимов"}
	f := newTaskServiceFixture(nil, []*entities.Task{task}, []*entities.User{dispatcher})

	resp, err := f.svc.GetTask(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, resp.IsOverdue)
	assert.Equal(t, float64(900), resp.EffectiveSalary.Float64, "за просрочку показывается зарплата минус 10%")
	assert.Equal(t, "Фаррух Азимов", resp.DispatcherName.String)
}

func TestGetTask_CompletedNotOverdue(t *testing.T) {
	task := inProgressTask(1)
	task.Status = entities.TaskStatusCompleted
	task.DueDate = null.TimeFrom(time.Now().Add(-time.Hour))
	f := newTaskServiceFixture(nil, []*entities.Task{task}, nil)

	resp, err := f.svc.GetTask(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, resp.IsOverdue, "завершённая задача не считается просроченной")
	assert.Equal(t, float64(1000), resp.EffectiveSalary.Float64)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"task-system/internal/entities"
	apperrors "task-system/pkg/errors"
)

type fakeAutomationRepo struct {
	settings map[string]*entities.AutomationSetting
}

func (f *fakeAutomationRepo) FindByStage(ctx context.Context, stageID string) (*entities.AutomationSetting, error) {
	s, ok := f.settings[stageID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return s, nil
}

func TestResolveDispatcher_Success(t *testing.T) {
	zakazRepo := &fakeZakazRepo{zakaz: &entities.Zakaz{IDZakaza: 7, Status: "montazh"}}
	autoRepo := &fakeAutomationRepo{settings: map[string]*entities.AutomationSetting{
		"montazh": {StageID: "montazh", DispatcherID: "disp-uuid", DispatcherPercentage: 12.5},
	}}
	svc := NewAutomationService(zakazRepo, autoRepo, zap.NewNop())

	assignment := svc.ResolveDispatcher(context.Background(), 7)

	require.NotNil(t, assignment)
	assert.Equal(t, "disp-uuid", assignment.DispatcherID)
	assert.Equal(t, 12.5, assignment.DispatcherPercentage)
}

func TestResolveDispatcher_NoRuleForStage(t *testing.T) {
	zakazRepo := &fakeZakazRepo{zakaz: &entities.Zakaz{IDZakaza: 7, Status: "montazh"}}
	autoRepo := &fakeAutomationRepo{settings: map[string]*entities.AutomationSetting{}}
	svc := NewAutomationService(zakazRepo, autoRepo, zap.NewNop())

	assert.Nil(t, svc.ResolveDispatcher(context.Background(), 7),
		"без правила для этапа назначение не происходит")
}

func TestResolveDispatcher_MissingZakaz(t *testing.T) {
	svc := NewAutomationService(&fakeZakazRepo{}, &fakeAutomationRepo{}, zap.NewNop())

	assert.Nil(t, svc.ResolveDispatcher(context.Background(), 404),
		"без заказа назначение не происходит")
}

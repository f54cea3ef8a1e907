package workflow

import (
	"testing"

	"storefront/internal/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestNextAction(t *testing.T) {
	tests := []struct {
		status entities.Status
		want   Action
	}{
		{entities.StatusPending, ActionAssignCook},
		{entities.StatusCooking, ActionMarkPacked},
		{entities.StatusPacking, ActionAssignDelivery},
		{entities.StatusOutForDelivery, ActionMarkDelivered},
		{entities.StatusDelivered, ActionNone},
		{entities.StatusCancelled, ActionNone},
		{entities.StatusUnknown, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, NextAction(tt.status))
		})
	}
}

func TestCanPerform_AdminIsAuthorizedForEveryAction(t *testing.T) {
	for _, a := range Actions {
		assert.True(t, CanPerform(a, entities.RoleAdmin), a.String())
	}
}

func TestCanPerform_PendingOrder(t *testing.T) {
	action := NextAction(entities.StatusPending)

	assert.Equal(t, ActionAssignCook, action)
	assert.False(t, CanPerform(action, entities.RoleCourier))
	assert.True(t, CanPerform(action, entities.RoleCook))
	assert.False(t, CanPerform(action, entities.RoleCustomer))
}

func TestCanPerform_RoleMatrix(t *testing.T) {
	tests := []struct {
		action  Action
		allowed []entities.Role
	}{
		{ActionAssignCook, []entities.Role{entities.RoleAdmin, entities.RoleCook}},
		{ActionMarkPacked, []entities.Role{entities.RoleAdmin, entities.RolePacker}},
		{ActionAssignDelivery, []entities.Role{entities.RoleAdmin, entities.RoleCourier}},
		{ActionMarkDelivered, []entities.Role{entities.RoleAdmin, entities.RoleCourier}},
		{ActionNone, nil},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			for _, role := range entities.Roles {
				assert.Equal(t, contains(tt.allowed, role), CanPerform(tt.action, role), role.String())
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(entities.StatusPending, entities.StatusCooking))
	assert.True(t, CanTransition(entities.StatusOutForDelivery, entities.StatusDelivered))
	assert.False(t, CanTransition(entities.StatusPending, entities.StatusPacking))
	assert.False(t, CanTransition(entities.StatusCooking, entities.StatusPending))
	assert.False(t, CanTransition(entities.StatusUnknown, entities.StatusCooking))

	for _, s := range []entities.Status{entities.StatusDelivered, entities.StatusCancelled} {
		for _, to := range entities.Statuses {
			assert.False(t, CanTransition(s, to), "%s -> %s", s, to)
		}
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(entities.StatusPending))
	assert.True(t, CanCancel(entities.StatusCooking))
	assert.True(t, CanCancel(entities.StatusPacking))
	assert.True(t, CanCancel(entities.StatusOutForDelivery))
	assert.False(t, CanCancel(entities.StatusDelivered))
	assert.False(t, CanCancel(entities.StatusCancelled))
}

func TestProgress(t *testing.T) {
	step, ok := Progress(entities.StatusPacking)
	assert.True(t, ok)
	assert.Equal(t, 2, step)

	step, ok = Progress(entities.StatusDelivered)
	assert.True(t, ok)
	assert.Equal(t, 4, step)

	step, ok = Progress(entities.ParseStatus("EN_PREPARACION_ESPECIAL"))
	assert.True(t, ok)
	assert.Equal(t, 0, step)

	_, ok = Progress(entities.StatusCancelled)
	assert.False(t, ok)
}

func TestTargetFollowsNextAction(t *testing.T) {
	for i := 0; i < len(ProgressSteps)-1; i++ {
		assert.Equal(t, ProgressSteps[i+1], Target(NextAction(ProgressSteps[i])))
	}
}

func contains(roles []entities.Role, role entities.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

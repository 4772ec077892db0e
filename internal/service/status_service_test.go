package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixxhq/fixxcore/internal/domain"
	"github.com/fixxhq/fixxcore/internal/service"
)

func TestRoleFor(t *testing.T) {
	task := taskInStatus(domain.TaskStatusInProgress)

	assert.Equal(t, service.RoleClient, service.RoleFor(task, clientID))
	assert.Equal(t, service.RoleFixxer, service.RoleFor(task, fixxerID))
	assert.Equal(t, "", service.RoleFor(task, otherID))
}

func TestAvailableActions(t *testing.T) {
	tests := []struct {
		name   string
		status domain.TaskStatus
		role   string
		want   []string
	}{
		{"client on posted task", domain.TaskStatusPosted, service.RoleClient,
			[]string{"view_offers", "cancel_task", "edit_task"}},
		{"client mid-work", domain.TaskStatusInProgress, service.RoleClient,
			[]string{"cancel_task", "message_fixxer"}},
		{"client resolving completion", domain.TaskStatusPendingCompletion, service.RoleClient,
			[]string{"approve_completion", "reject_completion", "message_fixxer"}},
		{"client after completion", domain.TaskStatusCompleted, service.RoleClient,
			[]string{"leave_review"}},
		{"fixxer mid-work", domain.TaskStatusInProgress, service.RoleFixxer,
			[]string{"cancel_task", "complete_task", "message_client"}},
		{"fixxer awaiting approval", domain.TaskStatusPendingCompletion, service.RoleFixxer,
			[]string{"message_client"}},
		{"fixxer after completion", domain.TaskStatusCompleted, service.RoleFixxer,
			[]string{"view_review"}},
		{"bystander sees nothing", domain.TaskStatusPosted, "", []string{}},
		{"cancelled task offers nothing", domain.TaskStatusCancelled, service.RoleClient, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.AvailableActions(tt.status, tt.role))
		})
	}
}

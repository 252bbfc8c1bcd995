package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    WorkOrderStatus
		to      WorkOrderStatus
		allowed bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusCompleted, true},
		{StatusDraft, StatusApproved, false},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusSubmitted, StatusCompleted, false},
		{StatusApproved, StatusPendingCustomerApproval, true},
		{StatusApproved, StatusCompleted, true},
		{StatusPendingCustomerApproval, StatusCustomerApproved, true},
		{StatusPendingCustomerApproval, StatusCustomerRejected, true},
		{StatusPendingCustomerApproval, StatusCompleted, false},
		{StatusCustomerApproved, StatusCompleted, true},
		{StatusRejected, StatusSubmitted, false},
		{StatusCustomerRejected, StatusCompleted, false},
		{StatusCompleted, StatusDraft, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []WorkOrderStatus{StatusRejected, StatusCustomerRejected, StatusCompleted} {
		assert.True(t, s.Terminal(), string(s))
	}
	for _, s := range []WorkOrderStatus{StatusDraft, StatusSubmitted, StatusApproved, StatusPendingCustomerApproval, StatusCustomerApproved} {
		assert.False(t, s.Terminal(), string(s))
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.False(t, WorkOrderStatus("archived").Valid())
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleOwner.Can(CapManageUsers))
	assert.True(t, RoleOwner.Can(CapEditSettings))
	assert.True(t, RoleManager.Can(CapApproveOrders))
	assert.False(t, RoleManager.Can(CapManageUsers))
	assert.False(t, RoleManager.Can(CapEditSettings))
	assert.False(t, RoleTechnician.Can(CapApproveOrders))
	assert.False(t, RoleTechnician.Can(CapSendForApproval))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusIsTerminal(t *testing.T) {
	assert.False(t, PaymentStatusIsTerminal(PaymentStatusPending))
	assert.False(t, PaymentStatusIsTerminal(PaymentStatusInitiated))
	assert.True(t, PaymentStatusIsTerminal(PaymentStatusCompleted))
	assert.True(t, PaymentStatusIsTerminal(PaymentStatusFailed))
	assert.True(t, PaymentStatusIsTerminal(PaymentStatusCancelled))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to initiated", PaymentStatusPending, PaymentStatusInitiated, true},
		{"pending to failed", PaymentStatusPending, PaymentStatusFailed, true},
		{"pending to completed skips initiated", PaymentStatusPending, PaymentStatusCompleted, false},
		{"initiated to completed", PaymentStatusInitiated, PaymentStatusCompleted, true},
		{"initiated to failed", PaymentStatusInitiated, PaymentStatusFailed, true},
		{"initiated to cancelled", PaymentStatusInitiated, PaymentStatusCancelled, true},
		{"completed is terminal", PaymentStatusCompleted, PaymentStatusFailed, false},
		{"failed is terminal", PaymentStatusFailed, PaymentStatusCompleted, false},
		{"cancelled is terminal", PaymentStatusCancelled, PaymentStatusInitiated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(RoleSuperAdmin, MembershipRoleBusinessAdmin))
	assert.True(t, RoleAtLeast(MembershipRoleBusinessAdmin, MembershipRoleStaff))
	assert.True(t, RoleAtLeast(MembershipRoleStaff, MembershipRoleViewer))
	assert.True(t, RoleAtLeast(MembershipRoleViewer, MembershipRoleViewer))
	assert.False(t, RoleAtLeast(MembershipRoleViewer, MembershipRoleStaff))
	assert.False(t, RoleAtLeast(MembershipRoleStaff, MembershipRoleBusinessAdmin))
	assert.False(t, RoleAtLeast("bogus", MembershipRoleViewer))
}

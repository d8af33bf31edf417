package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    SubmissionStatus
		to      SubmissionStatus
		allowed bool
	}{
		{SubmissionPendingReview, SubmissionUnderEvaluation, true},
		{SubmissionPendingReview, SubmissionApproved, false},
		{SubmissionPendingReview, SubmissionRejected, false},
		{SubmissionUnderEvaluation, SubmissionInfoRequested, true},
		{SubmissionUnderEvaluation, SubmissionApproved, true},
		{SubmissionUnderEvaluation, SubmissionOnHold, true},
		{SubmissionUnderEvaluation, SubmissionRejected, true},
		{SubmissionUnderEvaluation, SubmissionPendingReview, false},
		{SubmissionInfoRequested, SubmissionUnderEvaluation, true},
		{SubmissionInfoRequested, SubmissionApproved, false},
		{SubmissionOnHold, SubmissionUnderEvaluation, true},
		{SubmissionOnHold, SubmissionRejected, false},
		// Terminal states allow nothing.
		{SubmissionApproved, SubmissionUnderEvaluation, false},
		{SubmissionApproved, SubmissionRejected, false},
		{SubmissionRejected, SubmissionUnderEvaluation, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to),
			"transition %s -> %s", tc.from, tc.to)
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(SubmissionStatus("BOGUS"), SubmissionUnderEvaluation))
	assert.False(t, CanTransition(SubmissionPendingReview, SubmissionStatus("BOGUS")))
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, RoleEmployee.IsStaff())
	assert.True(t, RoleCEO.IsStaff())
	assert.False(t, RoleBuyer.IsStaff())
	assert.False(t, RoleSeller.IsStaff())

	assert.True(t, RoleCEO.IsCEO())
	assert.False(t, RoleEmployee.IsCEO())

	assert.True(t, ValidRole(RoleSeller))
	assert.False(t, ValidRole(Role("ADMIN")))
}

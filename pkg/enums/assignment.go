package enums

import "fmt"

// AssignmentState tracks the lifecycle of a (job, employee) assignment.
type AssignmentState string

const (
	AssignmentStateAssigned   AssignmentState = "assigned"
	AssignmentStateInProgress AssignmentState = "in_progress"
	AssignmentStatePaused     AssignmentState = "paused"
	AssignmentStateDone       AssignmentState = "done"
	AssignmentStateCanceled   AssignmentState = "canceled"
)

var validAssignmentStates = []AssignmentState{
	AssignmentStateAssigned,
	AssignmentStateInProgress,
	AssignmentStatePaused,
	AssignmentStateDone,
	AssignmentStateCanceled,
}

// String implements fmt.Stringer.
func (s AssignmentState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AssignmentState.
func (s AssignmentState) IsValid() bool {
	for _, candidate := range validAssignmentStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAssignmentState converts raw input into an AssignmentState.
func ParseAssignmentState(value string) (AssignmentState, error) {
	for _, candidate := range validAssignmentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment state %q", value)
}

// ActivityAction labels an append-only assignment activity event.
type ActivityAction string

const (
	ActivityActionAssigned  ActivityAction = "assigned"
	ActivityActionStarted   ActivityAction = "started"
	ActivityActionPaused    ActivityAction = "paused"
	ActivityActionResumed   ActivityAction = "resumed"
	ActivityActionDone      ActivityAction = "done"
	ActivityActionAbandoned ActivityAction = "abandoned"
	ActivityActionCanceled  ActivityAction = "canceled"
)

// String implements fmt.Stringer.
func (a ActivityAction) String() string {
	return string(a)
}

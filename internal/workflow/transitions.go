package workflow

import "github.com/redlitmus-in/MeterSquare-sub008/internal/model"

// transitions is the static table of reachable statuses. A target absent from
// the current status's row is an invalid transition, no exceptions.
var transitions = map[model.ChangeRequestStatus][]model.ChangeRequestStatus{
	model.StatusPending: {
		model.StatusUnderReview,
		model.StatusRejected,
	},
	model.StatusUnderReview: {
		model.StatusApprovedByPM,
		model.StatusSendToEstimator,
		model.StatusSendToBuyer,
		model.StatusAssignedToBuyer,
		model.StatusRejected,
	},
	model.StatusApprovedByPM: {
		model.StatusAssignedToBuyer,
		model.StatusRejected,
	},
	model.StatusSendToEstimator: {
		model.StatusSendToBuyer,
		model.StatusAssignedToBuyer,
		model.StatusRejected,
	},
	model.StatusSendToBuyer: {
		model.StatusAssignedToBuyer,
		model.StatusRejected,
	},
	model.StatusAssignedToBuyer: {
		model.StatusPurchaseCompleted,
		model.StatusRejected,
	},
	model.StatusPurchaseCompleted: {},
	model.StatusRejected:          {},
}

// CanTransition reports whether the target status is reachable from the
// current one.
func CanTransition(from, to model.ChangeRequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func Terminal(status model.ChangeRequestStatus) bool {
	return len(transitions[status]) == 0
}

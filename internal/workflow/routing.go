package workflow

import "github.com/redlitmus-in/MeterSquare-sub008/internal/model"

// Route is the next stop decided for a change request: the status to move to,
// the role that must act there (nil once the request leaves review), and
// whether a buyer must be assigned before the move may complete.
type Route struct {
	NextStatus       model.ChangeRequestStatus
	RequiredApprover *model.ApproverRole
	RequiresAssignee bool
}

func rolePtr(role model.ApproverRole) *model.ApproverRole {
	return &role
}

// SubmitRoute decides where a pending request goes when submitted for review.
// Routing is a pure function of the classification: any new material pulls in
// the estimator, an existing-only set goes straight to a buyer and therefore
// needs one selected up front.
func SubmitRoute(class Classification) Route {
	if class == ClassificationNewMaterials {
		return Route{
			NextStatus:       model.StatusUnderReview,
			RequiredApprover: rolePtr(model.RoleEstimator),
		}
	}
	return Route{
		NextStatus:       model.StatusUnderReview,
		RequiredApprover: rolePtr(model.RoleBuyer),
		RequiresAssignee: true,
	}
}

// ApproveRoute decides where an under-review request goes when the required
// approver signs off. Estimator approval clears new materials for estimation,
// the technical director clears the request for buying, project manager
// approval closes a plain change, and buyer approval finalizes assignment.
// An existing-only request is an external buy, so every approval path on it
// insists on an assigned buyer.
func ApproveRoute(role model.ApproverRole, class Classification) Route {
	route := Route{RequiresAssignee: class == ClassificationExistingOnly}
	switch role {
	case model.RoleEstimator:
		route.NextStatus = model.StatusSendToEstimator
	case model.RoleTechnicalDirector:
		route.NextStatus = model.StatusSendToBuyer
	case model.RoleProjectManager:
		route.NextStatus = model.StatusApprovedByPM
	case model.RoleBuyer:
		route.NextStatus = model.StatusAssignedToBuyer
		route.RequiresAssignee = true
	}
	return route
}

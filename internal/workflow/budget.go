package workflow

import "github.com/redlitmus-in/MeterSquare-sub008/internal/model"

// DefaultClientApprovalThresholdPct is the budget increase beyond which the
// client must sign off on a change request.
const DefaultClientApprovalThresholdPct = 15.0

// ComputeBudgetImpact compares the approved budget total with the proposed
// addition. A zero original total yields a zero percentage rather than an
// error, so a freshly created project never blocks a request on arithmetic.
func ComputeBudgetImpact(originalTotal, proposedAdditionalCost, thresholdPct float64) model.BudgetImpact {
	impact := model.BudgetImpact{
		OriginalTotal:      originalTotal,
		NewTotalIfApproved: originalTotal + proposedAdditionalCost,
	}
	if originalTotal > 0 {
		impact.IncreasePercentage = proposedAdditionalCost / originalTotal * 100
	}
	impact.RequiresClientApproval = impact.IncreasePercentage > thresholdPct
	return impact
}

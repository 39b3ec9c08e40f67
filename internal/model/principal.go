package model

import "github.com/google/uuid"

// Principal is the authenticated caller. The core trusts the role and id it
// is handed; authorization checks happen at the edges.
type Principal struct {
	UserID uuid.UUID
	Role   ApproverRole
}

func (p Principal) IsProjectManager() bool    { return p.Role == RoleProjectManager }
func (p Principal) IsEstimator() bool         { return p.Role == RoleEstimator }
func (p Principal) IsTechnicalDirector() bool { return p.Role == RoleTechnicalDirector }
func (p Principal) IsBuyer() bool             { return p.Role == RoleBuyer }

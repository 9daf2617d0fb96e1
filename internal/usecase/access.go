package usecase

import (
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/pkg/apperror"
)

var ErrForbidden = apperror.Forbidden("forbidden", "You don't have permission to perform this action")

// Capability is something an actor may do to a project or one of its children
type Capability int

const (
	CapabilityView Capability = iota
	CapabilityManage
	CapabilityReviewDesign
	CapabilityUploadDesign
	CapabilitySubmitPayment
	CapabilityRecordFabrication
)

// Can is the single ownership/role check for project-scoped operations
func Can(actor entity.Actor, project *entity.Project, capability Capability) bool {
	if project == nil {
		return false
	}
	isOwner := actor.Role == entity.RoleCustomer && project.CustomerID == actor.UserID

	switch capability {
	case CapabilityView:
		if actor.IsBackOffice() || isOwner {
			return true
		}
		for _, a := range project.Assignments {
			if a.UserID == actor.UserID {
				return true
			}
		}
		return false
	case CapabilityManage:
		return actor.IsBackOffice()
	case CapabilityReviewDesign:
		return isOwner
	case CapabilityUploadDesign:
		return actor.Is(entity.RoleAdmin) ||
			(actor.Is(entity.RoleEngineer) && project.IsAssigned(actor.UserID, entity.AssignmentRoleDesign))
	case CapabilitySubmitPayment:
		return isOwner || actor.IsBackOffice()
	case CapabilityRecordFabrication:
		return actor.Is(entity.RoleAdmin) || project.IsAssigned(actor.UserID, entity.AssignmentRoleProduction)
	}
	return false
}

func authorize(actor entity.Actor, project *entity.Project, capability Capability) error {
	if !Can(actor, project, capability) {
		return ErrForbidden
	}
	return nil
}

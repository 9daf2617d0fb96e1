package converter

import (
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/reconciliation"
)

// PaymentPlanToResponse converts a PaymentPlan entity to PaymentPlanResponse DTO
func PaymentPlanToResponse(plan *entity.PaymentPlan) *dto.PaymentPlanResponse {
	if plan == nil {
		return nil
	}

	stages := make([]dto.PaymentStageResponse, len(plan.Stages))
	for i, s := range plan.Stages {
		stages[i] = dto.PaymentStageResponse{
			ID:               s.ID,
			Sequence:         s.Sequence,
			Label:            s.Label,
			Percentage:       s.Percentage,
			TargetAmount:     s.TargetAmount,
			AmountPaid:       s.AmountPaid,
			CreditApplied:    s.CreditApplied,
			RemainingBalance: s.RemainingBalance,
			Status:           string(s.Status),
			VerifiedAt:       s.VerifiedAt,
		}
	}

	return &dto.PaymentPlanResponse{
		ID:                 plan.ID,
		ProjectID:          plan.ProjectID,
		TotalAmount:        plan.TotalAmount,
		CreditBalance:      plan.CreditBalance,
		OutstandingBalance: reconciliation.OutstandingBalance(plan),
		Immutable:          plan.Immutable,
		LockedAt:           plan.LockedAt,
		Stages:             stages,
		CreatedAt:          plan.CreatedAt,
		UpdatedAt:          plan.UpdatedAt,
	}
}

// PaymentToResponse converts a Payment entity to PaymentResponse DTO
func PaymentToResponse(p *entity.Payment) *dto.PaymentResponse {
	if p == nil {
		return nil
	}
	return &dto.PaymentResponse{
		ID:              p.ID,
		PlanID:          p.PlanID,
		StageID:         p.StageID,
		ProjectID:       p.ProjectID,
		SubmittedBy:     p.SubmittedBy,
		Method:          string(p.Method),
		Amount:          p.Amount,
		ReferenceNumber: p.ReferenceNumber,
		ProofKey:        p.ProofKey,
		Status:          string(p.Status),
		ExcessCredit:    p.ExcessCredit,
		ReceiptNumber:   p.ReceiptNumber,
		VerifiedBy:      p.VerifiedBy,
		VerifiedAt:      p.VerifiedAt,
		DeclineReason:   p.DeclineReason,
		CreatedAt:       p.CreatedAt,
	}
}

// PaymentsToResponses converts a slice of Payment entities to slice of PaymentResponse DTOs
func PaymentsToResponses(payments []entity.Payment) []dto.PaymentResponse {
	responses := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		if resp := PaymentToResponse(&payments[i]); resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// AllocationsToResponses converts carried credit allocations to DTOs
func AllocationsToResponses(allocations []reconciliation.Allocation) []dto.CreditAllocationResponse {
	responses := make([]dto.CreditAllocationResponse, len(allocations))
	for i, a := range allocations {
		responses[i] = dto.CreditAllocationResponse{
			StageID:  a.StageID,
			Sequence: a.Sequence,
			Amount:   a.Amount,
		}
	}
	return responses
}

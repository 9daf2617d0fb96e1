// Package reconciliation splits a project total into payment stages and applies
// verified payments to them, carrying overpayments forward to later stages.
//
// Everything here is pure: callers load the plan, call into this package, and
// persist the mutated plan inside their own transaction.
package reconciliation

import (
	"fmt"
	"sort"
	"time"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/transition"
	"fabrication-workflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNoStages              = apperror.Validation("no_stages", "A payment plan needs at least one stage")
	ErrInvalidTotal          = apperror.Validation("invalid_total", "Total amount must be greater than zero")
	ErrPercentageNotPositive = apperror.Validation("invalid_percentage", "Every stage percentage must be greater than zero")
	ErrPercentageSum         = apperror.Validation("percentage_sum", "Stage percentages must add up to 100")
	ErrInvalidAmount         = apperror.Validation("invalid_amount", "Payment amount must be greater than zero")
	ErrStageNotFound         = apperror.NotFound("stage_not_found", "Payment stage not found")
)

var (
	hundred      = decimal.NewFromInt(100)
	sumTolerance = decimal.New(1, -2)
)

// Round2 rounds a currency amount to cents
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// BuildStages derives ordered pending stages from a total and its percentage split.
// The last stage absorbs any rounding remainder so targets sum to the total exactly.
func BuildStages(total decimal.Decimal, percentages []decimal.Decimal) ([]entity.PaymentStage, error) {
	if len(percentages) == 0 {
		return nil, ErrNoStages
	}
	total = Round2(total)
	if !total.IsPositive() {
		return nil, ErrInvalidTotal
	}

	sum := decimal.Zero
	for _, p := range percentages {
		if !p.IsPositive() {
			return nil, ErrPercentageNotPositive
		}
		sum = sum.Add(p)
	}
	if sum.Sub(hundred).Abs().GreaterThan(sumTolerance) {
		return nil, ErrPercentageSum.WithDetails(map[string]interface{}{
			"sum": sum.String(),
		})
	}

	stages := make([]entity.PaymentStage, len(percentages))
	allocated := decimal.Zero
	for i, p := range percentages {
		target := Round2(total.Mul(p).Div(hundred))
		if i == len(percentages)-1 {
			target = total.Sub(allocated)
		}
		allocated = allocated.Add(target)

		stages[i] = entity.PaymentStage{
			Sequence:         i + 1,
			Label:            stageLabel(i, len(percentages)),
			Percentage:       p.Round(2),
			TargetAmount:     target,
			AmountPaid:       decimal.Zero,
			CreditApplied:    decimal.Zero,
			RemainingBalance: target,
			Status:           entity.PaymentStageStatusPending,
		}
	}
	return stages, nil
}

func stageLabel(i, n int) string {
	if n == 1 {
		return "Full Payment"
	}
	return fmt.Sprintf("Stage %d", i+1)
}

// Allocation is carried credit landing on one stage
type Allocation struct {
	StageID  uuid.UUID
	Sequence int
	Amount   decimal.Decimal
}

// Outcome summarizes what one verified payment did to its plan
type Outcome struct {
	StageSettled    bool
	ExcessCredit    decimal.Decimal
	CarriedForward  []Allocation
	UnappliedCredit decimal.Decimal
	VerifiedStages  []uuid.UUID
	PlanLocked      bool
}

// ApplyVerifiedPayment credits amount to the stage and mutates plan in place.
// The stage must currently hold a submitted proof.
func ApplyVerifiedPayment(plan *entity.PaymentPlan, stageID uuid.UUID, amount decimal.Decimal, now time.Time) (*Outcome, error) {
	amount = Round2(amount)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	sort.SliceStable(plan.Stages, func(i, j int) bool {
		return plan.Stages[i].Sequence < plan.Stages[j].Sequence
	})
	stage := plan.StageByID(stageID)
	if stage == nil {
		return nil, ErrStageNotFound
	}

	out := &Outcome{ExcessCredit: decimal.Zero, UnappliedCredit: decimal.Zero}
	paidSoFar := stage.AmountPaid.Add(amount)
	remaining := stage.TargetAmount.Sub(paidSoFar)

	if remaining.IsPositive() {
		if err := transition.PaymentStage.Assert(stage.Status, entity.PaymentStageStatusPending); err != nil {
			return nil, err
		}
		stage.AmountPaid = paidSoFar
		stage.RemainingBalance = remaining
		stage.Status = entity.PaymentStageStatusPending
		return out, nil
	}

	if err := transition.PaymentStage.Assert(stage.Status, entity.PaymentStageStatusVerified); err != nil {
		return nil, err
	}
	stage.AmountPaid = stage.TargetAmount
	stage.RemainingBalance = decimal.Zero
	stage.Status = entity.PaymentStageStatusVerified
	stage.VerifiedAt = &now
	out.StageSettled = true
	out.VerifiedStages = append(out.VerifiedStages, stage.ID)
	out.ExcessCredit = remaining.Neg()

	excess := out.ExcessCredit
	for i := range plan.Stages {
		if !excess.IsPositive() {
			break
		}
		next := &plan.Stages[i]
		// credit only moves to later installments
		if next.Sequence <= stage.Sequence || next.Status != entity.PaymentStageStatusPending || !next.RemainingBalance.IsPositive() {
			continue
		}

		applied := decimal.Min(excess, next.RemainingBalance)
		excess = excess.Sub(applied)
		next.CreditApplied = next.CreditApplied.Add(applied)
		next.AmountPaid = next.AmountPaid.Add(applied)
		next.RemainingBalance = next.RemainingBalance.Sub(applied)
		out.CarriedForward = append(out.CarriedForward, Allocation{
			StageID:  next.ID,
			Sequence: next.Sequence,
			Amount:   applied,
		})

		if next.RemainingBalance.IsZero() {
			if err := transition.PaymentStage.Assert(next.Status, entity.PaymentStageStatusVerified); err != nil {
				return nil, err
			}
			next.Status = entity.PaymentStageStatusVerified
			next.VerifiedAt = &now
			out.VerifiedStages = append(out.VerifiedStages, next.ID)
		}
	}

	if excess.IsPositive() {
		out.UnappliedCredit = excess
		plan.CreditBalance = plan.CreditBalance.Add(excess)
	}

	if !plan.Immutable {
		plan.Immutable = true
		plan.LockedAt = &now
		out.PlanLocked = true
	}
	return out, nil
}

// OutstandingBalance is what the customer still owes across every stage
func OutstandingBalance(plan *entity.PaymentPlan) decimal.Decimal {
	total := decimal.Zero
	for _, s := range plan.Stages {
		if s.Status != entity.PaymentStageStatusVerified {
			total = total.Add(s.RemainingBalance)
		}
	}
	return total
}

package reconciliation

import (
	"testing"
	"time"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/transition"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decs(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = dec(v)
	}
	return out
}

func assertDec(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), append([]interface{}{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

func newPlan(t *testing.T, total string, pcts ...string) *entity.PaymentPlan {
	t.Helper()
	stages, err := BuildStages(dec(total), decs(pcts...))
	require.NoError(t, err)
	for i := range stages {
		stages[i].ID = uuid.New()
	}
	return &entity.PaymentPlan{
		ID:            uuid.New(),
		TotalAmount:   dec(total),
		CreditBalance: decimal.Zero,
		Active:        true,
		Stages:        stages,
	}
}

func TestBuildStages_TargetsAndLabels(t *testing.T) {
	stages, err := BuildStages(dec("1000"), decs("30", "40", "30"))
	require.NoError(t, err)
	require.Len(t, stages, 3)

	assert.Equal(t, "Stage 1", stages[0].Label)
	assert.Equal(t, "Stage 3", stages[2].Label)
	assertDec(t, "300", stages[0].TargetAmount)
	assertDec(t, "400", stages[1].TargetAmount)
	assertDec(t, "300", stages[2].TargetAmount)
	for i, s := range stages {
		assert.Equal(t, i+1, s.Sequence)
		assert.Equal(t, entity.PaymentStageStatusPending, s.Status)
		assert.True(t, s.RemainingBalance.Equal(s.TargetAmount))
	}
}

func TestBuildStages_SingleStageIsFullPayment(t *testing.T) {
	stages, err := BuildStages(dec("2500.50"), decs("100"))
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, "Full Payment", stages[0].Label)
	assertDec(t, "2500.50", stages[0].TargetAmount)
}

func TestBuildStages_LastStageAbsorbsRounding(t *testing.T) {
	stages, err := BuildStages(dec("100"), decs("33.33", "33.33", "33.34"))
	require.NoError(t, err)

	sum := decimal.Zero
	for _, s := range stages {
		sum = sum.Add(s.TargetAmount)
	}
	assertDec(t, "100", sum)
	assertDec(t, "33.33", stages[0].TargetAmount)
	assertDec(t, "33.34", stages[2].TargetAmount)

	stages, err = BuildStages(dec("1000"), decs("33.333", "33.333", "33.333"))
	require.NoError(t, err)
	assertDec(t, "333.33", stages[0].TargetAmount)
	assertDec(t, "333.34", stages[2].TargetAmount)
}

func TestBuildStages_Rejections(t *testing.T) {
	_, err := BuildStages(dec("1000"), nil)
	assert.ErrorIs(t, err, ErrNoStages)

	_, err = BuildStages(dec("0"), decs("100"))
	assert.ErrorIs(t, err, ErrInvalidTotal)

	_, err = BuildStages(dec("1000"), decs("50", "0", "50"))
	assert.ErrorIs(t, err, ErrPercentageNotPositive)

	_, err = BuildStages(dec("1000"), decs("50", "40"))
	assert.ErrorIs(t, err, ErrPercentageSum)

	_, err = BuildStages(dec("1000"), decs("50", "50.02"))
	assert.ErrorIs(t, err, ErrPercentageSum)

	_, err = BuildStages(dec("1000"), decs("50", "50.01"))
	assert.NoError(t, err)
}

func TestApplyVerifiedPayment_CarryForwardAcrossAllStages(t *testing.T) {
	plan := newPlan(t, "1000", "30", "40", "30")
	plan.Stages[0].Status = entity.PaymentStageStatusProofSubmitted
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	out, err := ApplyVerifiedPayment(plan, plan.Stages[0].ID, dec("1000"), now)
	require.NoError(t, err)

	s1, s2, s3 := plan.Stages[0], plan.Stages[1], plan.Stages[2]
	assert.Equal(t, entity.PaymentStageStatusVerified, s1.Status)
	assertDec(t, "300", s1.AmountPaid)
	assertDec(t, "0", s1.CreditApplied)

	assert.Equal(t, entity.PaymentStageStatusVerified, s2.Status)
	assertDec(t, "400", s2.AmountPaid)
	assertDec(t, "400", s2.CreditApplied)
	assertDec(t, "0", s2.RemainingBalance)

	assert.Equal(t, entity.PaymentStageStatusVerified, s3.Status)
	assertDec(t, "300", s3.AmountPaid)
	assertDec(t, "300", s3.CreditApplied)

	assert.True(t, out.StageSettled)
	assertDec(t, "700", out.ExcessCredit)
	assertDec(t, "0", out.UnappliedCredit)
	assertDec(t, "0", plan.CreditBalance)
	assert.Len(t, out.CarriedForward, 2)
	assert.Len(t, out.VerifiedStages, 3)
	assert.True(t, out.PlanLocked)
	assert.True(t, plan.Immutable)
	assert.Equal(t, now, *plan.LockedAt)
	assert.True(t, plan.AllVerified())
	assertDec(t, "0", OutstandingBalance(plan))
}

func TestApplyVerifiedPayment_PartialCarryLeavesStagePending(t *testing.T) {
	plan := newPlan(t, "1000", "30", "40", "30")
	plan.Stages[0].Status = entity.PaymentStageStatusProofSubmitted

	out, err := ApplyVerifiedPayment(plan, plan.Stages[0].ID, dec("500"), time.Now())
	require.NoError(t, err)

	assertDec(t, "200", out.ExcessCredit)
	s2 := plan.Stages[1]
	assert.Equal(t, entity.PaymentStageStatusPending, s2.Status)
	assertDec(t, "200", s2.CreditApplied)
	assertDec(t, "200", s2.AmountPaid)
	assertDec(t, "200", s2.RemainingBalance)
	assert.Equal(t, entity.PaymentStageStatusPending, plan.Stages[2].Status)
	assertDec(t, "500", OutstandingBalance(plan))
}

func TestApplyVerifiedPayment_PartialPayment(t *testing.T) {
	plan := newPlan(t, "1000", "30", "40", "30")
	stage := &plan.Stages[0]
	stage.Status = entity.PaymentStageStatusProofSubmitted

	out, err := ApplyVerifiedPayment(plan, stage.ID, dec("100"), time.Now())
	require.NoError(t, err)

	assert.False(t, out.StageSettled)
	assert.Equal(t, entity.PaymentStageStatusPending, stage.Status)
	assertDec(t, "100", stage.AmountPaid)
	assertDec(t, "200", stage.RemainingBalance)
	assert.True(t, stage.AcceptsProof())
	assert.False(t, plan.Immutable)

	// a second proof settles the rest
	stage.Status = entity.PaymentStageStatusProofSubmitted
	out, err = ApplyVerifiedPayment(plan, stage.ID, dec("200"), time.Now())
	require.NoError(t, err)
	assert.True(t, out.StageSettled)
	assertDec(t, "300", stage.AmountPaid)
	assertDec(t, "0", out.ExcessCredit)
	assert.True(t, plan.Immutable)
}

func TestApplyVerifiedPayment_UnappliedCreditGoesToPlanBalance(t *testing.T) {
	plan := newPlan(t, "1000", "100")
	plan.Stages[0].Status = entity.PaymentStageStatusProofSubmitted

	out, err := ApplyVerifiedPayment(plan, plan.Stages[0].ID, dec("1200.005"), time.Now())
	require.NoError(t, err)

	assertDec(t, "200.01", out.ExcessCredit)
	assertDec(t, "200.01", out.UnappliedCredit)
	assertDec(t, "200.01", plan.CreditBalance)
	assertDec(t, "1000", plan.Stages[0].AmountPaid)
}

func TestApplyVerifiedPayment_SkipsStagesAwaitingReview(t *testing.T) {
	plan := newPlan(t, "1000", "30", "40", "30")
	plan.Stages[0].Status = entity.PaymentStageStatusProofSubmitted
	plan.Stages[1].Status = entity.PaymentStageStatusProofSubmitted

	out, err := ApplyVerifiedPayment(plan, plan.Stages[0].ID, dec("400"), time.Now())
	require.NoError(t, err)

	require.Len(t, out.CarriedForward, 1)
	assert.Equal(t, 3, out.CarriedForward[0].Sequence)
	assertDec(t, "0", plan.Stages[1].CreditApplied)
	assertDec(t, "100", plan.Stages[2].CreditApplied)
}

func TestApplyVerifiedPayment_Rejections(t *testing.T) {
	plan := newPlan(t, "1000", "50", "50")

	_, err := ApplyVerifiedPayment(plan, uuid.New(), dec("10"), time.Now())
	assert.ErrorIs(t, err, ErrStageNotFound)

	_, err = ApplyVerifiedPayment(plan, plan.Stages[0].ID, dec("0"), time.Now())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// a pending stage has no proof to verify
	_, err = ApplyVerifiedPayment(plan, plan.Stages[0].ID, dec("100"), time.Now())
	assert.ErrorIs(t, err, transition.ErrInvalidTransition)

	plan.Stages[0].Status = entity.PaymentStageStatusVerified
	_, err = ApplyVerifiedPayment(plan, plan.Stages[0].ID, dec("500"), time.Now())
	assert.ErrorIs(t, err, transition.ErrInvalidTransition)
}

func TestApplyVerifiedPayment_CreditNeverSettlesEarlierStages(t *testing.T) {
	plan := newPlan(t, "1000", "30", "40", "30")
	plan.Stages[1].Status = entity.PaymentStageStatusProofSubmitted

	out, err := ApplyVerifiedPayment(plan, plan.Stages[1].ID, dec("700"), time.Now())
	require.NoError(t, err)

	assertDec(t, "300", out.ExcessCredit)
	require.Len(t, out.CarriedForward, 1)
	assert.Equal(t, 3, out.CarriedForward[0].Sequence)
	assertDec(t, "300", out.CarriedForward[0].Amount)
	assertDec(t, "0", out.UnappliedCredit)

	first := plan.Stages[0]
	assert.Equal(t, entity.PaymentStageStatusPending, first.Status)
	assertDec(t, "0", first.CreditApplied)
	assertDec(t, "0", first.AmountPaid)
	assertDec(t, "300", first.RemainingBalance)

	assert.Equal(t, entity.PaymentStageStatusVerified, plan.Stages[2].Status)
	assertDec(t, "300", plan.Stages[2].CreditApplied)
	assert.ElementsMatch(t, []uuid.UUID{plan.Stages[1].ID, plan.Stages[2].ID}, out.VerifiedStages)
	assertDec(t, "300", OutstandingBalance(plan))
}

func TestApplyVerifiedPayment_LastStageExcessStaysOnPlan(t *testing.T) {
	plan := newPlan(t, "1000", "50", "50")
	plan.Stages[1].Status = entity.PaymentStageStatusProofSubmitted

	out, err := ApplyVerifiedPayment(plan, plan.Stages[1].ID, dec("800"), time.Now())
	require.NoError(t, err)

	assert.Empty(t, out.CarriedForward)
	assertDec(t, "300", out.UnappliedCredit)
	assertDec(t, "300", plan.CreditBalance)
	assert.Equal(t, entity.PaymentStageStatusPending, plan.Stages[0].Status)
	assertDec(t, "500", plan.Stages[0].RemainingBalance)
}

package usecase

import (
	"context"
	"fmt"

	"fabrication-workflow/internal/converter"
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/reconciliation"
	"fabrication-workflow/internal/domain/repository"
	"fabrication-workflow/internal/domain/transition"
	"fabrication-workflow/internal/service"
	"fabrication-workflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound        = apperror.NotFound("payment_plan_not_found", "Payment plan not found")
	ErrPaymentNotFound     = apperror.NotFound("payment_not_found", "Payment not found")
	ErrActivePlanExists    = apperror.Conflict("payment_plan_exists", "This project already has a payment plan")
	ErrPlanImmutable       = apperror.Conflict("payment_plan_immutable", "The payment plan is locked because a payment was already verified")
	ErrPlanHasPayments     = apperror.Conflict("payment_plan_has_payments", "The payment plan already has recorded payments and can no longer be changed")
	ErrProjectNotApproved  = apperror.Conflict("project_not_approved", "A payment plan can only be created for an approved project")
	ErrProjectNotBilling   = apperror.Conflict("project_not_awaiting_payment", "This project is not accepting payments")
	ErrPaymentNotPending   = apperror.Conflict("payment_not_pending", "Only payments awaiting review can be verified or declined")
	ErrInvalidMethod       = apperror.Validation("invalid_payment_method", "Unknown payment method")
	ErrDeclineReasonNeeded = apperror.Validation("decline_reason_required", "A reason is required to decline a payment")
)

const DefaultReceiptPrefix = "RCP"

type PaymentUsecase interface {
	CreatePlan(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.CreatePaymentPlanRequest) (*dto.PaymentPlanResponse, error)
	UpdatePlan(ctx context.Context, actor entity.Actor, planID uuid.UUID, req *dto.UpdatePaymentPlanRequest) (*dto.PaymentPlanResponse, error)
	GetPlan(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.PaymentPlanResponse, error)
	SubmitProof(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.SubmitPaymentRequest) (*dto.PaymentResponse, error)
	Verify(ctx context.Context, actor entity.Actor, paymentID uuid.UUID) (*dto.VerifyPaymentResponse, error)
	Decline(ctx context.Context, actor entity.Actor, paymentID uuid.UUID, req *dto.DeclinePaymentRequest) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.PaymentListResponse, error)
	ListPending(ctx context.Context, actor entity.Actor) (*dto.PaymentListResponse, error)
}

type paymentUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	chain         *workflowChain
	planRepo      repository.PaymentPlanRepository
	paymentRepo   repository.PaymentRepository
	receiptRepo   repository.ReceiptSequenceRepository
	projectRepo   repository.ProjectRepository
	reservation   *service.ReservationService
	audit         AuditRecorder
	notifier      Notifier
	receiptPrefix string
}

func NewPaymentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	planRepo repository.PaymentPlanRepository,
	paymentRepo repository.PaymentRepository,
	receiptRepo repository.ReceiptSequenceRepository,
	projectRepo repository.ProjectRepository,
	appointmentRepo repository.AppointmentRepository,
	intakeRepo repository.VisitIntakeRepository,
	reservation *service.ReservationService,
	audit AuditRecorder,
	notifier Notifier,
	receiptPrefix string,
) PaymentUsecase {
	if receiptPrefix == "" {
		receiptPrefix = DefaultReceiptPrefix
	}
	return &paymentUsecase{
		db:            db,
		log:           log,
		chain:         newWorkflowChain(db, log, appointmentRepo, intakeRepo, projectRepo, reservation, audit, notifier),
		planRepo:      planRepo,
		paymentRepo:   paymentRepo,
		receiptRepo:   receiptRepo,
		projectRepo:   projectRepo,
		reservation:   reservation,
		audit:         audit,
		notifier:      notifier,
		receiptPrefix: receiptPrefix,
	}
}

// CreatePlan splits the project total into stages and opens the project for payment
func (u *paymentUsecase) CreatePlan(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.CreatePaymentPlanRequest) (*dto.PaymentPlanResponse, error) {
	stages, err := reconciliation.BuildStages(req.TotalAmount, req.Percentages)
	if err != nil {
		return nil, err
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	project, err := findProject(tx, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityManage); err != nil {
		return nil, err
	}
	if project.Status != entity.ProjectStatusApproved {
		return nil, ErrProjectNotApproved.WithDetails(map[string]interface{}{"status": project.Status})
	}

	existing, err := u.planRepo.FindActiveByProject(tx, project.ID)
	if err != nil {
		u.log.Warnf("Failed to find payment plan of project %s: %+v", project.ID, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrActivePlanExists
	}

	plan := &entity.PaymentPlan{
		ProjectID:     project.ID,
		Active:        true,
		TotalAmount:   reconciliation.Round2(req.TotalAmount),
		CreditBalance: decimal.Zero,
		CreatedBy:     actor.UserID,
		Stages:        stages,
	}
	if err := u.planRepo.Create(tx, plan); err != nil {
		u.log.Warnf("Failed to create payment plan for project %s: %+v", project.ID, err)
		return nil, err
	}

	fx.audit(entity.AuditActionPlanCreate, actor, entity.AuditTargetPaymentPlan, plan.ID.String(), map[string]interface{}{
		"project_id":   project.ID,
		"total_amount": plan.TotalAmount.String(),
		"stages":       len(plan.Stages),
	})
	if err := u.chain.advanceProject(tx, project, entity.ProjectStatusPaymentPending, actor, fx, nil); err != nil {
		return nil, err
	}
	fx.notify(notifyUser(project.CustomerID, entity.NotificationCategoryPayment,
		"Payment plan ready",
		fmt.Sprintf("The payment plan for %q is ready, first installment %s", project.Title, plan.Stages[0].TargetAmount.StringFixed(2)),
		projectLink(project)))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit payment plan for project %s: %+v", project.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.PaymentPlanToResponse(plan), nil
}

// UpdatePlan recomputes the stages of a plan nobody has paid into yet.
// Any recorded proof, even a declined one, keeps the stages in place.
func (u *paymentUsecase) UpdatePlan(ctx context.Context, actor entity.Actor, planID uuid.UUID, req *dto.UpdatePaymentPlanRequest) (*dto.PaymentPlanResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	plan, err := u.findPlanForUpdate(tx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Immutable {
		return nil, ErrPlanImmutable
	}

	project, err := findProject(tx, u.log, u.projectRepo, plan.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityManage); err != nil {
		return nil, err
	}

	if plan.HasSettlement() {
		return nil, ErrPlanHasPayments
	}
	recorded, err := u.paymentRepo.CountByPlan(tx, plan.ID)
	if err != nil {
		u.log.Warnf("Failed to count payments of plan %s: %+v", plan.ID, err)
		return nil, err
	}
	if recorded > 0 {
		return nil, ErrPlanHasPayments.WithDetails(map[string]interface{}{"payments": recorded})
	}

	stages, err := reconciliation.BuildStages(req.TotalAmount, req.Percentages)
	if err != nil {
		return nil, err
	}
	if err := u.planRepo.ReplaceStages(tx, plan.ID, stages); err != nil {
		u.log.Warnf("Failed to replace stages of plan %s: %+v", plan.ID, err)
		return nil, err
	}

	previousTotal := plan.TotalAmount
	plan.TotalAmount = reconciliation.Round2(req.TotalAmount)
	plan.Stages = stages
	if err := u.planRepo.Update(tx, plan); err != nil {
		u.log.Warnf("Failed to update plan %s: %+v", plan.ID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit plan %s: %+v", plan.ID, err)
		return nil, err
	}

	u.audit.Record(ctx, entity.AuditEvent{
		Action:     entity.AuditActionPlanUpdate,
		Actor:      actor,
		TargetType: entity.AuditTargetPaymentPlan,
		TargetID:   plan.ID.String(),
		Details: map[string]interface{}{
			"previous_total": previousTotal.String(),
			"total_amount":   plan.TotalAmount.String(),
			"stages":         len(stages),
		},
	})

	return converter.PaymentPlanToResponse(plan), nil
}

func (u *paymentUsecase) GetPlan(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.PaymentPlanResponse, error) {
	db := u.db.WithContext(ctx)
	project, err := findProject(db, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityView); err != nil {
		return nil, err
	}

	plan, err := u.planRepo.FindActiveByProject(db, project.ID)
	if err != nil {
		u.log.Warnf("Failed to find payment plan of project %s: %+v", project.ID, err)
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return converter.PaymentPlanToResponse(plan), nil
}

// SubmitProof files a proof of payment against one stage of the project's plan
func (u *paymentUsecase) SubmitProof(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.SubmitPaymentRequest) (*dto.PaymentResponse, error) {
	method := entity.PaymentMethod(req.Method)
	if !entity.IsValidPaymentMethod(method) {
		return nil, ErrInvalidMethod
	}
	amount := reconciliation.Round2(req.Amount)
	if !amount.IsPositive() {
		return nil, reconciliation.ErrInvalidAmount
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	project, err := findProject(tx, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilitySubmitPayment); err != nil {
		return nil, err
	}
	if project.Status != entity.ProjectStatusPaymentPending {
		return nil, ErrProjectNotBilling.WithDetails(map[string]interface{}{"status": project.Status})
	}

	plan, err := u.planRepo.FindActiveByProject(tx, project.ID)
	if err != nil {
		u.log.Warnf("Failed to find payment plan of project %s: %+v", project.ID, err)
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if plan, err = u.findPlanForUpdate(tx, plan.ID); err != nil {
		return nil, err
	}

	stage := plan.StageByID(req.StageID)
	if stage == nil {
		return nil, reconciliation.ErrStageNotFound
	}
	if err := transition.PaymentStage.Assert(stage.Status, entity.PaymentStageStatusProofSubmitted); err != nil {
		return nil, err
	}

	payment := &entity.Payment{
		PlanID:          plan.ID,
		StageID:         stage.ID,
		ProjectID:       project.ID,
		SubmittedBy:     actor.UserID,
		Method:          method,
		Amount:          amount,
		ReferenceNumber: req.ReferenceNumber,
		ProofKey:        req.ProofKey,
		Status:          entity.PaymentStatusProofSubmitted,
	}
	if err := u.paymentRepo.Create(tx, payment); err != nil {
		u.log.Warnf("Failed to create payment for stage %s: %+v", stage.ID, err)
		return nil, err
	}

	stage.Status = entity.PaymentStageStatusProofSubmitted
	if err := u.planRepo.UpdateStage(tx, stage); err != nil {
		u.log.Warnf("Failed to update stage %s: %+v", stage.ID, err)
		return nil, err
	}

	fx.audit(entity.AuditActionPaymentSubmit, actor, entity.AuditTargetPayment, payment.ID.String(), map[string]interface{}{
		"project_id": project.ID,
		"stage_id":   stage.ID,
		"sequence":   stage.Sequence,
		"amount":     amount.String(),
		"method":     method,
	})
	fx.notify(notifyRole(entity.RoleAgent, entity.NotificationCategoryPayment,
		"Payment proof submitted",
		fmt.Sprintf("%s of %s submitted for %q", stage.Label, amount.StringFixed(2), project.Title),
		"/payments/"+payment.ID.String()))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit payment for stage %s: %+v", stage.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.PaymentToResponse(payment), nil
}

// Verify accepts a submitted proof and settles it against the plan.
//
// Flow:
// 1. Claim the payment with a conditional update (a repeat finds it verified
// and returns the current state unchanged)
// 2. Apply the amount to its stage and carry any excess forward
// 3. Number the receipt from the per-year sequence
// 4. Persist stages and plan; a fully paid plan starts production
func (u *paymentUsecase) Verify(ctx context.Context, actor entity.Actor, paymentID uuid.UUID) (*dto.VerifyPaymentResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	payment, err := u.findPayment(tx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == entity.PaymentStatusVerified {
		tx.Rollback()
		return u.alreadyVerified(ctx, payment)
	}
	if payment.Status != entity.PaymentStatusProofSubmitted {
		return nil, ErrPaymentNotPending.WithDetails(map[string]interface{}{"status": payment.Status})
	}

	plan, err := u.findPlanForUpdate(tx, payment.PlanID)
	if err != nil {
		return nil, err
	}
	project, err := findProject(tx, u.log, u.projectRepo, payment.ProjectID)
	if err != nil {
		return nil, err
	}

	now := u.reservation.Now()
	verifier := actor.UserID
	claimed, err := u.paymentRepo.UpdateStatus(tx, payment.ID, entity.PaymentStatusProofSubmitted, map[string]interface{}{
		"status":      entity.PaymentStatusVerified,
		"verified_by": verifier,
		"verified_at": now,
	})
	if err != nil {
		u.log.Warnf("Failed to claim payment %s: %+v", payment.ID, err)
		return nil, err
	}
	if claimed == 0 {
		tx.Rollback()
		current, err := u.findPayment(u.db.WithContext(ctx), payment.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == entity.PaymentStatusVerified {
			return u.alreadyVerified(ctx, current)
		}
		return nil, ErrConcurrentUpdate
	}

	outcome, err := reconciliation.ApplyVerifiedPayment(plan, payment.StageID, payment.Amount, now)
	if err != nil {
		return nil, err
	}

	receipt, err := u.nextReceiptNumber(tx, now.Year())
	if err != nil {
		return nil, err
	}
	if _, err := u.paymentRepo.UpdateStatus(tx, payment.ID, entity.PaymentStatusVerified, map[string]interface{}{
		"receipt_number": receipt,
		"excess_credit":  outcome.ExcessCredit,
	}); err != nil {
		u.log.Warnf("Failed to stamp receipt on payment %s: %+v", payment.ID, err)
		return nil, err
	}
	payment.Status = entity.PaymentStatusVerified
	payment.VerifiedBy = &verifier
	payment.VerifiedAt = &now
	payment.ReceiptNumber = &receipt
	payment.ExcessCredit = outcome.ExcessCredit

	for i := range plan.Stages {
		if err := u.planRepo.UpdateStage(tx, &plan.Stages[i]); err != nil {
			u.log.Warnf("Failed to update stage %s: %+v", plan.Stages[i].ID, err)
			return nil, err
		}
	}
	if err := u.planRepo.Update(tx, plan); err != nil {
		u.log.Warnf("Failed to update plan %s: %+v", plan.ID, err)
		return nil, err
	}

	fx.audit(entity.AuditActionPaymentVerify, actor, entity.AuditTargetPayment, payment.ID.String(), map[string]interface{}{
		"receipt_number":   receipt,
		"amount":           payment.Amount.String(),
		"stage_settled":    outcome.StageSettled,
		"excess_credit":    outcome.ExcessCredit.String(),
		"unapplied_credit": outcome.UnappliedCredit.String(),
		"carried_forward":  len(outcome.CarriedForward),
		"plan_locked":      outcome.PlanLocked,
	})
	fx.notify(notifyUser(project.CustomerID, entity.NotificationCategoryPayment,
		"Payment verified",
		fmt.Sprintf("Your payment of %s was verified, receipt %s", payment.Amount.StringFixed(2), receipt),
		projectLink(project)))

	if plan.AllVerified() && project.Status == entity.ProjectStatusPaymentPending {
		if err := u.chain.advanceProject(tx, project, entity.ProjectStatusProduction, actor, fx, nil); err != nil {
			return nil, err
		}
		fx.notify(notifyRole(entity.RoleAdmin, entity.NotificationCategoryProduction,
			"Ready for production",
			fmt.Sprintf("Project %q is fully paid and can go to the shop floor", project.Title),
			projectLink(project)))
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit verification of payment %s: %+v", payment.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return &dto.VerifyPaymentResponse{
		Payment:        converter.PaymentToResponse(payment),
		Plan:           converter.PaymentPlanToResponse(plan),
		CarriedForward: converter.AllocationsToResponses(outcome.CarriedForward),
		ProjectStatus:  string(project.Status),
	}, nil
}

// Decline rejects a submitted proof; the stage accepts a new one afterwards
func (u *paymentUsecase) Decline(ctx context.Context, actor entity.Actor, paymentID uuid.UUID, req *dto.DeclinePaymentRequest) (*dto.PaymentResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}
	if req == nil || req.Reason == "" {
		return nil, ErrDeclineReasonNeeded
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	payment, err := u.findPayment(tx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != entity.PaymentStatusProofSubmitted {
		return nil, ErrPaymentNotPending.WithDetails(map[string]interface{}{"status": payment.Status})
	}

	plan, err := u.findPlanForUpdate(tx, payment.PlanID)
	if err != nil {
		return nil, err
	}
	stage := plan.StageByID(payment.StageID)
	if stage == nil {
		return nil, reconciliation.ErrStageNotFound
	}
	if err := transition.PaymentStage.Assert(stage.Status, entity.PaymentStageStatusDeclined); err != nil {
		return nil, err
	}

	affected, err := u.paymentRepo.UpdateStatus(tx, payment.ID, entity.PaymentStatusProofSubmitted, map[string]interface{}{
		"status":         entity.PaymentStatusDeclined,
		"decline_reason": req.Reason,
	})
	if err != nil {
		u.log.Warnf("Failed to decline payment %s: %+v", payment.ID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrConcurrentUpdate
	}
	payment.Status = entity.PaymentStatusDeclined
	payment.DeclineReason = req.Reason

	stage.Status = entity.PaymentStageStatusDeclined
	if err := u.planRepo.UpdateStage(tx, stage); err != nil {
		u.log.Warnf("Failed to update stage %s: %+v", stage.ID, err)
		return nil, err
	}

	fx.audit(entity.AuditActionPaymentDecline, actor, entity.AuditTargetPayment, payment.ID.String(), map[string]interface{}{
		"reason": req.Reason,
	})
	fx.notify(notifyUser(payment.SubmittedBy, entity.NotificationCategoryPayment,
		"Payment declined",
		fmt.Sprintf("Your payment of %s was declined: %s", payment.Amount.StringFixed(2), req.Reason),
		"/payments/"+payment.ID.String()))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit decline of payment %s: %+v", payment.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.PaymentToResponse(payment), nil
}

func (u *paymentUsecase) ListPayments(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.PaymentListResponse, error) {
	db := u.db.WithContext(ctx)
	project, err := findProject(db, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityView); err != nil {
		return nil, err
	}

	payments, err := u.paymentRepo.FindByProject(db, project.ID)
	if err != nil {
		u.log.Warnf("Failed to list payments of project %s: %+v", project.ID, err)
		return nil, err
	}
	return &dto.PaymentListResponse{
		Payments: converter.PaymentsToResponses(payments),
		Total:    len(payments),
	}, nil
}

// ListPending is the verification queue, oldest first
func (u *paymentUsecase) ListPending(ctx context.Context, actor entity.Actor) (*dto.PaymentListResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}
	payments, err := u.paymentRepo.FindPending(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list pending payments: %+v", err)
		return nil, err
	}
	return &dto.PaymentListResponse{
		Payments: converter.PaymentsToResponses(payments),
		Total:    len(payments),
	}, nil
}

func (u *paymentUsecase) alreadyVerified(ctx context.Context, payment *entity.Payment) (*dto.VerifyPaymentResponse, error) {
	db := u.db.WithContext(ctx)
	plan, err := u.planRepo.FindByID(db, payment.PlanID)
	if err != nil {
		u.log.Warnf("Failed to find plan %s: %+v", payment.PlanID, err)
		return nil, err
	}
	project, err := findProject(db, u.log, u.projectRepo, payment.ProjectID)
	if err != nil {
		return nil, err
	}
	return &dto.VerifyPaymentResponse{
		Payment:        converter.PaymentToResponse(payment),
		Plan:           converter.PaymentPlanToResponse(plan),
		CarriedForward: []dto.CreditAllocationResponse{},
		ProjectStatus:  string(project.Status),
		AlreadyApplied: true,
	}, nil
}

// nextReceiptNumber formats PREFIX-YYYY-NNNNN from the yearly counter
func (u *paymentUsecase) nextReceiptNumber(tx *gorm.DB, year int) (string, error) {
	n, err := u.receiptRepo.Next(tx, year)
	if err != nil {
		u.log.Warnf("Failed to allocate receipt number for %d: %+v", year, err)
		return "", fmt.Errorf("allocate receipt number: %w", err)
	}
	return fmt.Sprintf("%s-%04d-%05d", u.receiptPrefix, year, n), nil
}

func (u *paymentUsecase) findPlanForUpdate(tx *gorm.DB, id uuid.UUID) (*entity.PaymentPlan, error) {
	plan, err := u.planRepo.FindByIDForUpdate(tx, id)
	if err != nil {
		u.log.Warnf("Failed to lock plan %s: %+v", id, err)
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (u *paymentUsecase) findPayment(db *gorm.DB, id uuid.UUID) (*entity.Payment, error) {
	payment, err := u.paymentRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find payment %s: %+v", id, err)
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

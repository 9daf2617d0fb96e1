package handler

import (
	"net/http"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/usecase"
	"fabrication-workflow/pkg/response"
	"fabrication-workflow/pkg/validator"
)

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

func (h *PaymentHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}
	var req dto.CreatePaymentPlanRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	plan, err := h.paymentUsecase.CreatePlan(r.Context(), actor, projectID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create payment plan")
		return
	}

	response.Success(w, http.StatusCreated, "Payment plan created successfully", plan)
}

func (h *PaymentHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	planID, ok := pathUUID(w, r, "id", "payment plan")
	if !ok {
		return
	}
	var req dto.UpdatePaymentPlanRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	plan, err := h.paymentUsecase.UpdatePlan(r.Context(), actor, planID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update payment plan")
		return
	}

	response.Success(w, http.StatusOK, "Payment plan updated successfully", plan)
}

func (h *PaymentHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}

	plan, err := h.paymentUsecase.GetPlan(r.Context(), actor, projectID)
	if err != nil {
		response.FromError(w, err, "Failed to get payment plan")
		return
	}

	response.Success(w, http.StatusOK, "Payment plan retrieved successfully", plan)
}

func (h *PaymentHandler) SubmitProof(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}
	var req dto.SubmitPaymentRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	payment, err := h.paymentUsecase.SubmitProof(r.Context(), actor, projectID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to submit payment")
		return
	}

	response.Success(w, http.StatusCreated, "Payment submitted successfully", payment)
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(w, r, "id", "payment")
	if !ok {
		return
	}

	result, err := h.paymentUsecase.Verify(r.Context(), actor, paymentID)
	if err != nil {
		response.FromError(w, err, "Failed to verify payment")
		return
	}

	message := "Payment verified successfully"
	if result.AlreadyApplied {
		message = "Payment was already verified"
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *PaymentHandler) DeclinePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(w, r, "id", "payment")
	if !ok {
		return
	}
	var req dto.DeclinePaymentRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	payment, err := h.paymentUsecase.Decline(r.Context(), actor, paymentID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to decline payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment declined", payment)
}

func (h *PaymentHandler) GetProjectPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}

	payments, err := h.paymentUsecase.ListPayments(r.Context(), actor, projectID)
	if err != nil {
		response.FromError(w, err, "Failed to get payments")
		return
	}

	response.Success(w, http.StatusOK, "Payments retrieved successfully", payments)
}

func (h *PaymentHandler) GetPendingPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	payments, err := h.paymentUsecase.ListPending(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get payments")
		return
	}

	response.Success(w, http.StatusOK, "Payments retrieved successfully", payments)
}

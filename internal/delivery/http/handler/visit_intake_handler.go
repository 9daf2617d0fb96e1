package handler

import (
	"net/http"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/usecase"
	"fabrication-workflow/pkg/response"
	"fabrication-workflow/pkg/validator"
)

type VisitIntakeHandler struct {
	intakeUsecase usecase.VisitIntakeUsecase
	validator     *validator.CustomValidator
}

func NewVisitIntakeHandler(intakeUsecase usecase.VisitIntakeUsecase, validator *validator.CustomValidator) *VisitIntakeHandler {
	return &VisitIntakeHandler{
		intakeUsecase: intakeUsecase,
		validator:     validator,
	}
}

func (h *VisitIntakeHandler) GetIntake(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	intakeID, ok := pathUUID(w, r, "id", "intake")
	if !ok {
		return
	}

	intake, err := h.intakeUsecase.Get(r.Context(), actor, intakeID)
	if err != nil {
		response.FromError(w, err, "Failed to get intake")
		return
	}

	response.Success(w, http.StatusOK, "Intake retrieved successfully", intake)
}

func (h *VisitIntakeHandler) GetIntakeByAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	intake, err := h.intakeUsecase.GetByAppointment(r.Context(), actor, appointmentID)
	if err != nil {
		response.FromError(w, err, "Failed to get intake")
		return
	}

	response.Success(w, http.StatusOK, "Intake retrieved successfully", intake)
}

func (h *VisitIntakeHandler) GetMyIntakes(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	intakes, err := h.intakeUsecase.ListMine(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get intakes")
		return
	}

	response.Success(w, http.StatusOK, "Intakes retrieved successfully", intakes)
}

func (h *VisitIntakeHandler) GetSubmittedIntakes(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	intakes, err := h.intakeUsecase.ListSubmitted(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get intakes")
		return
	}

	response.Success(w, http.StatusOK, "Intakes retrieved successfully", intakes)
}

func (h *VisitIntakeHandler) UpdateIntake(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	intakeID, ok := pathUUID(w, r, "id", "intake")
	if !ok {
		return
	}
	var req dto.UpdateVisitIntakeRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	intake, err := h.intakeUsecase.Update(r.Context(), actor, intakeID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update intake")
		return
	}

	response.Success(w, http.StatusOK, "Intake updated successfully", intake)
}

func (h *VisitIntakeHandler) SubmitIntake(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	intakeID, ok := pathUUID(w, r, "id", "intake")
	if !ok {
		return
	}

	result, err := h.intakeUsecase.Submit(r.Context(), actor, intakeID)
	if err != nil {
		response.FromError(w, err, "Failed to submit intake")
		return
	}

	response.Success(w, http.StatusOK, "Intake submitted successfully", result)
}

func (h *VisitIntakeHandler) ReturnIntake(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	intakeID, ok := pathUUID(w, r, "id", "intake")
	if !ok {
		return
	}
	var req dto.ReturnVisitIntakeRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	intake, err := h.intakeUsecase.Return(r.Context(), actor, intakeID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to return intake")
		return
	}

	response.Success(w, http.StatusOK, "Intake returned to staff", intake)
}

func (h *VisitIntakeHandler) AcceptIntake(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	intakeID, ok := pathUUID(w, r, "id", "intake")
	if !ok {
		return
	}

	intake, err := h.intakeUsecase.Accept(r.Context(), actor, intakeID)
	if err != nil {
		response.FromError(w, err, "Failed to accept intake")
		return
	}

	response.Success(w, http.StatusOK, "Intake accepted successfully", intake)
}

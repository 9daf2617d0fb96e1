package handler

import (
	"net/http"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/usecase"
	"fabrication-workflow/pkg/response"
	"fabrication-workflow/pkg/validator"
)

type FabricationHandler struct {
	fabricationUsecase usecase.FabricationUsecase
	validator          *validator.CustomValidator
}

func NewFabricationHandler(fabricationUsecase usecase.FabricationUsecase, validator *validator.CustomValidator) *FabricationHandler {
	return &FabricationHandler{
		fabricationUsecase: fabricationUsecase,
		validator:          validator,
	}
}

func (h *FabricationHandler) RecordUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}
	var req dto.RecordFabricationRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	result, err := h.fabricationUsecase.RecordUpdate(r.Context(), actor, projectID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to record fabrication update")
		return
	}

	response.Success(w, http.StatusCreated, "Fabrication update recorded", result)
}

func (h *FabricationHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}

	history, err := h.fabricationUsecase.History(r.Context(), actor, projectID)
	if err != nil {
		response.FromError(w, err, "Failed to get fabrication history")
		return
	}

	response.Success(w, http.StatusOK, "Fabrication history retrieved successfully", history)
}

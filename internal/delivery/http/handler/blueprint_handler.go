package handler

import (
	"net/http"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/usecase"
	"fabrication-workflow/pkg/response"
	"fabrication-workflow/pkg/validator"
)

type BlueprintHandler struct {
	blueprintUsecase usecase.BlueprintUsecase
	validator        *validator.CustomValidator
}

func NewBlueprintHandler(blueprintUsecase usecase.BlueprintUsecase, validator *validator.CustomValidator) *BlueprintHandler {
	return &BlueprintHandler{
		blueprintUsecase: blueprintUsecase,
		validator:        validator,
	}
}

func (h *BlueprintHandler) UploadInitial(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}
	var req dto.UploadBlueprintRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	blueprint, err := h.blueprintUsecase.UploadInitial(r.Context(), actor, projectID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to upload blueprint")
		return
	}

	response.Success(w, http.StatusCreated, "Blueprint uploaded successfully", blueprint)
}

func (h *BlueprintHandler) UploadRevision(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}
	var req dto.UploadBlueprintRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	blueprint, err := h.blueprintUsecase.UploadRevision(r.Context(), actor, projectID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to upload revision")
		return
	}

	response.Success(w, http.StatusCreated, "Revision uploaded successfully", blueprint)
}

func (h *BlueprintHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	blueprintID, ok := pathUUID(w, r, "id", "blueprint")
	if !ok {
		return
	}
	var req dto.ApproveBlueprintRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	result, err := h.blueprintUsecase.Approve(r.Context(), actor, blueprintID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to approve blueprint")
		return
	}

	response.Success(w, http.StatusOK, "Blueprint approval recorded", result)
}

func (h *BlueprintHandler) RequestRevision(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	blueprintID, ok := pathUUID(w, r, "id", "blueprint")
	if !ok {
		return
	}
	var req dto.RequestRevisionRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	blueprint, err := h.blueprintUsecase.RequestRevision(r.Context(), actor, blueprintID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to request revision")
		return
	}

	response.Success(w, http.StatusOK, "Revision requested successfully", blueprint)
}

func (h *BlueprintHandler) GetBlueprint(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	blueprintID, ok := pathUUID(w, r, "id", "blueprint")
	if !ok {
		return
	}

	blueprint, err := h.blueprintUsecase.Get(r.Context(), actor, blueprintID)
	if err != nil {
		response.FromError(w, err, "Failed to get blueprint")
		return
	}

	response.Success(w, http.StatusOK, "Blueprint retrieved successfully", blueprint)
}

func (h *BlueprintHandler) GetProjectBlueprints(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}

	blueprints, err := h.blueprintUsecase.List(r.Context(), actor, projectID)
	if err != nil {
		response.FromError(w, err, "Failed to get blueprints")
		return
	}

	response.Success(w, http.StatusOK, "Blueprints retrieved successfully", blueprints)
}

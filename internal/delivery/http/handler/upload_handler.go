package handler

import (
	"net/http"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/usecase"
	"fabrication-workflow/pkg/response"
	"fabrication-workflow/pkg/validator"
)

type UploadHandler struct {
	uploadUsecase usecase.UploadUsecase
	validator     *validator.CustomValidator
}

func NewUploadHandler(uploadUsecase usecase.UploadUsecase, validator *validator.CustomValidator) *UploadHandler {
	return &UploadHandler{
		uploadUsecase: uploadUsecase,
		validator:     validator,
	}
}

func (h *UploadHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req dto.PresignUploadRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	presigned, err := h.uploadUsecase.PresignUpload(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err, "Failed to prepare upload")
		return
	}

	response.Success(w, http.StatusOK, "Upload URL issued", presigned)
}

func (h *UploadHandler) PresignDownload(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req dto.PresignDownloadRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	presigned, err := h.uploadUsecase.PresignDownload(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err, "Failed to prepare download")
		return
	}

	response.Success(w, http.StatusOK, "Download URL issued", presigned)
}

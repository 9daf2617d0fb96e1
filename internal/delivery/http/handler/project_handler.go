package handler

import (
	"net/http"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/usecase"
	"fabrication-workflow/pkg/response"
	"fabrication-workflow/pkg/validator"

	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	projectUsecase usecase.ProjectUsecase
	validator      *validator.CustomValidator
}

func NewProjectHandler(projectUsecase usecase.ProjectUsecase, validator *validator.CustomValidator) *ProjectHandler {
	return &ProjectHandler{
		projectUsecase: projectUsecase,
		validator:      validator,
	}
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}

	project, err := h.projectUsecase.Get(r.Context(), actor, projectID)
	if err != nil {
		response.FromError(w, err, "Failed to get project")
		return
	}

	response.Success(w, http.StatusOK, "Project retrieved successfully", project)
}

func (h *ProjectHandler) GetMyProjects(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	projects, err := h.projectUsecase.ListMine(r.Context(), actor)
	if err != nil {
		response.FromError(w, err, "Failed to get projects")
		return
	}

	response.Success(w, http.StatusOK, "Projects retrieved successfully", projects)
}

func (h *ProjectHandler) GetAllProjects(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	filter := &dto.ProjectFilterRequest{Status: r.URL.Query().Get("status")}
	projects, err := h.projectUsecase.List(r.Context(), actor, filter)
	if err != nil {
		response.FromError(w, err, "Failed to get projects")
		return
	}

	response.Success(w, http.StatusOK, "Projects retrieved successfully", projects)
}

// GetAssignableUsers lists who can be assigned, optionally narrowed by ?role=design|production
func (h *ProjectHandler) GetAssignableUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	users, err := h.projectUsecase.ListAssignable(r.Context(), actor, r.URL.Query().Get("role"))
	if err != nil {
		response.FromError(w, err, "Failed to get assignable users")
		return
	}

	response.Success(w, http.StatusOK, "Users retrieved successfully", users)
}

func (h *ProjectHandler) AssignStaff(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}
	var req dto.AssignStaffRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	project, err := h.projectUsecase.AssignStaff(r.Context(), actor, projectID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to assign staff")
		return
	}

	response.Success(w, http.StatusOK, "Staff assigned successfully", project)
}

func (h *ProjectHandler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userId", "user")
	if !ok {
		return
	}

	project, err := h.projectUsecase.RemoveAssignment(r.Context(), actor, projectID, userID, mux.Vars(r)["role"])
	if err != nil {
		response.FromError(w, err, "Failed to remove assignment")
		return
	}

	response.Success(w, http.StatusOK, "Assignment removed successfully", project)
}

func (h *ProjectHandler) CancelProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "id", "project")
	if !ok {
		return
	}
	var req dto.CancelProjectRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	project, err := h.projectUsecase.Cancel(r.Context(), actor, projectID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to cancel project")
		return
	}

	response.Success(w, http.StatusOK, "Project cancelled successfully", project)
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fabrication-workflow/internal/delivery/http/middleware"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/pkg/response"
	"fabrication-workflow/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// actorFrom fails the request when the auth middleware did not run
func actorFrom(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
	}
	return actor, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes and validates a JSON request body. An empty body decodes to the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	if err := v.Validate(dst); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fabrication-workflow/pkg/apperror"
	"fabrication-workflow/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := map[apperror.Kind]int{
		apperror.KindNotFound:          http.StatusNotFound,
		apperror.KindInvalidTransition: http.StatusConflict,
		apperror.KindConflict:          http.StatusConflict,
		apperror.KindForbidden:         http.StatusForbidden,
		apperror.KindValidation:        http.StatusBadRequest,
		apperror.Kind("unknown"):       http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, response.StatusFor(kind), kind)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFromError_DomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperror.Conflict("plan_locked", "Payment plan is locked").WithDetails(map[string]interface{}{"plan_id": "p-1"})

	response.FromError(rec, err, "Failed to update plan")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Payment plan is locked", body["message"])
	assert.Equal(t, map[string]interface{}{
		"code":    "plan_locked",
		"details": map[string]interface{}{"plan_id": "p-1"},
	}, body["error"])
}

func TestFromError_InfrastructureErrorIsHidden(t *testing.T) {
	rec := httptest.NewRecorder()

	response.FromError(rec, errors.New("pq: connection refused"), "Failed to update plan")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Failed to update plan", body["message"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestSuccessWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()

	response.SuccessWithMeta(rec, http.StatusOK, "ok", []string{"a"}, &response.Meta{Page: 1, Limit: 10, Total: 1, TotalPages: 1})

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []interface{}{"a"}, body["data"])
	assert.Equal(t, float64(1), body["meta"].(map[string]interface{})["total"])
}

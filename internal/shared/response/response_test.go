package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"publishing-backend/internal/shared/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessEnvelope(t *testing.T) {
	c, w := newContext()

	Success(c, http.StatusCreated, "Organization created successfully", gin.H{"name": "Acme"})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Organization created successfully", body["message"])
	assert.Equal(t, "Acme", body["data"].(map[string]interface{})["name"])
	assert.NotContains(t, body, "error")
}

func TestErrorEnvelopeWithDetails(t *testing.T) {
	c, w := newContext()

	Error(c, fmt.Errorf("register: %w", apperr.FieldInvalid("company_name", "company name is required")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation error", body["error"])
	assert.Equal(t, "company name is required", body["details"].(map[string]interface{})["company_name"])
}

func TestErrorHidesInternalCause(t *testing.T) {
	c, w := newContext()

	Error(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestErrorMapsDenied(t *testing.T) {
	c, w := newContext()

	Error(c, apperr.Denied("ORGANIZATION_FORBIDDEN", "You do not own this organization"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ORGANIZATION_FORBIDDEN", body["code"])
	assert.NotContains(t, body, "details")
}

package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/yukikurage/project-management-api/internal/errors"
)

type sampleRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,trimmed,lowercase,min=3"`
	Status   string `json:"status" binding:"omitempty,task_status"`
}

func newContext(body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBind_Valid(t *testing.T) {
	Register()

	var req sampleRequest
	err := Bind(newContext(`{"email":"a@example.com","username":"alice","status":"done"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "alice", req.Username)
}

func TestBind_ValidationUsesJSONNames(t *testing.T) {
	Register()

	var req sampleRequest
	err := Bind(newContext(`{"email":"nope","username":"Al","status":"later"}`), &req)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Len(t, apiErr.Errors, 3)
	assert.Equal(t, map[string]string{"email": "Must be a valid email address"}, apiErr.Errors[0])
	assert.Equal(t, map[string]string{"username": "Must be lowercase"}, apiErr.Errors[1])
	assert.Equal(t, map[string]string{"status": "Must be one of: to_do, in_progress, done"}, apiErr.Errors[2])
}

func TestBind_Malformed(t *testing.T) {
	Register()

	var req sampleRequest
	err := Bind(newContext(`{"email":`), &req)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestBind_BodyTooLarge(t *testing.T) {
	Register()

	c := newContext(`{"email":"a@example.com","username":"` + strings.Repeat("a", 64) + `"}`)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 16)

	var req sampleRequest
	err := Bind(c, &req)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.Status)
}

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/emre/learnhub/internal/pkg/apperrors"
)

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "course not found", err: apperrors.ErrCourseNotFound, wantStatus: http.StatusNotFound, wantCode: "RES_001"},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", apperrors.ErrUserNotFound), wantStatus: http.StatusNotFound, wantCode: "RES_001"},
		{name: "forbidden", err: apperrors.NewForbiddenError("Only the course instructor can edit this course"), wantStatus: http.StatusForbidden, wantCode: "AUTH_005"},
		{name: "invalid credentials", err: apperrors.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantCode: "AUTH_001"},
		{name: "validation failed", err: fmt.Errorf("%w: password too short", apperrors.ErrValidationFailed), wantStatus: http.StatusBadRequest, wantCode: "VAL_001"},
		{name: "duplicate email", err: apperrors.ErrEmailAlreadyExists, wantStatus: http.StatusConflict, wantCode: "RES_002"},
		{name: "already enrolled", err: apperrors.ErrAlreadyEnrolled, wantStatus: http.StatusConflict, wantCode: "RES_002"},
		{name: "unknown error", err: errors.New("pool exhausted"), wantStatus: http.StatusInternalServerError, wantCode: "SRV_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestHandleAPIError_InternalDetailsHidden(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleAPIError(c, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), "Internal server error")
}

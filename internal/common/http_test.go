package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", Validationf("weight must be positive"), http.StatusBadRequest},
		{"not found", NotFoundf("spool not found"), http.StatusNotFound},
		{"conflict", Conflictf("accessory is in use"), http.StatusConflict},
		{"wrapped conflict", Conflictf("stock: %d left", 0), http.StatusConflict},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			RespondError(c, tc.err)
			assert.Equal(t, tc.expected, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

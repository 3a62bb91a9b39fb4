package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"voucher-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("wrap: %w", models.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", models.ErrInsufficientStock), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", models.ErrInactiveProduct), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", models.ErrDuplicateID), http.StatusConflict},
		{fmt.Errorf("wrap: %w", models.ErrAlreadyRedeemed), http.StatusConflict},
		{fmt.Errorf("wrap: %w", models.ErrAlreadyRefunded), http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)

		respondError(c, tc.err)

		assert.Equal(t, tc.status, recorder.Code, "error %v", tc.err)
	}
}

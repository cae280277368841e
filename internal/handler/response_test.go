package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"converso-go/pkg/errs"

	"github.com/gin-gonic/gin"
)

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", errs.ErrUnauthorized, http.StatusUnauthorized},
		{"not found", errs.ErrNotFound, http.StatusNotFound},
		{"quota exceeded", errs.ErrQuotaExceeded, http.StatusForbidden},
		{"validation", errs.NewValidation("name", "不能为空"), http.StatusBadRequest},
		{"datastore", errs.WrapDatastore("insert companion", errors.New("connection reset")), http.StatusInternalServerError},
		{"wrapped not found", errs.WrapDatastore("select companion", errs.ErrNotFound), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tc.err)

			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

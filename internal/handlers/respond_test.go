package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgchat/pkg/apperrors"
)

func testContext(headers map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c, rec
}

func TestRespondError_AppErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", apperrors.NewForbiddenError("no"), http.StatusForbidden},
		{"time expired", apperrors.ErrTimeExpired("message", "late"), http.StatusForbidden},
		{"invariant", apperrors.ErrInvariantViolation("conversation", "last admin"), http.StatusConflict},
		{"not found", apperrors.ErrNotFound(errors.New("gone")), http.StatusNotFound},
		{"store down", apperrors.ErrStoreUnavailable(errors.New("refused")), http.StatusServiceUnavailable},
		{"validation", apperrors.NewBadRequestError("bad"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := testContext(nil)
			respondError(c, tc.err)
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestRespondError_UnknownErrorIs500(t *testing.T) {
	c, rec := testContext(nil)
	respondError(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// The raw cause stays out of the response body.
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Contains(t, rec.Body.String(), string(apperrors.CodeInternalError))
}

func TestActingUser(t *testing.T) {
	c, _ := testContext(map[string]string{"X-User-ID": "alice"})
	userID, ok := actingUser(c)
	require.True(t, ok)
	assert.Equal(t, "alice", userID)
}

func TestActingUser_MissingHeader(t *testing.T) {
	c, rec := testContext(nil)
	_, ok := actingUser(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

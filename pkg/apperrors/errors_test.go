package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := ErrInvariantViolation("conversation", "last admin")
	assert.True(t, HasCode(err, CodeInvariantViolation))
	assert.False(t, HasCode(err, CodeForbidden))
	assert.False(t, HasCode(errors.New("plain"), CodeInvariantViolation))
	assert.False(t, HasCode(nil, CodeInvariantViolation))

	// HasCode sees through wrapping.
	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, HasCode(wrapped, CodeInvariantViolation))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("row missing")
	err := ErrNotFound(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusNotFound, err.HTTPCode)
	assert.Contains(t, err.Error(), "row missing")
}

func TestMarshalJSONHidesInternals(t *testing.T) {
	err := ErrStoreUnavailable(errors.New("dial tcp: refused")).
		WithDetails(map[string]string{"table": "messages"})

	data, merr := json.Marshal(err)
	require.NoError(t, merr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, string(CodeStoreUnavailable), decoded["code"])
	assert.NotContains(t, decoded, "HTTPCode")
	// The underlying cause never leaks into API responses.
	assert.NotContains(t, string(data), "dial tcp")
}

func TestTimeExpiredIsForbiddenStatus(t *testing.T) {
	err := ErrTimeExpired("message", "window passed")
	assert.Equal(t, http.StatusForbidden, err.HTTPCode)
	assert.True(t, HasCode(err, CodeTimeExpired))
}

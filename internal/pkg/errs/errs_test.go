package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anychat/internal/pkg/errs"
)

func TestNewErrorFormatsTemplate(t *testing.T) {
	err := errs.NewError(errs.ErrMissingIdentifier, "Room")

	assert.Equal(t, errs.ErrMissingIdentifier, err.Code)
	assert.Equal(t, "Room id is required.", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	err := errs.NewError(errs.ErrClientNotConfigured)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewErrorUnknownCode(t *testing.T) {
	err := errs.NewError(987654)
	assert.Equal(t, errs.ErrUnknown, err.Code)
}

func TestRemoteCarriesStatusAndBody(t *testing.T) {
	body := map[string]any{"message": "room missing"}
	err := errs.Remote("get room", http.StatusNotFound, body)

	assert.Equal(t, errs.ErrRemoteOperationFailed, err.Code)
	assert.Equal(t, "Get room failed. Status: 404", err.Message)
	assert.Equal(t, "get room", err.Operation)
	assert.Equal(t, http.StatusNotFound, err.RemoteStatus)
	assert.Equal(t, body, err.Body)
	assert.Contains(t, err.Error(), `"room missing"`)
}

func TestIsCodeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("sync: %w", errs.NewError(errs.ErrEntityNotFound, "Room"))

	assert.True(t, errs.IsCode(wrapped, errs.ErrEntityNotFound))
	assert.False(t, errs.IsCode(wrapped, errs.ErrMissingUserID))
	assert.False(t, errs.IsCode(errors.New("plain"), errs.ErrEntityNotFound))
	assert.True(t, errors.Is(wrapped, errs.NewError(errs.ErrEntityNotFound, "User")))
}

func TestAs(t *testing.T) {
	assert.Nil(t, errs.As(nil))

	custom := errs.NewError(errs.ErrMissingUserID)
	assert.Same(t, custom, errs.As(fmt.Errorf("wrap: %w", custom)))

	unknown := errs.As(errors.New("boom"))
	require.NotNil(t, unknown)
	assert.Equal(t, errs.ErrUnknown, unknown.Code)
}

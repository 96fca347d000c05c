package apimodel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendErrorWritesStatusAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WrongParametersErrorMessage.SendError(rec)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got ErrorMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, WrongParametersErrorMessage, got)
}

func TestSendErrorDefaultsMessageFromStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorMessage{ErrStatusCode: http.StatusServiceUnavailable}.SendError(rec)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var got ErrorMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Equal(t, "Service unavailable", got.ErrMessage)
}

func TestEmptyLibraryErrorMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	EmptyLibraryErrorMessage.SendError(rec)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

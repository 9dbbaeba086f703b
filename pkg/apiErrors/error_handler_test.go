package apiErrors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, ErrProductNotFound, "Produto não encontrado", map[string]string{"product_id": "P9"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrProductNotFound, body.Code)
	assert.Equal(t, "Produto não encontrado", body.Message)
}

func TestStatusFor_UnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor("XYZ_999"))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(ErrSnapshotUnavailable))
}

func TestFromError(t *testing.T) {
	assert.Equal(t, ErrInternalServer, FromError(nil, ErrExport).Code)

	apiErr := FromError(errors.New("falhou"), ErrExport)
	assert.Equal(t, ErrExport, apiErr.Code)
	assert.Equal(t, "falhou", apiErr.Message)
}

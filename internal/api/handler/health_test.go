package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Check(t *testing.T) {
	e := NewTestEcho()

	handler := NewHealthHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Check(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "ok", envelope.Data.Status)
	assert.NotEmpty(t, envelope.Data.Timestamp)
}

package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteListKeepsEmptyData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteList(rec, []string{}, 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"count":0,"data":[]}`, rec.Body.String())
}

func TestWriteErrorOmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "Validation Error", map[string]string{"name": "name is required"})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation Error", body["message"])
	assert.NotContains(t, body, "data")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestFormatDateAndTime(t *testing.T) {
	ts := time.Date(2026, 3, 7, 21, 41, 0, 0, time.UTC)
	assert.Equal(t, "Mar 7, 2026", FormatDate(ts, nil))
	assert.Equal(t, "09:41 PM", FormatTime(ts, nil))

	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, "Mar 8, 2026", FormatDate(ts, tokyo))
	assert.Equal(t, "06:41 AM", FormatTime(ts, tokyo))

	assert.Empty(t, FormatDate(time.Time{}, nil))
}

package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"realestate-backend/internal/uploads"
)

func TestUploadStatus(t *testing.T) {
	cases := []struct {
		err     error
		message string
	}{
		{uploads.ErrUnsupportedMediaType, "Only image files are allowed"},
		{uploads.ErrPayloadTooLarge, "File too large"},
		{ErrBodyTooLarge, "File too large"},
		{fmt.Errorf("%w: 20000x20000", uploads.ErrPixelLimit), "Image dimensions too large"},
		{fmt.Errorf("%w: no boundary", ErrInvalidForm), "invalid form"},
	}
	for _, tc := range cases {
		status, message, ok := UploadStatus(tc.err)
		assert.True(t, ok, tc.err.Error())
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, tc.message, message)
	}

	_, _, ok := UploadStatus(errors.New("disk full"))
	assert.False(t, ok)
}

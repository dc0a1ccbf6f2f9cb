package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"realestate-backend/internal/uploads"
)

// multipartOverhead is the slack allowed on top of the file limit for form
// fields and part headers.
const multipartOverhead = 1 << 20

var (
	ErrBodyTooLarge = errors.New("request body too large")
	ErrInvalidForm  = errors.New("invalid multipart form")
)

func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

// ParseMultipart parses a multipart form whose file parts may total up to
// maxFileBytes. Oversized bodies yield ErrBodyTooLarge.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxFileBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxFileBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	return nil
}

// FormFile returns the named file part, or nil when the request carries none.
func FormFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	return file, header, nil
}

// OptionalFormValue returns a pointer to the trimmed form value, or nil when
// the field is absent or blank.
func OptionalFormValue(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	if v == "" {
		return nil
	}
	return &v
}

// ImageUpload parses a multipart request and returns the optional image part
// under field. The returned func releases the part and temporary form files
// and must be called once the upload has been consumed.
func ImageUpload(w http.ResponseWriter, r *http.Request, field string, maxFileBytes int64) (*uploads.Upload, func(), error) {
	noop := func() {}
	if err := ParseMultipart(w, r, maxFileBytes); err != nil {
		return nil, noop, err
	}
	release := func() { _ = r.MultipartForm.RemoveAll() }

	file, header, err := FormFile(r, field)
	if err != nil {
		return nil, release, err
	}
	if file == nil {
		return nil, release, nil
	}
	up := uploads.FromMultipart(file, header)
	return &up, func() {
		_ = file.Close()
		release()
	}, nil
}

// UploadStatus maps form and image pipeline errors to a client-facing status
// and message. ok is false for errors it does not know.
func UploadStatus(err error) (status int, message string, ok bool) {
	switch {
	case errors.Is(err, uploads.ErrUnsupportedMediaType):
		return http.StatusBadRequest, "Only image files are allowed", true
	case errors.Is(err, uploads.ErrPayloadTooLarge), errors.Is(err, ErrBodyTooLarge):
		return http.StatusBadRequest, "File too large", true
	case errors.Is(err, uploads.ErrPixelLimit):
		return http.StatusBadRequest, "Image dimensions too large", true
	case errors.Is(err, ErrInvalidForm):
		return http.StatusBadRequest, "invalid form", true
	}
	return 0, "", false
}

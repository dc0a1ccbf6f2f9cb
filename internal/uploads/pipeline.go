// Package uploads stores uploaded images as fixed-size JPEG crops under the
// public uploads directory.
package uploads

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnsupportedMediaType = errors.New("only image files are allowed")
	ErrPayloadTooLarge      = errors.New("file too large")
	ErrProcessingFailed     = errors.New("image processing failed")
	ErrPixelLimit           = errors.New("image exceeds pixel limit")
)

// DefaultMaxPixels matches the input limit of common image toolkits
// (16383 × 16383).
const DefaultMaxPixels int64 = 268402689

var (
	processDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "realestate_image_processing_duration_seconds",
		Help:    "Time spent decoding, cropping and encoding an uploaded image",
		Buckets: prometheus.DefBuckets,
	})

	processTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realestate_image_uploads_total",
		Help: "Uploaded images by outcome",
	}, []string{"result"})
)

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

type Options struct {
	Dir       string
	URLPrefix string
	MaxSize   int64
	Width     int
	Height    int
	Quality   int
	// MaxPixels caps the declared width × height of an input before it is
	// decoded. Zero means DefaultMaxPixels.
	MaxPixels int64
}

// Upload is a single incoming file. Size may be negative when unknown.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func FromMultipart(file multipart.File, header *multipart.FileHeader) Upload {
	return Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

// Stored describes a cropped image written to disk.
type Stored struct {
	URL    string
	Path   string
	Width  int
	Height int
}

type Pipeline struct {
	opts Options
	log  *slog.Logger
	now  func() time.Time
}

func New(opts Options, log *slog.Logger) (*Pipeline, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid crop dimensions %dx%d", opts.Width, opts.Height)
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 80
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if opts.URLPrefix == "" {
		opts.URLPrefix = "/uploads"
	}
	opts.URLPrefix = "/" + strings.Trim(opts.URLPrefix, "/")
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Pipeline{opts: opts, log: log, now: time.Now}, nil
}

func (p *Pipeline) Dir() string {
	return p.opts.Dir
}

func (p *Pipeline) URLPrefix() string {
	return p.opts.URLPrefix
}

func (p *Pipeline) MaxSize() int64 {
	return p.opts.MaxSize
}

// Process validates the upload, writes the original, replaces it with a
// cover-cropped JPEG and returns the public URL of the crop.
func (p *Pipeline) Process(ctx context.Context, up Upload) (Stored, error) {
	start := time.Now()
	stored, err := p.process(ctx, up)
	processDuration.Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		processTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrUnsupportedMediaType):
		processTotal.WithLabelValues("unsupported").Inc()
	case errors.Is(err, ErrPayloadTooLarge), errors.Is(err, ErrPixelLimit):
		processTotal.WithLabelValues("too_large").Inc()
	default:
		processTotal.WithLabelValues("failed").Inc()
	}
	return stored, err
}

func (p *Pipeline) process(ctx context.Context, up Upload) (Stored, error) {
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}
	if p.opts.MaxSize > 0 && up.Size > p.opts.MaxSize {
		return Stored{}, ErrPayloadTooLarge
	}

	body := bufio.NewReader(up.Body)
	contentType := strings.ToLower(strings.TrimSpace(up.ContentType))
	if contentType == "" || contentType == "application/octet-stream" {
		head, _ := body.Peek(512)
		contentType = http.DetectContentType(head)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return Stored{}, ErrUnsupportedMediaType
	}

	base := fmt.Sprintf("image-%d-%s", p.now().UnixMilli(), uuid.NewString())
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	originalPath := filepath.Join(p.opts.Dir, base+ext)
	croppedName := base + "-cropped.jpg"
	croppedPath := filepath.Join(p.opts.Dir, croppedName)

	if err := p.writeOriginal(originalPath, body); err != nil {
		return Stored{}, err
	}
	defer p.removeFile(originalPath)

	if err := p.checkDimensions(originalPath); err != nil {
		return Stored{}, err
	}

	src, err := imaging.Open(originalPath, imaging.AutoOrientation(true))
	if err != nil {
		return Stored{}, fmt.Errorf("%w: decode: %v", ErrProcessingFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}

	dst := imaging.Fill(src, p.opts.Width, p.opts.Height, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(dst, croppedPath, imaging.JPEGQuality(p.opts.Quality)); err != nil {
		p.removeFile(croppedPath)
		return Stored{}, fmt.Errorf("%w: encode: %v", ErrProcessingFailed, err)
	}

	return Stored{
		URL:    path.Join(p.opts.URLPrefix, croppedName),
		Path:   croppedPath,
		Width:  dst.Bounds().Dx(),
		Height: dst.Bounds().Dy(),
	}, nil
}

func (p *Pipeline) writeOriginal(dst string, body io.Reader) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create: %v", ErrProcessingFailed, err)
	}

	reader := body
	if p.opts.MaxSize > 0 {
		reader = io.LimitReader(body, p.opts.MaxSize+1)
	}
	n, copyErr := io.Copy(f, reader)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		p.removeFile(dst)
		return fmt.Errorf("%w: write: %v", ErrProcessingFailed, copyErr)
	case closeErr != nil:
		p.removeFile(dst)
		return fmt.Errorf("%w: write: %v", ErrProcessingFailed, closeErr)
	case p.opts.MaxSize > 0 && n > p.opts.MaxSize:
		p.removeFile(dst)
		return ErrPayloadTooLarge
	}
	return nil
}

// checkDimensions reads only the image header so oversized canvases are
// refused before any pixel buffer is allocated.
func (p *Pipeline) checkDimensions(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrProcessingFailed, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("%w: decode header: %v", ErrProcessingFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrProcessingFailed)
	}
	if int64(cfg.Width)*int64(cfg.Height) > p.opts.MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrPixelLimit, cfg.Width, cfg.Height)
	}
	return nil
}

// Remove deletes the file behind a public upload URL. Failures are logged only.
func (p *Pipeline) Remove(url string) {
	url = strings.TrimSpace(url)
	if url == "" || !strings.HasPrefix(url, p.opts.URLPrefix+"/") {
		return
	}
	name := path.Base(url)
	if name == "." || name == "/" || name == ".." {
		return
	}
	file := filepath.Join(p.opts.Dir, name)
	if err := os.Remove(file); err != nil {
		p.log.Warn("uploads: remove stored image failed", slog.String("url", url), slog.String("error", err.Error()))
	}
}

func (p *Pipeline) removeFile(file string) {
	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.log.Warn("uploads: remove file failed", slog.String("path", file), slog.String("error", err.Error()))
	}
}

package assets

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/telemetry"
)

const tracerName = "siteapi/assets"

// ErrUploadRejected is wrapped by every validation failure of Upload. Nothing
// is written to blob storage when it is returned.
var ErrUploadRejected = errors.New("upload rejected")

var (
	ErrUnsupportedType = fmt.Errorf("%w: unsupported media type", ErrUploadRejected)
	ErrEmptyFile       = fmt.Errorf("%w: empty file", ErrUploadRejected)
	ErrTooLarge        = fmt.Errorf("%w: file too large", ErrUploadRejected)
)

// ErrInvalidKey is returned by Delete for a key that cannot have been issued by Upload.
var ErrInvalidKey = errors.New("invalid asset key")

// DefaultExtension is used when neither the filename nor the media type
// yields an extension.
const DefaultExtension = "jpg"

// allowedTypes maps each accepted media type to its canonical extension.
var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Allowed reports whether contentType may be uploaded.
func Allowed(contentType string) bool {
	_, ok := allowedTypes[normalizeType(contentType)]
	return ok
}

// File is an upload as received from the client.
type File struct {
	Filename    string
	ContentType string
	// Size is the declared length in bytes.
	Size int64
	Body io.Reader
}

// StoredAsset locates an uploaded object. Keys are immutable.
type StoredAsset struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// BlobStore is an addressable object store.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

// Service validates uploads and writes them to a BlobStore.
//
// Keys are a millisecond timestamp plus five random base36 characters. There
// is no collision check; two uploads in the same millisecond collide with
// probability 1/36^5.
type Service struct {
	store    BlobStore
	maxBytes int64
	now      func() time.Time
	metrics  *telemetry.SiteMetrics
}

// Option configures a Service.
type Option func(*Service)

// WithMaxBytes caps the declared size of an upload. Zero means no cap.
func WithMaxBytes(n int64) Option {
	return func(s *Service) { s.maxBytes = n }
}

// WithMetrics records upload outcomes.
func WithMetrics(m *telemetry.SiteMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates an upload service over store.
func NewService(store BlobStore, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload validates f and stores it under a fresh key.
func (s *Service) Upload(ctx context.Context, f File) (asset StoredAsset, err error) {
	contentType := normalizeType(f.ContentType)
	ctx, span := telemetry.StartSpan(ctx, tracerName, "assets.Upload",
		attribute.String(telemetry.AttrAssetContentType, contentType),
		attribute.Int64(telemetry.AttrAssetSize, f.Size),
	)
	defer span.End()
	defer func() {
		telemetry.RecordError(span, err)
		s.metrics.RecordUpload(ctx, contentType, err)
	}()

	typeExt, ok := allowedTypes[contentType]
	if !ok {
		return StoredAsset{}, fmt.Errorf("%w %q", ErrUnsupportedType, f.ContentType)
	}
	if f.Size <= 0 || f.Body == nil {
		return StoredAsset{}, ErrEmptyFile
	}
	if s.maxBytes > 0 && f.Size > s.maxBytes {
		return StoredAsset{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, f.Size, s.maxBytes)
	}

	key, err := s.newKey(f.Filename, typeExt)
	if err != nil {
		return StoredAsset{}, err
	}
	span.SetAttributes(attribute.String(telemetry.AttrAssetKey, key))

	if err := s.store.Put(ctx, key, f.Body, f.Size, contentType); err != nil {
		return StoredAsset{}, fmt.Errorf("store asset %s: %w", key, err)
	}
	log.Printf("assets: stored %s (%s, %d bytes)", key, contentType, f.Size)
	return StoredAsset{Key: key, URL: s.store.PublicURL(key)}, nil
}

// Delete removes the object stored under key. Failures are returned as is.
func (s *Service) Delete(ctx context.Context, key string) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "assets.Delete",
		attribute.String(telemetry.AttrAssetKey, key),
	)
	defer span.End()

	if key == "" || strings.ContainsAny(key, "/\\") {
		err := fmt.Errorf("%w %q", ErrInvalidKey, key)
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("delete asset %s: %w", key, err)
	}
	return nil
}

func (s *Service) newKey(filename, typeExt string) (string, error) {
	suffix, err := randomBase36(5)
	if err != nil {
		return "", fmt.Errorf("generate asset key: %w", err)
	}
	return fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), suffix, Extension(filename, typeExt)), nil
}

// Extension picks the stored extension: the filename's, else the media
// type's, else DefaultExtension. Only lowercase letters and digits are kept.
func Extension(filename, typeExt string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	ext = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, ext)
	if ext != "" && len(ext) <= 8 {
		return ext
	}
	if typeExt != "" {
		return typeExt
	}
	return DefaultExtension
}

var base36Space = big.NewInt(36 * 36 * 36 * 36 * 36)

// randomBase36 returns n base36 characters (n <= 5) from crypto/rand.
func randomBase36(n int) (string, error) {
	v, err := rand.Int(rand.Reader, base36Space)
	if err != nil {
		return "", err
	}
	s := strconv.FormatInt(v.Int64(), 36)
	if len(s) < 5 {
		s = strings.Repeat("0", 5-len(s)) + s
	}
	return s[:n], nil
}

func normalizeType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

package storage

import (
	"bufio"
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cityportal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Provider names accepted by STORAGE_PROVIDER.
const (
	ProviderCloudinary = "cloudinary"
	ProviderFirebase   = "firebase"
	ProviderMemory     = "memory"
)

// UploadInput describes a file to store.
type UploadInput struct {
	Bucket      string
	Prefix      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Public      bool
}

// StorageService defines the interface for storage operations.
type StorageService interface {
	Provider() string
	Upload(ctx context.Context, in UploadInput) (models.FileRef, error)
	Delete(ctx context.Context, ref models.FileRef) error
	// DownloadURL returns the public URL of public objects and a signed URL valid for expires otherwise.
	DownloadURL(ctx context.Context, ref models.FileRef, expires time.Duration) (string, error)
}

const sniffLen = 3072

// DetectContentType fills ContentType from the first bytes of Body when the client did not send a useful one.
func DetectContentType(in *UploadInput) error {
	if in.ContentType != "" && in.ContentType != "application/octet-stream" {
		return nil
	}
	br := bufio.NewReaderSize(in.Body, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return err
	}
	in.ContentType = mimetype.Detect(head).String()
	in.Body = br
	return nil
}

// ObjectKey builds a unique object name inside bucket, keeping the original extension.
func ObjectKey(bucket, prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(bucket, prefix, uuid.NewString()+ext)
}

// IsImage reports whether the content type is an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

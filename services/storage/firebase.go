package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cityportal/config"
	"cityportal/models"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// FirebaseStorage implements StorageService using a Firebase (GCS) bucket.
type FirebaseStorage struct {
	client         *storage.Client
	bucketName     string
	serviceAccount *config.ServiceAccount
}

// NewFirebaseStorage creates a new FirebaseStorage.
func NewFirebaseStorage(ctx context.Context, serviceAccountJSONPath, bucketName string) (*FirebaseStorage, error) {
	if bucketName == "" {
		return nil, errors.New("firebase bucket name is not configured")
	}
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(serviceAccountJSONPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	sa, err := config.LoadServiceAccount(serviceAccountJSONPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load service account for signing URLs: %w", err)
	}

	return &FirebaseStorage{
		client:         client,
		bucketName:     bucketName,
		serviceAccount: sa,
	}, nil
}

func (s *FirebaseStorage) Provider() string { return ProviderFirebase }

func (s *FirebaseStorage) Upload(ctx context.Context, in UploadInput) (models.FileRef, error) {
	key := ObjectKey(in.Bucket, in.Prefix, in.Filename)
	w := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)

	if in.Public {
		w.ACL = []storage.ACLRule{{Entity: storage.AllUsers, Role: storage.RoleReader}}
	}
	w.ObjectAttrs.ContentType = in.ContentType
	w.ObjectAttrs.Metadata = map[string]string{"originalName": in.Filename}

	n, err := io.Copy(w, in.Body)
	if err != nil {
		_ = w.Close()
		return models.FileRef{}, fmt.Errorf("failed to copy file to storage: %v: %w", err, models.ErrStorage)
	}
	if err := w.Close(); err != nil {
		return models.FileRef{}, fmt.Errorf("failed to close writer: %v: %w", err, models.ErrStorage)
	}

	ref := models.FileRef{
		Provider:     ProviderFirebase,
		Bucket:       in.Bucket,
		Key:          key,
		ContentType:  in.ContentType,
		Size:         n,
		OriginalName: in.Filename,
		Public:       in.Public,
	}
	if in.Public {
		ref.URL = publicURL(s.bucketName, key)
	}
	return ref, nil
}

// Delete deletes an object from the bucket. A missing object is not an error.
func (s *FirebaseStorage) Delete(ctx context.Context, ref models.FileRef) error {
	err := s.client.Bucket(s.bucketName).Object(ref.Key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete file: %v: %w", err, models.ErrStorage)
	}
	return nil
}

func (s *FirebaseStorage) DownloadURL(ctx context.Context, ref models.FileRef, expires time.Duration) (string, error) {
	if ref.Public {
		return publicURL(s.bucketName, ref.Key), nil
	}
	u, err := storage.SignedURL(s.bucketName, ref.Key, &storage.SignedURLOptions{
		GoogleAccessID: s.serviceAccount.ClientEmail,
		PrivateKey:     []byte(strings.ReplaceAll(s.serviceAccount.PrivateKey, `\n`, "\n")),
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		Scheme:         storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %v: %w", err, models.ErrStorage)
	}
	return u, nil
}

// Close releases the underlying client.
func (s *FirebaseStorage) Close() error {
	return s.client.Close()
}

// publicURL is the Firebase download URL of a publicly readable object.
func publicURL(bucket, key string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", bucket, url.QueryEscape(key))
}

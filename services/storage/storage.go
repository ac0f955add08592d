package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cityportal/models"
	"cityportal/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/asset"
	"go.uber.org/zap"
)

const deliveryAuthenticated = "authenticated"

// CloudinaryStorage implements StorageService on Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
	now func() time.Time
}

// NewCloudinaryStorage creates a new Cloudinary backed StorageService.
func NewCloudinaryStorage(cld *cloudinary.Cloudinary) *CloudinaryStorage {
	utils.GetLogger().Debug("Initializing Cloudinary storage", zap.String("cloudName", cld.Config.Cloud.CloudName))
	return &CloudinaryStorage{
		cld: cld,
		now: time.Now,
	}
}

func (s *CloudinaryStorage) Provider() string { return ProviderCloudinary }

func deliveryType(public bool) api.DeliveryType {
	if public {
		return api.DeliveryType("upload")
	}
	return api.DeliveryType(deliveryAuthenticated)
}

// Upload stores the file. The object key without extension becomes the Cloudinary public ID.
func (s *CloudinaryStorage) Upload(ctx context.Context, in UploadInput) (models.FileRef, error) {
	key := ObjectKey(in.Bucket, in.Prefix, in.Filename)
	publicID := strings.TrimSuffix(key, path.Ext(key))

	result, err := s.cld.Upload.Upload(ctx, in.Body, uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: "auto",
		Type:         deliveryType(in.Public),
	})
	if err != nil {
		return models.FileRef{}, fmt.Errorf("cloudinary upload failed: %v: %w", err, models.ErrStorage)
	}
	if result.Error.Message != "" {
		return models.FileRef{}, fmt.Errorf("cloudinary upload rejected: %s: %w", result.Error.Message, models.ErrStorage)
	}
	if result.PublicID == "" {
		return models.FileRef{}, fmt.Errorf("cloudinary returned no public ID: %w", models.ErrStorage)
	}

	ref := models.FileRef{
		Provider:     ProviderCloudinary,
		Bucket:       in.Bucket,
		Key:          result.PublicID,
		ResourceType: result.ResourceType,
		Format:       result.Format,
		ContentType:  in.ContentType,
		Size:         int64(result.Bytes),
		OriginalName: in.Filename,
		Public:       in.Public,
	}
	if ref.Size == 0 {
		ref.Size = in.Size
	}
	if in.Public {
		ref.URL = result.SecureURL
	}
	return ref, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, ref models.FileRef) error {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     ref.Key,
		ResourceType: resourceTypeOf(ref),
		Type:         string(deliveryType(ref.Public)),
	})
	if err != nil {
		return fmt.Errorf("cloudinary delete failed: %v: %w", err, models.ErrStorage)
	}
	if res != nil && res.Result != "" && res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary delete returned %q: %w", res.Result, models.ErrStorage)
	}
	return nil
}

// formatOf returns the stored file format. Public IDs carry no extension, so signed
// downloads need it spelled out.
func formatOf(ref models.FileRef) string {
	if ref.Format != "" {
		return ref.Format
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(ref.OriginalName), "."))
}

func resourceTypeOf(ref models.FileRef) string {
	if ref.ResourceType != "" {
		return ref.ResourceType
	}
	if IsImage(ref.ContentType) {
		return "image"
	}
	return "raw"
}

// getAsset returns an asset instance based on the resource type.
func (s *CloudinaryStorage) getAsset(resourceType, publicID string) (*asset.Asset, error) {
	switch resourceType {
	case "image":
		return s.cld.Image(publicID)
	case "video":
		return s.cld.Video(publicID)
	default:
		return s.cld.Media(publicID)
	}
}

func (s *CloudinaryStorage) DownloadURL(ctx context.Context, ref models.FileRef, expires time.Duration) (string, error) {
	if ref.Public {
		if ref.URL != "" {
			return ref.URL, nil
		}
		a, err := s.getAsset(resourceTypeOf(ref), ref.Key)
		if err != nil {
			return "", fmt.Errorf("failed to get asset: %v: %w", err, models.ErrStorage)
		}
		u, err := a.String()
		if err != nil {
			return "", fmt.Errorf("failed to build asset URL: %v: %w", err, models.ErrStorage)
		}
		return u, nil
	}
	expiresAt := s.now().Add(expires)
	u, err := s.cld.Upload.PrivateDownloadURL(uploader.PrivateDownloadURLParams{
		PublicID:     ref.Key,
		Format:       formatOf(ref),
		DeliveryType: deliveryAuthenticated,
		ExpiresAt:    &expiresAt,
		ResourceType: api.AssetType(resourceTypeOf(ref)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign download URL: %v: %w", err, models.ErrStorage)
	}
	return u, nil
}

package storage

import (
	"context"
	"fmt"

	"cityportal/config"
	"cityportal/utils"
)

// NewFromConfig builds the StorageService selected by STORAGE_PROVIDER.
func NewFromConfig(ctx context.Context) (StorageService, error) {
	switch config.AppConfig.StorageProvider {
	case ProviderMemory:
		return NewMemoryStorage("http://localhost:" + config.AppConfig.AppPort + "/files"), nil
	case ProviderFirebase:
		fs, err := NewFirebaseStorage(ctx, config.AppConfig.FirebaseCredentialsFile, config.AppConfig.FirebaseBucket)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case ProviderCloudinary, "":
		cld, err := utils.NewCloudinary()
		if err != nil {
			return nil, err
		}
		return NewCloudinaryStorage(cld), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", config.AppConfig.StorageProvider)
	}
}

package utils

import (
	"context"
	"fmt"

	"cityportal/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase App from the configured credentials file.
func InitFirebase(ctx context.Context) (*firebase.App, error) {
	var fbCfg *firebase.Config
	if config.AppConfig.FirebaseBucket != "" {
		fbCfg = &firebase.Config{StorageBucket: config.AppConfig.FirebaseBucket}
	}
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile)

	app, err := firebase.NewApp(ctx, fbCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	return app, nil
}

// NewFCMClient returns the messaging client of app.
func NewFCMClient(ctx context.Context, app *firebase.App) (*messaging.Client, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return client, nil
}

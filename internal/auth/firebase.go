package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/GoSim-25-26J-441/go-energy-analysis/config"
)

var ErrNoCredentials = errors.New("FIREBASE_CREDENTIALS_PATH is not set")

// InitializeFirebase builds the token verifier guarding /api/v1. cmd/api only
// calls it when credentials are configured; otherwise the API stays open.
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*auth.Client, error) {
	if cfg == nil || cfg.CredentialsPath == "" {
		return nil, ErrNoCredentials
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("firebase app from %s: %w", cfg.CredentialsPath, err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return client, nil
}

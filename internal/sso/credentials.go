package sso

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2/clientcredentials"
)

// Credentials is the content of the companion file
type Credentials struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes,omitempty"`
}

// CredentialsLoader reads OAuth2 client credentials from the companion file
type CredentialsLoader struct{}

func (CredentialsLoader) Load(path string) (*Handle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(b, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials json: %w", err)
	}
	if creds.ClientID == "" || creds.TokenURL == "" {
		return nil, fmt.Errorf("credentials must set client_id and token_url")
	}

	cc := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
		Scopes:       creds.Scopes,
	}

	return &Handle{
		Path:        path,
		TokenSource: cc.TokenSource(context.Background()),
	}, nil
}

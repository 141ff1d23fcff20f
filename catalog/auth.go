package catalog

import (
	"context"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"
)

// NewOAuth2Client returns an http.Client that authenticates with the
// client credentials grant. It returns nil when no client ID is set so
// callers fall back to anonymous access.
func NewOAuth2Client(ctx context.Context, clientID, clientSecret, tokenURL string, scopes []string) *http.Client {
	if clientID == "" || tokenURL == "" {
		return nil
	}
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return conf.Client(ctx)
}

package gcp

import (
	"os"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// ClientOptions resolves credentials for the Google Cloud clients. A static
// access token wins; otherwise GOOGLE_APPLICATION_CREDENTIALS_JSON (inline
// JSON) or GOOGLE_APPLICATION_CREDENTIALS (file path) is used. With none of
// them set the clients fall back to application default credentials.
func ClientOptions(accessToken string) []option.ClientOption {
	if token := strings.TrimSpace(accessToken); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		return []option.ClientOption{option.WithTokenSource(ts)}
	}
	return ClientOptionsFromEnv()
}

func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

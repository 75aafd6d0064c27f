package gcp

import (
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ClientOptions builds storage client options for cfg. The emulator runs
// unauthenticated; otherwise credentials come from EDPAK_STORAGE_CREDENTIALS
// or the GOOGLE_APPLICATION_CREDENTIALS pair, inline JSON or a file path.
func ClientOptions(cfg StorageConfig) []option.ClientOption {
	if cfg.IsEmulator() {
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	creds := firstEnv("EDPAK_STORAGE_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS")
	switch {
	case creds == "":
		return opts
	case strings.HasPrefix(creds, "{"):
		return append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		return append(opts, option.WithCredentialsFile(creds))
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v
		}
	}
	return ""
}

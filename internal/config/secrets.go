package config

import (
	"os"
	"path/filepath"
	"strings"
)

const apiKeyName = "GOOGLE_API_KEY"

// secretDirs lists the directories a host secret manager mounts files into:
// systemd's $CREDENTIALS_DIRECTORY and the Docker/Kubernetes secrets mount.
var secretDirs = func() []string {
	var dirs []string
	if d := os.Getenv("CREDENTIALS_DIRECTORY"); d != "" {
		dirs = append(dirs, d)
	}
	return append(dirs, "/run/secrets")
}

// ResolveAPIKey finds the Google API key. A secret file wins over the config
// file's secrets section, which wins over the GOOGLE_API_KEY variable.
func ResolveAPIKey(fromConfig string) string {
	for _, dir := range secretDirs() {
		b, err := os.ReadFile(filepath.Join(dir, apiKeyName))
		if err != nil {
			continue
		}
		if key := strings.TrimSpace(string(b)); key != "" {
			return key
		}
	}
	if key := strings.TrimSpace(fromConfig); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(apiKeyName))
}

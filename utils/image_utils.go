package utils

import (
	"fmt"
	"path"
	"strings"
)

const storageURLPrefix = "https://storage.googleapis.com/"

// RewardIconFolder is the bucket folder reward icons are uploaded to.
const RewardIconFolder = "rewards"

// ExtractObjectPath returns the object path of a public Cloud Storage URL,
// without the bucket.
func ExtractObjectPath(url string) (string, error) {
	if !strings.HasPrefix(url, storageURLPrefix) {
		return "", fmt.Errorf("invalid URL")
	}

	rest := strings.TrimPrefix(url, storageURLPrefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("invalid URL format")
	}
	return parts[1], nil
}

// UploadedIconPath returns the object path of an icon previously uploaded by
// this service. Emoji icons and external URLs report false.
func UploadedIconPath(icon string) (string, bool) {
	p, err := ExtractObjectPath(icon)
	if err != nil {
		return "", false
	}
	if path.Dir(p) != RewardIconFolder {
		return "", false
	}
	return p, true
}

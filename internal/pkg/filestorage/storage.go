package filestorage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// FileStorage stores objects under slash-separated keys and knows their public URLs
type FileStorage interface {
	// Put writes the object, replacing any object stored under key
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of key, or "" for an empty key
	URL(key string) string
}

// AvatarKey builds a fresh storage key for a user's avatar
func AvatarKey(userID int64) string {
	return fmt.Sprintf("avatars/%d/%s.webp", userID, uuid.New().String())
}

// cleanKey normalises a key and rejects attempts to escape the storage root
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(path.Clean("/"+strings.TrimSpace(key)), "/")
	if key == "" || key == "." {
		return "", fmt.Errorf("invalid storage key")
	}
	return key, nil
}

func joinURL(base, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + key
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBlobNotFound is returned by Fetch when no blob has the given pathname.
var ErrBlobNotFound = errors.New("blob not found")

// BlobInfo describes a stored blob without its body.
type BlobInfo struct {
	Pathname   string    `bson:"_id" json:"pathname"`
	Size       int64     `bson:"size" json:"size"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// BlobRepository is a flat key-value blob store.
type BlobRepository interface {
	// List returns blobs whose pathname starts with prefix, ordered by
	// pathname. A limit of 0 or less means no limit.
	List(ctx context.Context, prefix string, limit int) ([]BlobInfo, error)
	// Put creates or replaces the blob at pathname.
	Put(ctx context.Context, pathname string, body []byte) error
	// Fetch returns the body stored at pathname.
	Fetch(ctx context.Context, pathname string) ([]byte, error)
	// Delete removes the blob at pathname; a missing blob is not an error.
	Delete(ctx context.Context, pathname string) error
}

func validatePathname(pathname string) error {
	if strings.TrimSpace(pathname) == "" {
		return fmt.Errorf("pathname is required")
	}
	if strings.ContainsAny(pathname, `/\`) || pathname == "." || pathname == ".." || strings.HasPrefix(pathname, ".") {
		return fmt.Errorf("invalid pathname %q", pathname)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Dias221467/bucket-list/pkg/logger"
)

// FileBlobRepository keeps one file per blob inside a directory. Writes go
// to a temp file that is synced and renamed over the target.
type FileBlobRepository struct {
	dir string
}

// NewFileBlobRepository creates the directory when needed.
func NewFileBlobRepository(dir string) (*FileBlobRepository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBlobRepository{dir: dir}, nil
}

func (r *FileBlobRepository) List(ctx context.Context, prefix string, limit int) ([]BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	blobs := []BlobInfo{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		blobs = append(blobs, BlobInfo{
			Pathname:   name,
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Pathname < blobs[j].Pathname })
	if limit > 0 && len(blobs) > limit {
		blobs = blobs[:limit]
	}
	return blobs, nil
}

func (r *FileBlobRepository) Put(ctx context.Context, pathname string, body []byte) error {
	if err := validatePathname(pathname); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, "."+pathname+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(r.dir, pathname)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	logger.Log.WithField("pathname", pathname).WithField("size", len(body)).Info("Blob stored successfully")
	return nil
}

func (r *FileBlobRepository) Fetch(ctx context.Context, pathname string) ([]byte, error) {
	if err := validatePathname(pathname); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(r.dir, pathname))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return b, nil
}

func (r *FileBlobRepository) Delete(ctx context.Context, pathname string) error {
	if err := validatePathname(pathname); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(r.dir, pathname)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	logger.Log.WithField("pathname", pathname).Info("Blob deleted successfully")
	return nil
}

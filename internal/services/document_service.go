package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Dias221467/bucket-list/internal/metrics"
	"github.com/Dias221467/bucket-list/internal/models"
	"github.com/Dias221467/bucket-list/internal/repository"
	"github.com/Dias221467/bucket-list/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ErrStorageNotConfigured is returned when the service has no blob storage.
var ErrStorageNotConfigured = errors.New("document storage is not configured: MONGO_URI is missing. Did you connect the database?")

const backupInfix = ".backup-"

// DocumentService encapsulates the business logic for the bucket document.
type DocumentService struct {
	repo repository.BlobRepository
	key  string
	now  func() time.Time
}

// NewDocumentService creates a new instance of DocumentService. A nil repo
// yields a service whose every call fails with ErrStorageNotConfigured.
func NewDocumentService(repo repository.BlobRepository, key string) *DocumentService {
	return &DocumentService{
		repo: repo,
		key:  key,
		now:  time.Now,
	}
}

// Key is the pathname the document is stored under.
func (s *DocumentService) Key() string {
	return s.key
}

// GetDocument returns the stored document, or an empty array when nothing
// has been stored yet.
func (s *DocumentService) GetDocument(ctx context.Context) ([]byte, error) {
	if s.repo == nil {
		return nil, ErrStorageNotConfigured
	}

	blobs, err := s.repo.List(ctx, s.key, 1)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to list document")
		return nil, fmt.Errorf("failed to list document: %w", err)
	}

	found := false
	for _, b := range blobs {
		if b.Pathname == s.key {
			found = true
			break
		}
	}
	if !found {
		logger.Log.WithField("key", s.key).Info("No document stored yet")
		return []byte("[]"), nil
	}

	body, err := s.repo.Fetch(ctx, s.key)
	if err != nil {
		if errors.Is(err, repository.ErrBlobNotFound) {
			return []byte("[]"), nil
		}
		logger.Log.WithError(err).WithField("key", s.key).Error("Service failed to fetch document")
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	if _, _, err := models.DecodeDocument(body); err != nil {
		logger.Log.WithError(err).WithField("key", s.key).Error("Stored document is not a JSON array")
		return nil, fmt.Errorf("stored document is malformed: %w", err)
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, body); err != nil {
		logger.Log.WithError(err).WithField("key", s.key).Error("Stored document is not valid JSON")
		return nil, fmt.Errorf("stored document is malformed: %w", err)
	}

	logger.Log.WithField("key", s.key).WithField("size", compacted.Len()).Info("Document fetched successfully")
	return compacted.Bytes(), nil
}

// ReplaceDocument validates body as a bucket document and stores it as the
// new full document. It returns the number of items stored.
func (s *DocumentService) ReplaceDocument(ctx context.Context, body []byte) (int, error) {
	if s.repo == nil {
		return 0, ErrStorageNotConfigured
	}

	items, err := models.ParseDocumentStrict(body)
	if err != nil {
		metrics.DocumentWrites.WithLabelValues("invalid").Inc()
		logger.Log.WithError(err).Warn("Rejected invalid document")
		return 0, err
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, body); err != nil {
		metrics.DocumentWrites.WithLabelValues("invalid").Inc()
		return 0, fmt.Errorf("%w: %v", models.ErrMalformedDocument, err)
	}

	if err := s.repo.Put(ctx, s.key, compacted.Bytes()); err != nil {
		metrics.DocumentWrites.WithLabelValues("error").Inc()
		logger.Log.WithError(err).WithField("key", s.key).Error("Service failed to store document")
		return 0, fmt.Errorf("failed to store document: %w", err)
	}

	metrics.DocumentWrites.WithLabelValues("success").Inc()
	metrics.ObserveStoredDocument(len(items), compacted.Len())
	logger.Log.WithFields(logrus.Fields{
		"key":   s.key,
		"items": len(items),
	}).Info("Document replaced successfully")
	return len(items), nil
}

// SnapshotDocument copies the current document to a timestamped backup and
// prunes backups beyond retention (0 or less keeps all). It returns the
// backup pathname, or "" when there was nothing to back up.
func (s *DocumentService) SnapshotDocument(ctx context.Context, retention int) (string, error) {
	if s.repo == nil {
		return "", ErrStorageNotConfigured
	}

	body, err := s.repo.Fetch(ctx, s.key)
	if err != nil {
		if errors.Is(err, repository.ErrBlobNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read document for backup: %w", err)
	}

	name := s.key + backupInfix + s.now().UTC().Format("20060102T150405Z")
	if err := s.repo.Put(ctx, name, body); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if retention > 0 {
		if err := s.pruneBackups(ctx, retention); err != nil {
			logger.Log.WithError(err).Warn("Failed to prune old backups")
		}
	}

	logger.Log.WithField("backup", name).Info("Document backup created")
	return name, nil
}

func (s *DocumentService) pruneBackups(ctx context.Context, retention int) error {
	backups, err := s.repo.List(ctx, s.key+backupInfix, 0)
	if err != nil {
		return err
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].Pathname < backups[j].Pathname })

	for len(backups) > retention {
		if err := s.repo.Delete(ctx, backups[0].Pathname); err != nil {
			return err
		}
		backups = backups[1:]
	}
	return nil
}

package jobs

import (
	"context"
	"fmt"

	"github.com/Dias221467/bucket-list/internal/metrics"
	"github.com/Dias221467/bucket-list/internal/services"
	"github.com/Dias221467/bucket-list/pkg/logger"
)

type DocumentSnapshotter struct {
	DocumentService *services.DocumentService
	Retention       int
}

// NewDocumentSnapshotter creates a new instance of DocumentSnapshotter
func NewDocumentSnapshotter(documentService *services.DocumentService, retention int) *DocumentSnapshotter {
	return &DocumentSnapshotter{
		DocumentService: documentService,
		Retention:       retention,
	}
}

// RunSnapshot copies the current document to a timestamped backup
func (d *DocumentSnapshotter) RunSnapshot(ctx context.Context) error {
	name, err := d.DocumentService.SnapshotDocument(ctx, d.Retention)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to snapshot document: %w", err)
	}

	if name == "" {
		metrics.BackupsTotal.WithLabelValues("skipped").Inc()
		logger.Log.Info("Snapshot skipped: no document stored yet")
		return nil
	}

	metrics.BackupsTotal.WithLabelValues("success").Inc()
	logger.Log.WithField("backup", name).Info("Document snapshot completed")
	return nil
}

package cron

import (
	"context"
	"fmt"

	"github.com/Dias221467/bucket-list/internal/jobs"
	"github.com/Dias221467/bucket-list/pkg/logger"
	"github.com/robfig/cron/v3"
)

// StartBackupCronJobs schedules periodic document snapshots. The caller
// owns the returned scheduler and must Stop it on shutdown.
func StartBackupCronJobs(snapshotter *jobs.DocumentSnapshotter, schedule string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		if err := snapshotter.RunSnapshot(context.Background()); err != nil {
			logger.Log.WithError(err).Error("Document snapshot failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}

	c.Start()
	logger.Log.WithField("schedule", schedule).Info("Backup cron started")
	return c, nil
}

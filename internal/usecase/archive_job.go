package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"celestial/internal/domain/models"
	domrepo "celestial/internal/domain/repository"
	"celestial/pkg/queue"
)

// ArchiveJobType routes queued charts to ArchiveJob.
const ArchiveJobType = "chart.archive"

// ArchiveJob writes queued charts to the archive.
type ArchiveJob struct {
	archive domrepo.ChartArchive
}

func NewArchiveJob(archive domrepo.ChartArchive) *ArchiveJob {
	return &ArchiveJob{archive: archive}
}

func (j *ArchiveJob) Name() string { return "chart-archive" }
func (j *ArchiveJob) Type() string { return ArchiveJobType }

func (j *ArchiveJob) Handle(ctx context.Context, payload json.RawMessage) error {
	chart, err := queue.ParsePayload[models.NatalChart](payload)
	if err != nil {
		return err
	}
	if chart.Hash == "" {
		return fmt.Errorf("archive job: chart without hash")
	}
	return j.archive.Save(ctx, *chart)
}

var _ queue.Job = (*ArchiveJob)(nil)

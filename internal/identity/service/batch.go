package service

import (
	"context"
	"sync"

	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

// PageStats aggregates merge outcomes over one fetched page.
type PageStats struct {
	Fetched   int
	Created   int
	Updated   int
	Skipped   int
	Conflicts int
	Cancelled bool
}

// Upserted is the number of records that changed canonical state.
func (ps PageStats) Upserted() int {
	return ps.Created + ps.Updated
}

// CancelCheck reports whether the surrounding run has been cancelled.
// It is polled between sub-batches, never mid-batch.
type CancelCheck func() (bool, error)

// ProcessPage merges a page of records in bounded parallel sub-batches.
// Records within a sub-batch run concurrently; sub-batches run in order so
// cancellation can be observed at a safe boundary. Per-record failures are
// counted as skipped rather than aborting the page, because the page has
// already been fetched and partial progress is recoverable on replay.
func (ms *MergeService) ProcessPage(ctx context.Context, records []sourceModel.RawContact,
	subBatchSize int, dryRun bool, cancelled CancelCheck) (PageStats, error) {

	logger := log.GetLogger()
	stats := PageStats{Fetched: len(records)}
	if subBatchSize < 1 {
		subBatchSize = 1
	}

	for start := 0; start < len(records); start += subBatchSize {
		if cancelled != nil {
			stop, err := cancelled()
			if err != nil {
				return stats, err
			}
			if stop || ctx.Err() != nil {
				stats.Cancelled = true
				return stats, nil
			}
		}

		end := start + subBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		outcomes := make([]MergeOutcome, len(batch))
		failures := make([]error, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i], failures[i] = ms.ProcessRecord(batch[i], dryRun)
			}(i)
		}
		wg.Wait()

		for i := range batch {
			if failures[i] != nil {
				logger.Error("Failed to merge record",
					log.String("source", batch[i].Source),
					log.String("external_id", batch[i].ExternalId),
					log.Error(failures[i]))
				stats.Skipped++
				continue
			}
			stats.count(outcomes[i].Action)
		}
	}
	return stats, nil
}

func (ps *PageStats) count(action string) {

	switch action {
	case constants.ActionCreated:
		ps.Created++
	case constants.ActionUpdated:
		ps.Updated++
	case constants.ActionConflict:
		ps.Conflicts++
	default:
		ps.Skipped++
	}
}

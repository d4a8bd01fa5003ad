/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package service

import (
	"context"
	"net/http"
	"time"

	identityProvider "github.com/revops/revenue-sync-service/internal/identity/provider"
	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
	sourceProvider "github.com/revops/revenue-sync-service/internal/sources/provider"
	stagingService "github.com/revops/revenue-sync-service/internal/staging/service"
	runModel "github.com/revops/revenue-sync-service/internal/syncrun/model"
	syncRunProvider "github.com/revops/revenue-sync-service/internal/syncrun/provider"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/log"
	"github.com/revops/revenue-sync-service/internal/system/ratelimit"
	"github.com/revops/revenue-sync-service/internal/system/retry"
)

// StatusAlreadyRunning is reported when a trigger is rejected because the
// source already has an active run.
const StatusAlreadyRunning = "already_running"

// PageOptions carries the optional fields of a trigger request. Cursor and
// SyncRunId, when set, must match the persisted checkpoint of the source's
// active run; Limit overrides the configured page size up to MaxPageSize.
type PageOptions struct {
	DryRun    bool
	Cursor    string
	SyncRunId string
	Limit     int
}

// JobResponse is the invocation contract: each call processes exactly one
// page and reports whether the caller should invoke again.
type JobResponse struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	SyncRunId     string `json:"sync_run_id"`
	HasMore       bool   `json:"has_more"`
	NextCursor    string `json:"next_cursor,omitempty"`
	TotalFetched  int    `json:"total_fetched"`
	TotalUpserted int    `json:"total_upserted"`
	Error         string `json:"error,omitempty"`
	DurationMs    int64  `json:"duration_ms"`
}

type SyncEngineInterface interface {
	RunPage(ctx context.Context, source string, opts PageOptions) (JobResponse, error)
}

// SyncEngine drives one page per invocation: claim the run, fetch under the
// source's rate limit and retry budget, stage, merge, checkpoint. The engine
// keeps no state between invocations; everything it needs lives in the run
// record.
type SyncEngine struct {
	limiters *ratelimit.Registry
}

var engineLimiters = ratelimit.NewRegistry()

// GetSyncEngine creates a new instance of SyncEngine. Rate limiters are
// shared process-wide so concurrent invocations respect one budget.
func GetSyncEngine() SyncEngineInterface {

	return &SyncEngine{limiters: engineLimiters}
}

func (se *SyncEngine) RunPage(ctx context.Context, source string, opts PageOptions) (JobResponse, error) {

	logger := log.GetLogger()
	started := time.Now()
	dryRun := opts.DryRun

	adapter, sourceCfg, err := sourceProvider.NewSourceProvider().GetSourceAdapter(source)
	if err != nil {
		return JobResponse{}, err
	}

	syncRunService := syncRunProvider.NewSyncRunProvider().GetSyncRunService()

	// Validate caller-supplied resume fields against the persisted checkpoint
	// before claiming, so a rejected request never leaves a run stuck running.
	if opts.SyncRunId != "" || opts.Cursor != "" {
		active, err := syncRunService.ActiveRun(source)
		if err != nil {
			return JobResponse{}, err
		}
		if opts.SyncRunId != "" && (active == nil || active.RunId != opts.SyncRunId) {
			return JobResponse{}, errors.NewClientError(errors.ErrRunNotFound, http.StatusNotFound)
		}
		if opts.Cursor != "" && (active == nil || active.Checkpoint.Cursor != opts.Cursor) {
			return JobResponse{}, errors.NewClientError(errors.ErrCheckpointMismatch, http.StatusConflict)
		}
	}

	run, err := syncRunService.ClaimRun(source, dryRun)
	if err != nil {
		return JobResponse{}, err
	}

	pageSize := sourceCfg.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if opts.Limit > 0 {
		pageSize = opts.Limit
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	if err := se.limiters.Wait(ctx, source, sourceCfg.RequestsPerSecond); err != nil {
		failErr := syncRunService.FailRun(run.RunId, err.Error())
		if failErr != nil {
			logger.Error("Failed to record run failure", log.Error(failErr))
		}
		return se.failureResponse(run, err, started), nil
	}

	page, err := se.fetchPage(ctx, adapter, sourceCfg, run.Checkpoint.Cursor, pageSize)
	if err != nil {
		// The cursor stays where it was; a later invocation retries this page.
		logger.Error("Page fetch exhausted its retry budget",
			log.String("source", source), log.String("run_id", run.RunId), log.Error(err))
		if failErr := syncRunService.FailRun(run.RunId, err.Error()); failErr != nil {
			logger.Error("Failed to record run failure", log.Error(failErr))
		}
		return se.failureResponse(run, err, started), nil
	}

	if !dryRun {
		// Staging is a recovery aid; its failures must not block the merge.
		if err := se.stagePage(run.RunId, page.Records); err != nil {
			logger.Warn("Failed to stage fetched page", log.String("run_id", run.RunId), log.Error(err))
		}
	}

	mergeService := identityProvider.NewMergeProvider().GetMergeService()
	subBatchSize := config.GetRSSRuntime().Config.Merge.SubBatchSize
	if subBatchSize <= 0 {
		subBatchSize = constants.DefaultSubBatchSize
	}
	stats, err := mergeService.ProcessPage(ctx, page.Records, subBatchSize, dryRun, func() (bool, error) {
		return syncRunService.IsCancelled(run.RunId)
	})
	if err != nil {
		if failErr := syncRunService.FailRun(run.RunId, err.Error()); failErr != nil {
			logger.Error("Failed to record run failure", log.Error(failErr))
		}
		return se.failureResponse(run, err, started), nil
	}
	if stats.Cancelled {
		logger.Info("Sync run cancelled mid-page, discarding partial progress counters",
			log.String("run_id", run.RunId))
		return JobResponse{
			Success:    true,
			Status:     runModel.StatusCancelled,
			SyncRunId:  run.RunId,
			DurationMs: time.Since(started).Milliseconds(),
		}, nil
	}

	if !dryRun {
		if err := se.markProcessed(run.RunId, page.Records); err != nil {
			logger.Warn("Failed to mark staged page processed", log.String("run_id", run.RunId), log.Error(err))
		}
	}

	progress := runModel.PageProgress{
		Cursor:    page.NextCursor,
		Fetched:   stats.Fetched,
		Inserted:  stats.Created,
		Updated:   stats.Updated,
		Skipped:   stats.Skipped,
		Conflicts: stats.Conflicts,
		HasMore:   page.HasMore,
	}
	persisted, err := syncRunService.RecordPageProgress(run, progress)
	if err != nil {
		return JobResponse{}, err
	}
	if !persisted {
		// The run left the running state under us (cancelled or reaped) and the
		// page's counters were not recorded; report the run's actual fate.
		logger.Warn("Run state changed during page processing, discarding page counters",
			log.String("run_id", run.RunId))
		current, getErr := syncRunService.GetRun(run.RunId)
		status := runModel.StatusFailed
		if getErr == nil && current != nil {
			status = current.Status
		}
		return JobResponse{
			Success:    status == runModel.StatusCancelled,
			Status:     status,
			SyncRunId:  run.RunId,
			DurationMs: time.Since(started).Milliseconds(),
		}, nil
	}

	if run.Status == runModel.StatusCompleted && !dryRun {
		if err := stagingService.GetStagingService().PurgeRun(run.RunId); err != nil {
			logger.Warn("Failed to purge staged records", log.String("run_id", run.RunId), log.Error(err))
		}
		logger.Info("Sync run completed",
			log.String("run_id", run.RunId), log.String("source", source),
			log.Int("total_fetched", run.TotalFetched),
			log.Int("pages", run.Checkpoint.PageCount))
	}

	return JobResponse{
		Success:       true,
		Status:        run.Status,
		SyncRunId:     run.RunId,
		HasMore:       page.HasMore,
		NextCursor:    page.NextCursor,
		TotalFetched:  run.TotalFetched,
		TotalUpserted: run.TotalInserted + run.TotalUpdated,
		DurationMs:    time.Since(started).Milliseconds(),
	}, nil
}

func (se *SyncEngine) fetchPage(ctx context.Context, adapter sourceModel.SourceAdapter,
	cfg *config.SourceConfig, cursor string, pageSize int) (sourceModel.Page, error) {

	policy := retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		MaxElapsed:  constants.DefaultRetryMaxElapsed,
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = constants.DefaultRetryMaxAttempts
	}
	if cfg.RetryMaxElapsedSecs > 0 {
		policy.MaxElapsed = time.Duration(cfg.RetryMaxElapsedSecs) * time.Second
	}

	var page sourceModel.Page
	err := retry.Do(ctx, policy, func() error {
		var fetchErr error
		page, fetchErr = adapter.FetchPage(ctx, cursor, pageSize)
		return fetchErr
	})
	return page, err
}

func (se *SyncEngine) stagePage(runId string, records []sourceModel.RawContact) error {

	if len(records) == 0 {
		return nil
	}
	return stagingService.GetStagingService().StagePage(runId, records)
}

func (se *SyncEngine) markProcessed(runId string, records []sourceModel.RawContact) error {

	if len(records) == 0 {
		return nil
	}
	return stagingService.GetStagingService().MarkPageProcessed(runId, records)
}

func (se *SyncEngine) failureResponse(run *runModel.SyncRun, cause error, started time.Time) JobResponse {

	return JobResponse{
		Success:       false,
		Status:        runModel.StatusFailed,
		SyncRunId:     run.RunId,
		TotalFetched:  run.TotalFetched,
		TotalUpserted: run.TotalInserted + run.TotalUpdated,
		Error:         cause.Error(),
		DurationMs:    time.Since(started).Milliseconds(),
	}
}

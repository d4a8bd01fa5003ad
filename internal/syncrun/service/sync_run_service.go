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
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/revops/revenue-sync-service/internal/syncrun/model"
	"github.com/revops/revenue-sync-service/internal/syncrun/store"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

type SyncRunServiceInterface interface {
	ClaimRun(source string, dryRun bool) (*model.SyncRun, error)
	ActiveRun(source string) (*model.SyncRun, error)
	RecordPageProgress(run *model.SyncRun, progress model.PageProgress) (bool, error)
	FailRun(runId, reason string) error
	CancelRun(runId string) (*model.SyncRun, error)
	IsCancelled(runId string) (bool, error)
	GetRun(runId string) (*model.SyncRun, error)
	ListRuns(source string, limit int) ([]model.SyncRun, error)
	ReapStale() ([]string, error)
}

// SyncRunService owns the run state machine. Every invocation of the sync
// engine claims a run through here, so two invocations can never process the
// same source concurrently.
type SyncRunService struct{}

// GetSyncRunService creates a new instance of SyncRunService.
func GetSyncRunService() SyncRunServiceInterface {

	return &SyncRunService{}
}

// ClaimRun resolves which run this invocation works on and claims it.
// A continuing run is resumed at its checkpoint; no active run starts a
// fresh one; a run claimed by another live invocation is rejected. Active
// runs whose invocation died are failed with a timeout before starting over.
func (srs *SyncRunService) ClaimRun(source string, dryRun bool) (*model.SyncRun, error) {

	logger := log.GetLogger()
	active, err := store.GetActiveRunForSource(source)
	if err != nil {
		return nil, err
	}

	if active != nil {
		if time.Since(active.LastActivityAt) > stalenessWindow(source) {
			logger.Warn("Failing stale sync run before starting a new one",
				log.String("run_id", active.RunId), log.String("source", source))
			if _, err := store.MarkRunTerminal(active.RunId, model.StatusFailed, "timeout"); err != nil {
				return nil, err
			}
			active = nil
		} else if active.Status == model.StatusRunning {
			// Another invocation holds the page right now.
			return nil, errors.NewClientError(errors.ErrRunAlreadyRunning, http.StatusConflict)
		}
	}

	if active == nil {
		run := model.SyncRun{
			RunId:     uuid.New().String(),
			Source:    source,
			Status:    model.StatusPending,
			DryRun:    dryRun,
			StartedAt: time.Now().UTC(),
		}
		if err := store.InsertSyncRun(run); err != nil {
			return nil, err
		}
		active = &run
		logger.Info("Started sync run " + run.RunId + " for source " + source)
	}

	claimed, err := store.MarkRunning(active.RunId)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost the claim race to a concurrent invocation.
		return nil, errors.NewClientError(errors.ErrRunAlreadyRunning, http.StatusConflict)
	}
	active.Status = model.StatusRunning
	return active, nil
}

// ActiveRun returns the source's non-terminal run, or nil when the source
// is idle.
func (srs *SyncRunService) ActiveRun(source string) (*model.SyncRun, error) {

	return store.GetActiveRunForSource(source)
}

// RecordPageProgress advances the checkpoint and counters after a page and
// updates the in-memory run to match. Returns false without touching the
// in-memory run when the run was cancelled or reaped out from under the
// invocation; the page's counters are then discarded.
func (srs *SyncRunService) RecordPageProgress(run *model.SyncRun, progress model.PageProgress) (bool, error) {

	checkpoint := model.Checkpoint{
		Cursor:    progress.Cursor,
		PageCount: run.Checkpoint.PageCount + 1,
	}
	persisted, err := store.RecordPageProgress(run.RunId, checkpoint, progress)
	if err != nil {
		return false, err
	}
	if !persisted {
		return false, nil
	}

	run.Checkpoint = checkpoint
	run.TotalFetched += progress.Fetched
	run.TotalInserted += progress.Inserted
	run.TotalUpdated += progress.Updated
	run.TotalSkipped += progress.Skipped
	run.TotalConflicts += progress.Conflicts
	if progress.HasMore {
		run.Status = model.StatusContinuing
	} else {
		run.Status = model.StatusCompleted
	}
	return true, nil
}

func (srs *SyncRunService) FailRun(runId, reason string) error {

	_, err := store.MarkRunTerminal(runId, model.StatusFailed, reason)
	return err
}

// CancelRun requests cancellation of an active run. The processing
// invocation observes the terminal status at its next sub-batch boundary.
func (srs *SyncRunService) CancelRun(runId string) (*model.SyncRun, error) {

	run, err := srs.GetRun(runId)
	if err != nil {
		return nil, err
	}
	if model.Terminal(run.Status) {
		return nil, errors.NewClientError(errors.ErrRunTerminal, http.StatusConflict)
	}
	if _, err := store.MarkRunTerminal(runId, model.StatusCancelled, ""); err != nil {
		return nil, err
	}
	return srs.GetRun(runId)
}

// IsCancelled reports whether the run has been moved to a terminal status
// out from under the processing invocation.
func (srs *SyncRunService) IsCancelled(runId string) (bool, error) {

	run, err := store.GetSyncRun(runId)
	if err != nil {
		return false, err
	}
	if run == nil {
		return true, nil
	}
	return model.Terminal(run.Status), nil
}

func (srs *SyncRunService) GetRun(runId string) (*model.SyncRun, error) {

	run, err := store.GetSyncRun(runId)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, errors.NewClientError(errors.ErrRunNotFound, http.StatusNotFound)
	}
	return run, nil
}

func (srs *SyncRunService) ListRuns(source string, limit int) ([]model.SyncRun, error) {

	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	return store.ListSyncRuns(source, limit)
}

// ReapStale fails every active run without recent activity. Each configured
// source is reaped against its own staleness window, so a slow source with a
// generous window is never failed on a faster source's schedule.
func (srs *SyncRunService) ReapStale() ([]string, error) {

	now := time.Now().UTC()
	var reaped []string
	for _, src := range config.GetRSSRuntime().Config.Sources {
		ids, err := store.ReapStaleRuns(src.Name, now.Add(-stalenessWindow(src.Name)))
		if err != nil {
			return nil, err
		}
		reaped = append(reaped, ids...)
	}
	if len(reaped) > 0 {
		log.GetLogger().Info("Reaped stale sync runs", log.Int("count", len(reaped)))
	}
	return reaped, nil
}

func stalenessWindow(source string) time.Duration {

	if cfg := config.GetRSSRuntime().Config.SourceByName(source); cfg != nil && cfg.StalenessWindowMins > 0 {
		return time.Duration(cfg.StalenessWindowMins) * time.Minute
	}
	return constants.DefaultStalenessWindow
}

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

package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	runModel "github.com/revops/revenue-sync-service/internal/syncrun/model"
	runService "github.com/revops/revenue-sync-service/internal/syncrun/service"
	runStore "github.com/revops/revenue-sync-service/internal/syncrun/store"
	dbProvider "github.com/revops/revenue-sync-service/internal/system/database/provider"
	"github.com/revops/revenue-sync-service/internal/system/errors"
)

func Test_SyncRunLifecycle(t *testing.T) {

	runSvc := runService.GetSyncRunService()
	var run *runModel.SyncRun

	t.Run("Claim_Fresh_Run", func(t *testing.T) {
		var err error
		run, err = runSvc.ClaimRun("billing", false)
		require.NoError(t, err)
		require.Equal(t, runModel.StatusRunning, run.Status)
		require.Equal(t, 0, run.Checkpoint.PageCount)
		require.Empty(t, run.Checkpoint.Cursor)
	})

	t.Run("Second_Claim_Is_Rejected", func(t *testing.T) {
		_, err := runSvc.ClaimRun("billing", false)
		var clientErr *errors.ClientError
		require.ErrorAs(t, err, &clientErr)
		require.Equal(t, 409, clientErr.StatusCode)
	})

	t.Run("Page_Progress_Moves_To_Continuing", func(t *testing.T) {
		persisted, err := runSvc.RecordPageProgress(run, runModel.PageProgress{
			Cursor:    "50",
			Fetched:   50,
			Inserted:  30,
			Updated:   18,
			Skipped:   1,
			Conflicts: 1,
			HasMore:   true,
		})
		require.NoError(t, err)
		require.True(t, persisted)

		stored, err := runSvc.GetRun(run.RunId)
		require.NoError(t, err)
		require.Equal(t, runModel.StatusContinuing, stored.Status)
		require.Equal(t, "50", stored.Checkpoint.Cursor)
		require.Equal(t, 1, stored.Checkpoint.PageCount)
		require.Equal(t, 50, stored.TotalFetched)
		require.Equal(t, 30, stored.TotalInserted)
	})

	t.Run("Claim_Resumes_Continuing_Run", func(t *testing.T) {
		resumed, err := runSvc.ClaimRun("billing", false)
		require.NoError(t, err)
		require.Equal(t, run.RunId, resumed.RunId, "a continuing run must be resumed, not restarted")
		require.Equal(t, "50", resumed.Checkpoint.Cursor)
		run = resumed
	})

	t.Run("Final_Page_Completes_Run", func(t *testing.T) {
		persisted, err := runSvc.RecordPageProgress(run, runModel.PageProgress{
			Cursor:  "72",
			Fetched: 22,
			Updated: 22,
			HasMore: false,
		})
		require.NoError(t, err)
		require.True(t, persisted)

		stored, err := runSvc.GetRun(run.RunId)
		require.NoError(t, err)
		require.Equal(t, runModel.StatusCompleted, stored.Status)
		require.Equal(t, 72, stored.TotalFetched)
		require.Equal(t, 2, stored.Checkpoint.PageCount)
		require.NotNil(t, stored.CompletedAt)
	})

	t.Run("Completed_Source_Starts_Fresh", func(t *testing.T) {
		fresh, err := runSvc.ClaimRun("billing", false)
		require.NoError(t, err)
		require.NotEqual(t, run.RunId, fresh.RunId)
		require.Empty(t, fresh.Checkpoint.Cursor)

		// Leave the source clean for other tests.
		_, err = runSvc.CancelRun(fresh.RunId)
		require.NoError(t, err)
	})

	t.Run("Cancel_Run", func(t *testing.T) {
		claimed, err := runSvc.ClaimRun("crm-a", false)
		require.NoError(t, err)

		cancelled, err := runSvc.CancelRun(claimed.RunId)
		require.NoError(t, err)
		require.Equal(t, runModel.StatusCancelled, cancelled.Status)

		isCancelled, err := runSvc.IsCancelled(claimed.RunId)
		require.NoError(t, err)
		require.True(t, isCancelled)
	})

	t.Run("Progress_On_Cancelled_Run_Is_Discarded", func(t *testing.T) {
		claimed, err := runSvc.ClaimRun("crm-a", false)
		require.NoError(t, err)

		// Cancellation lands while the page is still being processed.
		_, err = runSvc.CancelRun(claimed.RunId)
		require.NoError(t, err)

		persisted, err := runSvc.RecordPageProgress(claimed, runModel.PageProgress{
			Cursor:  "25",
			Fetched: 25,
			Updated: 25,
			HasMore: true,
		})
		require.NoError(t, err)
		require.False(t, persisted, "a run that left the running state must not absorb page counters")
		require.Equal(t, 0, claimed.TotalFetched, "in-memory run must stay untouched on a lost race")

		stored, err := runSvc.GetRun(claimed.RunId)
		require.NoError(t, err)
		require.Equal(t, runModel.StatusCancelled, stored.Status)
		require.Equal(t, 0, stored.TotalFetched)
		require.Equal(t, 0, stored.Checkpoint.PageCount)
	})

	t.Run("Cancel_Terminal_Run_Is_Rejected", func(t *testing.T) {
		_, err := runSvc.CancelRun(run.RunId)
		var clientErr *errors.ClientError
		require.ErrorAs(t, err, &clientErr)
		require.Equal(t, 409, clientErr.StatusCode)
	})

	t.Run("Reaper_Fails_Stale_Runs", func(t *testing.T) {
		claimed, err := runSvc.ClaimRun("crm-b", false)
		require.NoError(t, err)

		// A cutoff in the future makes every active run stale.
		reaped, err := runStore.ReapStaleRuns("crm-b", time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		require.Contains(t, reaped, claimed.RunId)

		stored, err := runSvc.GetRun(claimed.RunId)
		require.NoError(t, err)
		require.Equal(t, runModel.StatusFailed, stored.Status)
		require.Equal(t, "stale", stored.ErrorMessage)
	})

	t.Run("Reaper_Honours_Each_Sources_Window", func(t *testing.T) {
		// billing is configured with a 15 minute window, upload with 30.
		billingRun, err := runSvc.ClaimRun("billing", false)
		require.NoError(t, err)
		uploadRun, err := runSvc.ClaimRun("upload", false)
		require.NoError(t, err)

		dbClient, err := dbProvider.NewDBProvider().GetDBClient()
		require.NoError(t, err)
		defer dbClient.Close()
		rewound := time.Now().UTC().Add(-20 * time.Minute)
		for _, runId := range []string{billingRun.RunId, uploadRun.RunId} {
			_, err = dbClient.ExecuteStatement(
				"UPDATE sync_runs SET last_activity_at = $2 WHERE run_id = $1", runId, rewound)
			require.NoError(t, err)
		}

		reaped, err := runSvc.ReapStale()
		require.NoError(t, err)
		require.Contains(t, reaped, billingRun.RunId)
		require.NotContains(t, reaped, uploadRun.RunId)

		stored, err := runSvc.GetRun(uploadRun.RunId)
		require.NoError(t, err)
		require.Equal(t, runModel.StatusRunning, stored.Status)

		_, err = runSvc.CancelRun(uploadRun.RunId)
		require.NoError(t, err)
	})

	t.Run("Concurrent_Insert_Is_A_Conflict", func(t *testing.T) {
		now := time.Now().UTC()
		first := runModel.SyncRun{
			RunId:     uuid.New().String(),
			Source:    "crm-a",
			Status:    runModel.StatusPending,
			StartedAt: now,
		}
		require.NoError(t, runStore.InsertSyncRun(first))

		// A second starter that raced past the active-run lookup must hit the
		// partial unique index and come back as a conflict.
		second := first
		second.RunId = uuid.New().String()
		err := runStore.InsertSyncRun(second)
		var clientErr *errors.ClientError
		require.ErrorAs(t, err, &clientErr)
		require.Equal(t, 409, clientErr.StatusCode)
		require.Equal(t, errors.ErrRunAlreadyRunning.Code, clientErr.Code)

		_, err = runStore.MarkRunTerminal(first.RunId, runModel.StatusCancelled, "")
		require.NoError(t, err)
	})

	t.Run("List_Runs_By_Source", func(t *testing.T) {
		runs, err := runSvc.ListRuns("billing", 10)
		require.NoError(t, err)
		require.NotEmpty(t, runs)
		for _, r := range runs {
			require.Equal(t, "billing", r.Source)
		}
	})
}

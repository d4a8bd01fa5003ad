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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	syncHandler "github.com/revops/revenue-sync-service/internal/sync/handler"
	syncService "github.com/revops/revenue-sync-service/internal/sync/service"
	runModel "github.com/revops/revenue-sync-service/internal/syncrun/model"
	runService "github.com/revops/revenue-sync-service/internal/syncrun/service"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/errors"
)

// billingFixtureServer serves a fixed customer list through the billing
// platform's offset pagination, recording the limit of the last request.
func billingFixtureServer(t *testing.T, total int, lastLimit *int) *httptest.Server {
	t.Helper()

	customers := make([]map[string]interface{}, 0, total)
	for i := 0; i < total; i++ {
		customers = append(customers, map[string]interface{}{
			"id":    fmt.Sprintf("eng-flow-%d", i),
			"email": fmt.Sprintf("eng-flow-%d@example.test", i),
			"name":  fmt.Sprintf("Engine Flow %d", i),
			"plan":  "customer",
		})
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		*lastLimit = limit

		end := offset + limit
		if offset > len(customers) {
			offset = len(customers)
		}
		if end > len(customers) {
			end = len(customers)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"customers": customers[offset:end],
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func Test_SyncEngineJobControl(t *testing.T) {

	var lastLimit int
	server := billingFixtureServer(t, 7, &lastLimit)
	config.GetRSSRuntime().Config.SourceByName("billing").BaseURL = server.URL

	ctx := context.Background()
	engine := syncService.GetSyncEngine()
	runSvc := runService.GetSyncRunService()
	var continuingRunId string

	t.Run("Short_Page_Completes_In_One_Invocation", func(t *testing.T) {
		response, err := engine.RunPage(ctx, "billing", syncService.PageOptions{})
		require.NoError(t, err)
		require.True(t, response.Success)
		require.Equal(t, runModel.StatusCompleted, response.Status)
		require.False(t, response.HasMore)
		require.Equal(t, 7, response.TotalFetched)
		require.Equal(t, 50, lastLimit, "configured page size must be used when no limit is given")
	})

	t.Run("Requested_Limit_Is_Capped", func(t *testing.T) {
		response, err := engine.RunPage(ctx, "billing", syncService.PageOptions{Limit: 9999})
		require.NoError(t, err)
		require.Equal(t, runModel.StatusCompleted, response.Status)
		require.Equal(t, constants.MaxPageSize, lastLimit)
	})

	t.Run("Smaller_Limit_Leaves_More_Pages", func(t *testing.T) {
		response, err := engine.RunPage(ctx, "billing", syncService.PageOptions{Limit: 5})
		require.NoError(t, err)
		require.Equal(t, runModel.StatusContinuing, response.Status)
		require.True(t, response.HasMore)
		require.Equal(t, "5", response.NextCursor)
		continuingRunId = response.SyncRunId
	})

	t.Run("Mismatched_Cursor_Is_Rejected", func(t *testing.T) {
		_, err := engine.RunPage(ctx, "billing", syncService.PageOptions{Cursor: "999"})
		var clientErr *errors.ClientError
		require.ErrorAs(t, err, &clientErr)
		require.Equal(t, http.StatusConflict, clientErr.StatusCode)
		require.Equal(t, errors.ErrCheckpointMismatch.Code, clientErr.Code)

		// The rejection must not disturb the persisted run.
		active, err := runSvc.ActiveRun("billing")
		require.NoError(t, err)
		require.NotNil(t, active)
		require.Equal(t, runModel.StatusContinuing, active.Status)
	})

	t.Run("Unknown_Run_Id_Is_Rejected", func(t *testing.T) {
		_, err := engine.RunPage(ctx, "billing", syncService.PageOptions{SyncRunId: "no-such-run"})
		var clientErr *errors.ClientError
		require.ErrorAs(t, err, &clientErr)
		require.Equal(t, http.StatusNotFound, clientErr.StatusCode)
	})

	t.Run("Matching_Checkpoint_Resumes", func(t *testing.T) {
		response, err := engine.RunPage(ctx, "billing", syncService.PageOptions{
			Cursor:    "5",
			SyncRunId: continuingRunId,
		})
		require.NoError(t, err)
		require.Equal(t, continuingRunId, response.SyncRunId)
		require.Equal(t, runModel.StatusCompleted, response.Status)
		require.False(t, response.HasMore)
		require.Equal(t, 7, response.TotalFetched)
	})

	t.Run("Conflict_Reports_The_Active_Run", func(t *testing.T) {
		claimed, err := runSvc.ClaimRun("billing", false)
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodPost, "/trigger/sync/billing", nil)
		recorder := httptest.NewRecorder()
		syncHandler.NewSyncHandler().TriggerSync(recorder, request)

		require.Equal(t, http.StatusConflict, recorder.Code)
		var body syncService.JobResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		require.False(t, body.Success)
		require.Equal(t, syncService.StatusAlreadyRunning, body.Status)
		require.Equal(t, claimed.RunId, body.SyncRunId)

		_, err = runSvc.CancelRun(claimed.RunId)
		require.NoError(t, err)
	})
}

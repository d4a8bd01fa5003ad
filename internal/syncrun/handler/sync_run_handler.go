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

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/revops/revenue-sync-service/internal/syncrun/provider"
	"github.com/revops/revenue-sync-service/internal/system/utils"
)

type SyncRunHandler struct{}

func NewSyncRunHandler() *SyncRunHandler {

	return &SyncRunHandler{}
}

// GetRun returns one run's status, checkpoint and counters.
func (srh *SyncRunHandler) GetRun(w http.ResponseWriter, r *http.Request) {

	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	runId := pathParts[len(pathParts)-1]

	syncRunService := provider.NewSyncRunProvider().GetSyncRunService()
	run, err := syncRunService.GetRun(runId)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, run)
}

// ListRuns returns recent runs, optionally filtered by source.
func (srh *SyncRunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {

	source := r.URL.Query().Get("source")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	syncRunService := provider.NewSyncRunProvider().GetSyncRunService()
	runs, err := syncRunService.ListRuns(source, limit)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, runs)
}

// ReapStale fails every active run whose invocation stopped reporting. The
// server runs this on a ticker; the endpoint exists for hosts without
// long-lived processes.
func (srh *SyncRunHandler) ReapStale(w http.ResponseWriter, r *http.Request) {

	syncRunService := provider.NewSyncRunProvider().GetSyncRunService()
	reaped, err := syncRunService.ReapStale()
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if reaped == nil {
		reaped = []string{}
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"reaped_run_ids": reaped,
	})
}

// CancelRun requests cancellation of an active run.
func (srh *SyncRunHandler) CancelRun(w http.ResponseWriter, r *http.Request) {

	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	// .../sync-runs/{id}/cancel
	runId := pathParts[len(pathParts)-2]

	syncRunService := provider.NewSyncRunProvider().GetSyncRunService()
	run, err := syncRunService.CancelRun(runId)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, run)
}

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
	"errors"
	"net/http"
	"strings"

	"github.com/revops/revenue-sync-service/internal/sync/service"
	syncRunProvider "github.com/revops/revenue-sync-service/internal/syncrun/provider"
	errors2 "github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/log"
	"github.com/revops/revenue-sync-service/internal/system/utils"
)

type SyncRequest struct {
	DryRun    bool   `json:"dry_run,omitempty"`
	Cursor    string `json:"cursor,omitempty"`
	SyncRunId string `json:"syncRunId,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type SyncHandler struct{}

func NewSyncHandler() *SyncHandler {

	return &SyncHandler{}
}

// TriggerSync processes exactly one page of the named source's sync and
// returns whether a follow-up invocation is needed. The scheduler keeps
// calling until has_more comes back false.
func (sh *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {

	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	source := pathParts[len(pathParts)-1]

	var req SyncRequest
	if r.ContentLength > 0 {
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			utils.HandleError(w, err)
			return
		}
	}

	opts := service.PageOptions{
		DryRun:    req.DryRun,
		Cursor:    req.Cursor,
		SyncRunId: req.SyncRunId,
		Limit:     req.Limit,
	}
	response, err := service.GetSyncEngine().RunPage(r.Context(), source, opts)
	if err != nil {
		var clientErr *errors2.ClientError
		if errors.As(err, &clientErr) && clientErr.Code == errors2.ErrRunAlreadyRunning.Code {
			sh.writeAlreadyRunning(w, source, clientErr)
			return
		}
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, response)
}

// writeAlreadyRunning reports the conflict together with the identifier of
// the run holding the source, so the caller can resume or cancel it.
func (sh *SyncHandler) writeAlreadyRunning(w http.ResponseWriter, source string, cause *errors2.ClientError) {

	response := service.JobResponse{
		Success: false,
		Status:  service.StatusAlreadyRunning,
		Error:   cause.Message,
	}
	active, err := syncRunProvider.NewSyncRunProvider().GetSyncRunService().ActiveRun(source)
	if err != nil {
		log.GetLogger().Warn("Failed to look up the active run for a conflict response",
			log.String("source", source), log.Error(err))
	} else if active != nil {
		response.SyncRunId = active.RunId
	}
	utils.WriteJSONResponse(w, http.StatusConflict, response)
}

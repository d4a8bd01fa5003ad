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

	"github.com/revops/revenue-sync-service/internal/conflict/model"
	"github.com/revops/revenue-sync-service/internal/conflict/provider"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/utils"
)

type ConflictHandler struct{}

func NewConflictHandler() *ConflictHandler {

	return &ConflictHandler{}
}

// ListPendingConflicts returns the review queue, oldest first.
func (ch *ConflictHandler) ListPendingConflicts(w http.ResponseWriter, r *http.Request) {

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	conflictService := provider.NewConflictProvider().GetConflictService()
	conflicts, err := conflictService.ListPendingConflicts(limit)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if conflicts == nil {
		conflicts = []model.MergeConflict{}
	}
	utils.WriteJSONResponse(w, http.StatusOK, conflicts)
}

// GetConflict returns a single conflict with its held record.
func (ch *ConflictHandler) GetConflict(w http.ResponseWriter, r *http.Request) {

	conflictId := lastPathSegment(r.URL.Path)

	conflictService := provider.NewConflictProvider().GetConflictService()
	conflict, err := conflictService.GetConflict(conflictId)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, conflict)
}

// ResolveConflict applies an operator decision to a pending conflict.
func (ch *ConflictHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {

	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	// .../merge-conflicts/{id}/resolve
	conflictId := pathParts[len(pathParts)-2]

	var req model.ResolveRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	conflictService := provider.NewConflictProvider().GetConflictService()
	conflict, err := conflictService.ResolveConflict(conflictId, req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, conflict)
}

func lastPathSegment(path string) string {

	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	return parts[len(parts)-1]
}

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
	"time"

	"github.com/revops/revenue-sync-service/internal/identity/provider"
	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/utils"
)

// MergeRequest carries one externally sourced contact record to be unified
// into the canonical customer set.
type MergeRequest struct {
	Source       string                 `json:"source"`
	ExternalId   string                 `json:"external_id"`
	Email        string                 `json:"email,omitempty"`
	Phone        string                 `json:"phone,omitempty"`
	FullName     string                 `json:"full_name,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
	OptIns       map[string]bool        `json:"opt_ins,omitempty"`
	Lifecycle    string                 `json:"lifecycle,omitempty"`
	TrackingData map[string]interface{} `json:"tracking_data,omitempty"`
	DryRun       bool                   `json:"dry_run,omitempty"`
}

type MergeResponse struct {
	Success  bool   `json:"success"`
	Action   string `json:"action"`
	ClientId string `json:"client_id,omitempty"`
}

type MergeHandler struct{}

func NewMergeHandler() *MergeHandler {

	return &MergeHandler{}
}

// MergeRecord handles the single-record unification endpoint used by inbound
// integrations that push rather than get pulled by a sync run.
func (mh *MergeHandler) MergeRecord(w http.ResponseWriter, r *http.Request) {

	var req MergeRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}
	if req.Source == "" || req.ExternalId == "" {
		utils.HandleError(w, errors.NewClientError(errors.ErrBadRequest, http.StatusBadRequest))
		return
	}

	record := sourceModel.RawContact{
		Source:       req.Source,
		ExternalId:   req.ExternalId,
		Email:        req.Email,
		Phone:        req.Phone,
		FullName:     req.FullName,
		Tags:         req.Tags,
		OptIns:       req.OptIns,
		Lifecycle:    req.Lifecycle,
		TrackingData: req.TrackingData,
		FetchedAt:    time.Now().UTC(),
	}

	mergeService := provider.NewMergeProvider().GetMergeService()
	outcome, err := mergeService.ProcessRecord(record, req.DryRun)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, MergeResponse{
		Success:  true,
		Action:   outcome.Action,
		ClientId: outcome.CustomerId,
	})
}

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
	"strings"

	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
	"github.com/revops/revenue-sync-service/internal/system/errors"
	"github.com/revops/revenue-sync-service/internal/system/utils"
	"github.com/revops/revenue-sync-service/internal/webhook/service"
)

type WebhookPayload struct {
	ExternalId   string                 `json:"external_id"`
	Email        string                 `json:"email,omitempty"`
	Phone        string                 `json:"phone,omitempty"`
	FullName     string                 `json:"full_name,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
	OptIns       map[string]bool        `json:"opt_ins,omitempty"`
	Lifecycle    string                 `json:"lifecycle,omitempty"`
	TrackingData map[string]interface{} `json:"tracking_data,omitempty"`
}

type WebhookResponse struct {
	Success  bool   `json:"success"`
	Deferred bool   `json:"deferred,omitempty"`
	Action   string `json:"action,omitempty"`
	ClientId string `json:"client_id,omitempty"`
}

type WebhookHandler struct{}

func NewWebhookHandler() *WebhookHandler {

	return &WebhookHandler{}
}

// ReceiveWebhook ingests one pushed record from the named source. Returns
// 200 when merged, 202 when the datastore was unreachable and the record was
// parked in the staging area.
func (wh *WebhookHandler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {

	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	source := pathParts[len(pathParts)-1]

	var payload WebhookPayload
	if err := utils.DecodeJSONBody(r, &payload); err != nil {
		utils.HandleError(w, err)
		return
	}
	if payload.ExternalId == "" {
		utils.HandleError(w, errors.NewClientError(errors.ErrBadRequest, http.StatusBadRequest))
		return
	}

	record := sourceModel.RawContact{
		Source:       source,
		ExternalId:   payload.ExternalId,
		Email:        payload.Email,
		Phone:        payload.Phone,
		FullName:     payload.FullName,
		Tags:         payload.Tags,
		OptIns:       payload.OptIns,
		Lifecycle:    payload.Lifecycle,
		TrackingData: payload.TrackingData,
	}

	outcome, deferred, err := service.GetWebhookService().ProcessInbound(r.Context(), record)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	if deferred {
		utils.WriteJSONResponse(w, http.StatusAccepted, WebhookResponse{Success: true, Deferred: true})
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, WebhookResponse{
		Success:  true,
		Action:   outcome.Action,
		ClientId: outcome.CustomerId,
	})
}

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

	"github.com/revops/revenue-sync-service/internal/apikeys/model"
	"github.com/revops/revenue-sync-service/internal/apikeys/service"
	"github.com/revops/revenue-sync-service/internal/system/utils"
)

type APIKeyHandler struct{}

func NewAPIKeyHandler() *APIKeyHandler {

	return &APIKeyHandler{}
}

// CreateAPIKey mints a new key and returns its plaintext once.
func (akh *APIKeyHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {

	var req model.CreateAPIKeyRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	response, err := service.GetAPIKeyService().CreateAPIKey(req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, response)
}

func (akh *APIKeyHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {

	keys, err := service.GetAPIKeyService().ListAPIKeys()
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, keys)
}

func (akh *APIKeyHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {

	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	keyId := pathParts[len(pathParts)-1]

	if err := service.GetAPIKeyService().RevokeAPIKey(keyId); err != nil {
		utils.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

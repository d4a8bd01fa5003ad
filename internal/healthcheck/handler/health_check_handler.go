/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
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

	"github.com/revops/revenue-sync-service/internal/healthcheck/provider"
	"github.com/revops/revenue-sync-service/internal/system/utils"
)

type HealthCheckHandler struct{}

func NewHealthCheckHandler() *HealthCheckHandler {

	return &HealthCheckHandler{}
}

// CheckHealth reports readiness of the persistence layer.
func (hh *HealthCheckHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {

	healthService := provider.NewHealthCheckProvider().GetHealthCheckService()
	if err := healthService.CheckReadiness(); err != nil {
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
		})
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

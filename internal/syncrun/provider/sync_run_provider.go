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

package provider

import (
	"github.com/revops/revenue-sync-service/internal/syncrun/service"
)

// SyncRunProviderInterface defines the interface for the sync run provider.
type SyncRunProviderInterface interface {
	GetSyncRunService() service.SyncRunServiceInterface
}

// SyncRunProvider is the default implementation of the SyncRunProviderInterface.
type SyncRunProvider struct{}

// NewSyncRunProvider creates a new instance of SyncRunProvider.
func NewSyncRunProvider() SyncRunProviderInterface {

	return &SyncRunProvider{}
}

// GetSyncRunService returns the sync run service instance.
func (srp *SyncRunProvider) GetSyncRunService() service.SyncRunServiceInterface {

	return service.GetSyncRunService()
}

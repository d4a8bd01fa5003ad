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

package managers

import (
	"net/http"

	apiKeyHandler "github.com/revops/revenue-sync-service/internal/apikeys/handler"
	conflictHandler "github.com/revops/revenue-sync-service/internal/conflict/handler"
	customerHandler "github.com/revops/revenue-sync-service/internal/customer/handler"
	healthHandler "github.com/revops/revenue-sync-service/internal/healthcheck/handler"
	mergeHandler "github.com/revops/revenue-sync-service/internal/identity/handler"
	syncHandler "github.com/revops/revenue-sync-service/internal/sync/handler"
	syncRunHandler "github.com/revops/revenue-sync-service/internal/syncrun/handler"
	"github.com/revops/revenue-sync-service/internal/system/authn"
	webhookHandler "github.com/revops/revenue-sync-service/internal/webhook/handler"
)

type ServiceManagerInterface interface {
	RegisterServices(apiBasePath string) error
}

type ServiceManager struct {
	mux *http.ServeMux
}

// NewServiceManager creates a new instance of ServiceManager.
func NewServiceManager(mux *http.ServeMux) ServiceManagerInterface {

	return &ServiceManager{
		mux: mux,
	}
}

// RegisterServices mounts every handler on the shared mux. Everything except
// the health endpoint requires a credential.
func (sm *ServiceManager) RegisterServices(apiBasePath string) error {

	health := healthHandler.NewHealthCheckHandler()
	sync := syncHandler.NewSyncHandler()
	runs := syncRunHandler.NewSyncRunHandler()
	merge := mergeHandler.NewMergeHandler()
	customers := customerHandler.NewCustomerHandler()
	conflicts := conflictHandler.NewConflictHandler()
	webhooks := webhookHandler.NewWebhookHandler()
	apiKeys := apiKeyHandler.NewAPIKeyHandler()

	sm.mux.HandleFunc("GET /health", health.CheckHealth)

	sm.mux.HandleFunc("POST "+apiBasePath+"/sync/{source}", authn.Protect(sync.TriggerSync))
	sm.mux.HandleFunc("GET "+apiBasePath+"/sync-runs", authn.Protect(runs.ListRuns))
	sm.mux.HandleFunc("POST "+apiBasePath+"/sync-runs/reap", authn.Protect(runs.ReapStale))
	sm.mux.HandleFunc("GET "+apiBasePath+"/sync-runs/{id}", authn.Protect(runs.GetRun))
	sm.mux.HandleFunc("POST "+apiBasePath+"/sync-runs/{id}/cancel", authn.Protect(runs.CancelRun))

	sm.mux.HandleFunc("POST "+apiBasePath+"/merge", authn.Protect(merge.MergeRecord))

	sm.mux.HandleFunc("GET "+apiBasePath+"/customers", authn.Protect(customers.ListCustomers))
	sm.mux.HandleFunc("GET "+apiBasePath+"/customers/{id}", authn.Protect(customers.GetCustomer))
	sm.mux.HandleFunc("DELETE "+apiBasePath+"/customers/{id}", authn.Protect(customers.ArchiveCustomer))

	sm.mux.HandleFunc("GET "+apiBasePath+"/merge-conflicts", authn.Protect(conflicts.ListPendingConflicts))
	sm.mux.HandleFunc("GET "+apiBasePath+"/merge-conflicts/{id}", authn.Protect(conflicts.GetConflict))
	sm.mux.HandleFunc("POST "+apiBasePath+"/merge-conflicts/{id}/resolve", authn.Protect(conflicts.ResolveConflict))

	sm.mux.HandleFunc("POST "+apiBasePath+"/webhooks/{source}", authn.Protect(webhooks.ReceiveWebhook))

	sm.mux.HandleFunc("POST "+apiBasePath+"/api-keys", authn.Protect(apiKeys.CreateAPIKey))
	sm.mux.HandleFunc("GET "+apiBasePath+"/api-keys", authn.Protect(apiKeys.ListAPIKeys))
	sm.mux.HandleFunc("DELETE "+apiBasePath+"/api-keys/{id}", authn.Protect(apiKeys.RevokeAPIKey))

	return nil
}

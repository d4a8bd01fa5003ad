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

package service

import (
	"context"
	"sync"
	"time"

	healthProvider "github.com/revops/revenue-sync-service/internal/healthcheck/provider"
	identityProvider "github.com/revops/revenue-sync-service/internal/identity/provider"
	identityService "github.com/revops/revenue-sync-service/internal/identity/service"
	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
	stagingService "github.com/revops/revenue-sync-service/internal/staging/service"
	"github.com/revops/revenue-sync-service/internal/system/breaker"
	"github.com/revops/revenue-sync-service/internal/system/config"
	"github.com/revops/revenue-sync-service/internal/system/constants"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

// WebhookRunId groups webhook-staged records in the staging store, standing
// in for the sync run id that push traffic does not have.
const WebhookRunId = "webhook"

type WebhookServiceInterface interface {
	ProcessInbound(ctx context.Context, record sourceModel.RawContact) (identityService.MergeOutcome, bool, error)
}

// WebhookService handles push traffic from external platforms. The primary
// datastore is probed through a circuit breaker before merging; when the
// probe fails the record is staged and acknowledged so the platform does not
// retry-storm a degraded database.
type WebhookService struct {
	breaker *breaker.Breaker
}

var (
	webhookInstance *WebhookService
	once            sync.Once
)

// GetWebhookService returns the shared webhook service.
func GetWebhookService() WebhookServiceInterface {

	once.Do(func() {
		timeout := constants.DefaultBreakerProbeTimeout
		if secs := config.GetRSSRuntime().Config.Breaker.ProbeTimeoutSecs; secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
		probe := healthProvider.NewHealthCheckProvider().GetHealthCheckService()
		webhookInstance = &WebhookService{
			breaker: breaker.NewBreaker(probe, timeout),
		}
	})
	return webhookInstance
}

// ProcessInbound merges the pushed record when the datastore is reachable.
// The second return value reports whether the record was deferred to the
// staging area instead.
func (ws *WebhookService) ProcessInbound(ctx context.Context, record sourceModel.RawContact) (identityService.MergeOutcome, bool, error) {

	logger := log.GetLogger()
	record.FetchedAt = time.Now().UTC()

	if !ws.breaker.Allow(ctx) {
		logger.Warn("Datastore probe failed, deferring webhook record to staging",
			log.String("source", record.Source), log.String("external_id", record.ExternalId))
		if err := stagingService.GetStagingService().StagePage(WebhookRunId, []sourceModel.RawContact{record}); err != nil {
			logger.Warn("Failed to stage deferred webhook record",
				log.String("source", record.Source), log.String("external_id", record.ExternalId), log.Error(err))
		}
		return identityService.MergeOutcome{}, true, nil
	}

	outcome, err := identityProvider.NewMergeProvider().GetMergeService().ProcessRecord(record, false)
	if err != nil {
		return identityService.MergeOutcome{}, false, err
	}
	return outcome, false, nil
}

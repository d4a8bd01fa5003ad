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
	"time"

	"github.com/revops/revenue-sync-service/internal/sources/model"
	stagingModel "github.com/revops/revenue-sync-service/internal/staging/model"
	"github.com/revops/revenue-sync-service/internal/staging/provider"
	"github.com/revops/revenue-sync-service/internal/system/log"
)

type StagingServiceInterface interface {
	StagePage(syncRunId string, records []model.RawContact) error
	MarkPageProcessed(syncRunId string, records []model.RawContact) error
	PurgeRun(syncRunId string) error
}

// StagingService lands fetched pages in the staging store before merge. All
// failures here are reported but must not block the merge path, since the
// staging area is a recovery aid rather than the system of record.
type StagingService struct{}

// GetStagingService creates a new instance of StagingService.
func GetStagingService() StagingServiceInterface {

	return &StagingService{}
}

func (ss *StagingService) StagePage(syncRunId string, records []model.RawContact) error {

	repo, err := provider.GetStagingRepository()
	if err != nil {
		return err
	}
	staged := make([]stagingModel.StagedRecord, 0, len(records))
	now := time.Now().UTC()
	for _, record := range records {
		staged = append(staged, stagingModel.StagedRecord{
			Source:     record.Source,
			ExternalId: record.ExternalId,
			SyncRunId:  syncRunId,
			Record:     record,
			StagedAt:   now,
		})
	}
	return repo.StageRecords(staged)
}

func (ss *StagingService) MarkPageProcessed(syncRunId string, records []model.RawContact) error {

	repo, err := provider.GetStagingRepository()
	if err != nil {
		return err
	}
	externalIds := make([]string, 0, len(records))
	for _, record := range records {
		externalIds = append(externalIds, record.ExternalId)
	}
	return repo.MarkProcessed(syncRunId, externalIds)
}

func (ss *StagingService) PurgeRun(syncRunId string) error {

	repo, err := provider.GetStagingRepository()
	if err != nil {
		return err
	}
	purged, err := repo.PurgeRun(syncRunId)
	if err != nil {
		return err
	}
	if purged > 0 {
		log.GetLogger().Debug("Purged staged records",
			log.String("sync_run_id", syncRunId), log.Int("count", int(purged)))
	}
	return nil
}

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

package model

import (
	"time"

	sourceModel "github.com/revops/revenue-sync-service/internal/sources/model"
)

// StagedRecord is a raw record held durably before merging, so a killed
// invocation never loses fetched data and replays converge on one document.
type StagedRecord struct {
	Source     string                 `bson:"source" json:"source"`
	ExternalId string                 `bson:"external_id" json:"external_id"`
	SyncRunId  string                 `bson:"sync_run_id" json:"sync_run_id"`
	Record     sourceModel.RawContact `bson:"record" json:"record"`
	Processed  bool                   `bson:"processed" json:"processed"`
	StagedAt   time.Time              `bson:"staged_at" json:"staged_at"`
}
